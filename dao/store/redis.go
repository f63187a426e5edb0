package store

import (
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis"
)

var Client *redis.Client

func Init(addr string) (err error) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	_, err = Client.Ping().Result()
	if err != nil {
		return err
	}
	return nil
}

func GetRedis() *redis.Client {
	return Client
}

// stage snapshots live 24h; the relational store is the source of truth
const stageTTL = 24 * time.Hour

func creationKey(userID, creationID uint64) string {
	return fmt.Sprintf("user:%d:creation:%d", userID, creationID)
}

// SaveCreationStage mirrors the in-memory pipeline stage to Redis so status
// reads and reconnecting SSE clients see progress without hitting MySQL.
func SaveCreationStage(userID, creationID uint64, stage, status, errMsg string) error {
	fields := map[string]interface{}{
		"stage":      stage,
		"status":     status,
		"error":      errMsg,
		"updated_at": time.Now().Unix(),
	}
	pipe := Client.Pipeline()
	pipe.HMSet(creationKey(userID, creationID), fields)
	pipe.Expire(creationKey(userID, creationID), stageTTL)
	_, err := pipe.Exec()
	if err != nil {
		log.Printf("Failed to store stage for creation %d: %v", creationID, err)
		return err
	}
	return nil
}
