package logic

import (
	"cudliy/dao/mysql"
	"cudliy/dao/store"
	"cudliy/models"
)

// MySQLCreationStore adapts the dao/mysql package to CreationStore.
type MySQLCreationStore struct{}

func (MySQLCreationStore) InsertCreation(c *models.Creation) error { return mysql.InsertCreation(c) }
func (MySQLCreationStore) GetCreation(creationID uint64) (*models.Creation, error) {
	return mysql.GetCreation(creationID)
}
func (MySQLCreationStore) AttachImage(creationID uint64, imageURL string) error {
	return mysql.AttachImage(creationID, imageURL)
}
func (MySQLCreationStore) AttachModel(creationID uint64, modelURL string) error {
	return mysql.AttachModel(creationID, modelURL)
}
func (MySQLCreationStore) ListCreationsByUser(userID uint64) ([]models.Creation, error) {
	return mysql.ListCreationsByUser(userID)
}

// RedisStageCache adapts dao/store to StageCache.
type RedisStageCache struct{}

func (RedisStageCache) SaveCreationStage(userID, creationID uint64, stage, status, errMsg string) error {
	return store.SaveCreationStage(userID, creationID, stage, status, errMsg)
}
