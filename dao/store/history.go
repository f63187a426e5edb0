package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StageRecord is one cached creation-stage snapshot.
type StageRecord struct {
	CreationID string            `json:"creation_id"`
	Stage      string            `json:"stage"`
	Status     string            `json:"status"`
	Data       map[string]string `json:"data"`
	Cursor     string            `json:"cursor,omitempty"`
}

// StageHistoryPage is a cursor-paginated slice of stage snapshots.
type StageHistoryPage struct {
	Records    []StageRecord `json:"records"`
	NextCursor string        `json:"next_cursor"`
	HasMore    bool          `json:"has_more"`
	Total      int64         `json:"total"`
	PageSize   int           `json:"page_size"`
}

// GetStageHistory scans the user's cached stage snapshots with cursor
// pagination. 24h of recent pipeline activity at most; the relational store
// holds the full history.
func GetStageHistory(userID uint64, cursor string, pageSize int) (*StageHistoryPage, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	pattern := fmt.Sprintf("user:%d:creation:*", userID)

	var scanCursor uint64
	var allKeys []string
	for {
		keys, newCursor, err := Client.Scan(scanCursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan redis keys: %v", err)
		}
		allKeys = append(allKeys, keys...)
		scanCursor = newCursor
		if scanCursor == 0 {
			break
		}
	}

	records := make([]StageRecord, 0, len(allKeys))
	for _, key := range allKeys {
		rec, err := parseStageFromKey(key, userID)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	// newest first: snowflake ids are time-ordered
	sort.Slice(records, func(i, j int) bool {
		idI, _ := strconv.ParseUint(records[i].CreationID, 10, 64)
		idJ, _ := strconv.ParseUint(records[j].CreationID, 10, 64)
		return idI > idJ
	})

	startIdx := 0
	if cursor != "" {
		for i, rec := range records {
			if rec.Cursor == cursor {
				startIdx = i + 1
				break
			}
		}
	}

	endIdx := startIdx + pageSize
	hasMore := endIdx < len(records)
	if endIdx > len(records) {
		endIdx = len(records)
	}

	pageItems := records[startIdx:endIdx]
	nextCursor := ""
	if hasMore && len(pageItems) > 0 {
		nextCursor = pageItems[len(pageItems)-1].CreationID
	}

	return &StageHistoryPage{
		Records:    pageItems,
		NextCursor: nextCursor,
		HasMore:    hasMore,
		Total:      int64(len(pageItems)),
		PageSize:   pageSize,
	}, nil
}

func parseStageFromKey(key string, userID uint64) (StageRecord, error) {
	prefix := fmt.Sprintf("user:%d:creation:", userID)
	if !strings.HasPrefix(key, prefix) {
		return StageRecord{}, fmt.Errorf("unknown key format: %s", key)
	}
	creationID := strings.TrimPrefix(key, prefix)

	data, err := Client.HGetAll(key).Result()
	if err != nil {
		return StageRecord{}, err
	}

	stage := data["stage"]
	if stage == "" {
		stage = "unknown"
	}

	return StageRecord{
		CreationID: creationID,
		Stage:      stage,
		Status:     data["status"],
		Data:       data,
		Cursor:     creationID,
	}, nil
}
