package models

import "time"

const (
	PrintStatusQueued    = "queued"
	PrintStatusPrinting  = "printing"
	PrintStatusCompleted = "completed"
	PrintStatusFailed    = "failed"
)

// PrintJob is a request to physically produce a completed Creation.
type PrintJob struct {
	ID          string    `db:"print_id" json:"print_id"`
	UserID      uint64    `db:"user_id" json:"user_id,string"`
	CreationID  uint64    `db:"creation_id" json:"creation_id,string,omitempty"`
	ProductName string    `db:"product_name" json:"product_name"`
	Status      string    `db:"status" json:"status"`
	FileURL     string    `db:"file_url" json:"file_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PrintDispatch is the queue payload handed to the print worker.
type PrintDispatch struct {
	PrintID     string `json:"print_id"`
	UserID      uint64 `json:"user_id"`
	CreationID  uint64 `json:"creation_id"`
	ProductName string `json:"product_name"`
	FileURL     string `json:"file_url"`
	Priority    int    `json:"priority,omitempty"`
}

type PrintForm struct {
	CreationID  uint64 `json:"creation_id,string" binding:"required"`
	ProductName string `json:"product_name" binding:"required"`
}
