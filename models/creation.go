package models

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Creation is one user request to generate a toy design. The status column is
// monotonic: pending -> processing (image attached) -> completed (3D attached).
type Creation struct {
	ID                uint64    `db:"creation_id" json:"creation_id,string"`
	UserID            uint64    `db:"user_id" json:"user_id,string"`
	InputText         string    `db:"input_text" json:"input_text"`
	GeneratedImageURL string    `db:"generated_image_url" json:"generated_image_url,omitempty"`
	Generated3DURL    string    `db:"generated_3d_url" json:"generated_3d_url,omitempty"`
	Status            string    `db:"status" json:"status"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// HasImage reports whether the text-to-image stage has produced an artifact.
func (c *Creation) HasImage() bool { return c.GeneratedImageURL != "" }

// HasModel reports whether the image-to-3D stage has produced an artifact.
func (c *Creation) HasModel() bool { return c.Generated3DURL != "" }

type CreationForm struct {
	Text string `json:"text" binding:"required"`
}
