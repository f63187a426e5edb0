package mysql

import (
	"database/sql"
	"errors"

	"cudliy/models"
)

var ErrCreationNotFound = errors.New("creation not found")

// InsertCreation writes a fresh creation row with status pending. This is the
// only insert path; generation stages never create rows.
func InsertCreation(c *models.Creation) error {
	query := `INSERT INTO ai_creations (creation_id, user_id, input_text, generated_image_url, generated_3d_url, status, created_at, updated_at)
	          VALUES (?, ?, ?, '', '', ?, NOW(), NOW())`
	_, err := Db.Exec(query, c.ID, c.UserID, c.InputText, models.StatusPending)
	return err
}

// GetCreation fetches one creation by id.
func GetCreation(creationID uint64) (*models.Creation, error) {
	c := &models.Creation{}
	query := `SELECT creation_id, user_id, input_text, generated_image_url, generated_3d_url, status, created_at, updated_at
	          FROM ai_creations WHERE creation_id = ?`
	err := Db.Get(c, query, creationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCreationNotFound
		}
		return nil, err
	}
	return c, nil
}

// AttachImage stores the text-to-image artifact and moves status to
// processing. No transaction spans the gateway call.
func AttachImage(creationID uint64, imageURL string) error {
	if err := ensureCreation(creationID); err != nil {
		return err
	}
	query := `UPDATE ai_creations SET generated_image_url = ?, status = ?, updated_at = NOW() WHERE creation_id = ?`
	_, err := Db.Exec(query, imageURL, models.StatusProcessing, creationID)
	return err
}

// AttachModel stores the image-to-3D artifact and moves status to completed.
func AttachModel(creationID uint64, modelURL string) error {
	if err := ensureCreation(creationID); err != nil {
		return err
	}
	query := `UPDATE ai_creations SET generated_3d_url = ?, status = ?, updated_at = NOW() WHERE creation_id = ?`
	_, err := Db.Exec(query, modelURL, models.StatusCompleted, creationID)
	return err
}

// ListCreationsByUser returns the user's creations, newest first.
func ListCreationsByUser(userID uint64) ([]models.Creation, error) {
	creations := make([]models.Creation, 0)
	query := `SELECT creation_id, user_id, input_text, generated_image_url, generated_3d_url, status, created_at, updated_at
	          FROM ai_creations WHERE user_id = ? ORDER BY created_at DESC`
	err := Db.Select(&creations, query, userID)
	return creations, err
}

// ensureCreation checks the row exists before an attach. RowsAffected cannot
// distinguish a missing row from an UPDATE writing the values already stored,
// so existence is checked on its own.
func ensureCreation(creationID uint64) error {
	var count int
	if err := Db.Get(&count, `SELECT COUNT(creation_id) FROM ai_creations WHERE creation_id = ?`, creationID); err != nil {
		return err
	}
	if count == 0 {
		return ErrCreationNotFound
	}
	return nil
}
