package mysql

import (
	"database/sql"
	"errors"
	"fmt"

	"cudliy/models"
)

var (
	ErrPrintJobNotFound   = errors.New("print job not found")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

// CreatePrintJobPaid inserts the print job and deducts its token cost in one
// transaction. The conditional UPDATE doubles as the balance check, so two
// concurrent enqueues can never drive a balance negative.
func CreatePrintJobPaid(job *models.PrintJob, cost int64) error {
	tx, err := Db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
        UPDATE t_user_tokens
        SET tokens = tokens - ?, updated_at = NOW()
        WHERE user_id = ? AND tokens >= ?`,
		cost, job.UserID, cost)
	if err != nil {
		return fmt.Errorf("failed to deduct tokens: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientTokens
	}

	_, err = tx.Exec(`
        INSERT INTO print_jobs (print_id, user_id, creation_id, product_name, status, file_url, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		job.ID, job.UserID, job.CreationID, job.ProductName, models.PrintStatusQueued, job.FileURL)
	if err != nil {
		return fmt.Errorf("failed to insert print job: %v", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

// UpdatePrintJobStatus advances a print job's status (queued -> printing ->
// completed/failed), driven by the dispatch worker. Existence is checked
// separately; RowsAffected reports 0 for an UPDATE to the current values.
func UpdatePrintJobStatus(printID, status string) error {
	var count int
	if err := Db.Get(&count, `SELECT COUNT(print_id) FROM print_jobs WHERE print_id = ?`, printID); err != nil {
		return err
	}
	if count == 0 {
		return ErrPrintJobNotFound
	}
	_, err := Db.Exec(`UPDATE print_jobs SET status = ?, updated_at = NOW() WHERE print_id = ?`, status, printID)
	return err
}

// GetPrintJob fetches one print job by id.
func GetPrintJob(printID string) (*models.PrintJob, error) {
	job := &models.PrintJob{}
	query := `SELECT print_id, user_id, creation_id, product_name, status, file_url, created_at, updated_at
	          FROM print_jobs WHERE print_id = ?`
	err := Db.Get(job, query, printID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPrintJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListPrintJobsByUser returns the user's print jobs, newest first.
func ListPrintJobsByUser(userID uint64) ([]models.PrintJob, error) {
	jobs := make([]models.PrintJob, 0)
	query := `SELECT print_id, user_id, creation_id, product_name, status, file_url, created_at, updated_at
	          FROM print_jobs WHERE user_id = ? ORDER BY created_at DESC`
	err := Db.Select(&jobs, query, userID)
	return jobs, err
}
