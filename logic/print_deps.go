package logic

import (
	"cudliy/dao/mysql"
	"cudliy/models"
)

// MySQLPrintStore adapts dao/mysql to PrintStore.
type MySQLPrintStore struct{}

func (MySQLPrintStore) GetCreation(creationID uint64) (*models.Creation, error) {
	return mysql.GetCreation(creationID)
}
func (MySQLPrintStore) CreatePrintJobPaid(job *models.PrintJob, cost int64) error {
	return mysql.CreatePrintJobPaid(job, cost)
}
func (MySQLPrintStore) ListPrintJobsByUser(userID uint64) ([]models.PrintJob, error) {
	return mysql.ListPrintJobsByUser(userID)
}
