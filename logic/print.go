package logic

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cudliy/models"
)

var ErrNoModel = errors.New("creation has no 3D asset to print")

// PrintStore is the persistence contract for print jobs. Enqueue is paid:
// the insert and the token deduction happen atomically.
type PrintStore interface {
	GetCreation(creationID uint64) (*models.Creation, error)
	CreatePrintJobPaid(job *models.PrintJob, cost int64) error
	ListPrintJobsByUser(userID uint64) ([]models.PrintJob, error)
}

// PrintPublisher hands a dispatch payload to the print queue.
type PrintPublisher interface {
	PublishPrintJob(b []byte, priority int) error
}

// PrintService enqueues print jobs for completed creations.
type PrintService struct {
	store PrintStore
	queue PrintPublisher
	cost  int64
}

func NewPrintService(store PrintStore, queue PrintPublisher, cost int64) *PrintService {
	return &PrintService{store: store, queue: queue, cost: cost}
}

// Enqueue creates a queued print job for a creation that has a 3D asset,
// deducting the print cost from the user's tokens, then publishes the
// dispatch. A publish failure leaves the row queued; the job is re-published
// by an operator, not silently retried here.
func (s *PrintService) Enqueue(userID, creationID uint64, productName string) (*models.PrintJob, error) {
	creation, err := s.store.GetCreation(creationID)
	if err != nil {
		return nil, err
	}
	if creation.UserID != userID {
		return nil, ErrNotOwner
	}
	if !creation.HasModel() {
		return nil, ErrNoModel
	}

	job := &models.PrintJob{
		ID:          uuid.New().String(),
		UserID:      userID,
		CreationID:  creationID,
		ProductName: productName,
		Status:      models.PrintStatusQueued,
		FileURL:     creation.Generated3DURL,
	}
	if err := s.store.CreatePrintJobPaid(job, s.cost); err != nil {
		return nil, err
	}

	dispatch := models.PrintDispatch{
		PrintID:     job.ID,
		UserID:      userID,
		CreationID:  creationID,
		ProductName: productName,
		FileURL:     job.FileURL,
		Priority:    5,
	}
	b, err := json.Marshal(dispatch)
	if err != nil {
		return job, err
	}
	if err := s.queue.PublishPrintJob(b, dispatch.Priority); err != nil {
		zap.L().Error("print job stored but dispatch publish failed",
			zap.String("print_id", job.ID), zap.Error(err))
		return job, err
	}
	return job, nil
}

// List returns the user's print jobs, newest first.
func (s *PrintService) List(userID uint64) ([]models.PrintJob, error) {
	return s.store.ListPrintJobsByUser(userID)
}
