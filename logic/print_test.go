package logic

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cudliy/models"
)

type fakePrintStore struct {
	creation  *models.Creation
	jobs      []*models.PrintJob
	createErr error
}

func (f *fakePrintStore) GetCreation(uint64) (*models.Creation, error) {
	if f.creation == nil {
		return nil, errors.New("creation not found")
	}
	return f.creation, nil
}

func (f *fakePrintStore) CreatePrintJobPaid(job *models.PrintJob, cost int64) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakePrintStore) ListPrintJobsByUser(uint64) ([]models.PrintJob, error) {
	out := make([]models.PrintJob, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) PublishPrintJob(b []byte, _ int) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, b)
	return nil
}

func completedCreation() *models.Creation {
	return &models.Creation{
		ID:                9001,
		UserID:            testUser,
		InputText:         "a red dragon",
		GeneratedImageURL: "https://x/a.png",
		Generated3DURL:    "https://x/a.glb",
		Status:            models.StatusCompleted,
	}
}

func TestEnqueuePrint(t *testing.T) {
	store := &fakePrintStore{creation: completedCreation()}
	pub := &fakePublisher{}
	svc := NewPrintService(store, pub, 20)

	job, err := svc.Enqueue(testUser, 9001, "Red Dragon Toy")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.PrintStatusQueued, job.Status)
	assert.Equal(t, "https://x/a.glb", job.FileURL)

	require.Len(t, pub.published, 1)
	var dispatch models.PrintDispatch
	require.NoError(t, json.Unmarshal(pub.published[0], &dispatch))
	assert.Equal(t, job.ID, dispatch.PrintID)
	assert.Equal(t, "https://x/a.glb", dispatch.FileURL)
}

func TestEnqueueRequires3DAsset(t *testing.T) {
	creation := completedCreation()
	creation.Generated3DURL = ""
	creation.Status = models.StatusProcessing
	store := &fakePrintStore{creation: creation}
	pub := &fakePublisher{}
	svc := NewPrintService(store, pub, 20)

	_, err := svc.Enqueue(testUser, 9001, "Red Dragon Toy")
	assert.ErrorIs(t, err, ErrNoModel)
	assert.Empty(t, store.jobs)
	assert.Empty(t, pub.published)
}

func TestEnqueueRejectsForeignCreation(t *testing.T) {
	store := &fakePrintStore{creation: completedCreation()}
	svc := NewPrintService(store, &fakePublisher{}, 20)

	_, err := svc.Enqueue(testUser+1, 9001, "Red Dragon Toy")
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestEnqueueStopsOnPaymentFailure(t *testing.T) {
	store := &fakePrintStore{creation: completedCreation(), createErr: errors.New("insufficient tokens")}
	pub := &fakePublisher{}
	svc := NewPrintService(store, pub, 20)

	_, err := svc.Enqueue(testUser, 9001, "Red Dragon Toy")
	require.Error(t, err)
	assert.Empty(t, pub.published, "nothing is dispatched when payment fails")
}

func TestEnqueueSurvivesPublishFailure(t *testing.T) {
	store := &fakePrintStore{creation: completedCreation()}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewPrintService(store, pub, 20)

	job, err := svc.Enqueue(testUser, 9001, "Red Dragon Toy")
	require.Error(t, err)
	require.NotNil(t, job, "the queued row survives a publish failure")
	assert.Len(t, store.jobs, 1)
}
