// Package logic drives each creation through its pipeline: record insert,
// text-to-image, then the explicitly user-triggered image-to-3D conversion.
// The persisted record always reflects the last completed stage.
package logic

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cudliy/gateway"
	"cudliy/models"
	"cudliy/pipeline"
	"cudliy/pkg/snowflake"
	"cudliy/pkg/sse"
)

var (
	ErrEmptyInput    = errors.New("input text must not be empty")
	ErrNotOwner      = errors.New("creation does not belong to this user")
	ErrStageInFlight = errors.New("a generation stage is already in flight for this creation")
	ErrNoImage       = errors.New("creation has no generated image yet")
)

// CreationStore is the persistence contract the orchestrator consumes. Every
// operation is a single round trip; nothing here spans a transaction.
type CreationStore interface {
	InsertCreation(c *models.Creation) error
	GetCreation(creationID uint64) (*models.Creation, error)
	AttachImage(creationID uint64, imageURL string) error
	AttachModel(creationID uint64, modelURL string) error
	ListCreationsByUser(userID uint64) ([]models.Creation, error)
}

// Generator is the two-stage generation gateway contract.
type Generator interface {
	GenerateImageFromText(ctx context.Context, req gateway.ImageRequest) (*gateway.Result, error)
	GenerateModelFromImage(ctx context.Context, req gateway.ModelRequest) (*gateway.Result, error)
}

// StageCache mirrors stage snapshots for status reads; may be nil.
type StageCache interface {
	SaveCreationStage(userID, creationID uint64, stage, status, errMsg string) error
}

// CreationService owns the pipeline state for live creations. One stage at a
// time per creation; concurrent triggers are rejected, not queued.
type CreationService struct {
	store CreationStore
	gen   Generator
	cache StageCache

	mu       sync.Mutex
	stages   map[uint64]*pipeline.State
	inflight map[uint64]bool
}

func NewCreationService(store CreationStore, gen Generator, cache StageCache) *CreationService {
	return &CreationService{
		store:    store,
		gen:      gen,
		cache:    cache,
		stages:   make(map[uint64]*pipeline.State),
		inflight: make(map[uint64]bool),
	}
}

// Submit validates the input and creates the persisted record with status
// pending. No generation call is issued here; that is a separate trigger.
func (s *CreationService) Submit(ctx context.Context, userID uint64, text string) (*models.Creation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	creationID, err := snowflake.GetID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	creation := &models.Creation{
		ID:        creationID,
		UserID:    userID,
		InputText: text,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertCreation(creation); err != nil {
		zap.L().Error("failed to insert creation", zap.Uint64("creation_id", creationID), zap.Error(err))
		return nil, err
	}

	st := pipeline.NewState()
	_ = st.Advance(pipeline.RecordCreated)
	s.setState(creationID, st)
	s.publishStage(creation, s.snapshot(st))

	return creation, nil
}

// GenerateImage runs the text-to-image stage. On success the image URL is
// persisted and the record moves to processing; on gateway failure the record
// is left untouched and the in-memory stage becomes failed.
func (s *CreationService) GenerateImage(ctx context.Context, userID, creationID uint64) (*models.Creation, error) {
	creation, err := s.ownedCreation(userID, creationID)
	if err != nil {
		return nil, err
	}

	if !s.begin(creationID) {
		return nil, ErrStageInFlight
	}
	defer s.end(creationID)

	st := s.stateFor(creation)
	if err := s.advance(st, pipeline.ImageRequested); err != nil {
		return nil, err
	}
	s.publishStage(creation, s.snapshot(st))

	result, err := s.gen.GenerateImageFromText(ctx, gateway.ImageRequest{
		Text:       creation.InputText,
		CreationID: strconv.FormatUint(creation.ID, 10),
		UserID:     strconv.FormatUint(creation.UserID, 10),
		Timestamp:  time.Now(),
	})
	if err != nil {
		// surfaced verbatim; the persisted record keeps its pre-call state
		zap.L().Warn("text-to-image stage failed", zap.Uint64("creation_id", creationID), zap.Error(err))
		s.fail(st, err.Error())
		s.publishStage(creation, s.snapshot(st))
		return nil, err
	}

	if err := s.store.AttachImage(creation.ID, result.ArtifactURL); err != nil {
		// the in-memory artifact is still usable; tolerated inconsistency
		zap.L().Warn("image generated but record update failed",
			zap.Uint64("creation_id", creationID), zap.Error(err))
	}
	creation.GeneratedImageURL = result.ArtifactURL
	creation.Status = models.StatusProcessing

	_ = s.advance(st, pipeline.ImageReady)
	s.publishStage(creation, s.snapshot(st))

	return creation, nil
}

// GenerateModel runs the image-to-3D stage. It is only eligible once an image
// artifact exists, and a failure keeps the image so just this stage retries.
func (s *CreationService) GenerateModel(ctx context.Context, userID, creationID uint64) (*models.Creation, error) {
	creation, err := s.ownedCreation(userID, creationID)
	if err != nil {
		return nil, err
	}
	if !creation.HasImage() {
		return nil, ErrNoImage
	}

	if !s.begin(creationID) {
		return nil, ErrStageInFlight
	}
	defer s.end(creationID)

	st := s.stateFor(creation)
	if err := s.advance(st, pipeline.ModelRequested); err != nil {
		return nil, err
	}
	s.publishStage(creation, s.snapshot(st))

	result, err := s.gen.GenerateModelFromImage(ctx, gateway.ModelRequest{
		ImageURL:   creation.GeneratedImageURL,
		CreationID: strconv.FormatUint(creation.ID, 10),
		UserID:     strconv.FormatUint(creation.UserID, 10),
		Timestamp:  time.Now(),
	})
	if err != nil {
		zap.L().Warn("image-to-3D stage failed", zap.Uint64("creation_id", creationID), zap.Error(err))
		// back to image_ready: the image artifact is retained for a retry
		s.dropToImageReady(st, err.Error())
		s.publishStage(creation, s.snapshot(st))
		return nil, err
	}

	if err := s.store.AttachModel(creation.ID, result.ArtifactURL); err != nil {
		zap.L().Warn("model generated but record update failed",
			zap.Uint64("creation_id", creationID), zap.Error(err))
	}
	creation.Generated3DURL = result.ArtifactURL
	creation.Status = models.StatusCompleted

	_ = s.advance(st, pipeline.ModelReady)
	s.publishStage(creation, s.snapshot(st))

	return creation, nil
}

// Get returns the persisted record together with a snapshot of its current
// stage. The snapshot is a copy; the live state stays behind the lock.
func (s *CreationService) Get(userID, creationID uint64) (*models.Creation, pipeline.State, error) {
	creation, err := s.ownedCreation(userID, creationID)
	if err != nil {
		return nil, pipeline.State{}, err
	}
	return creation, s.snapshot(s.stateFor(creation)), nil
}

// List returns the user's creations, newest first.
func (s *CreationService) List(userID uint64) ([]models.Creation, error) {
	return s.store.ListCreationsByUser(userID)
}

// Reset drops the local stage state for a creation. The record itself is
// never deleted; a new submit starts a brand-new creation.
func (s *CreationService) Reset(creationID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stages, creationID)
	delete(s.inflight, creationID)
}

func (s *CreationService) ownedCreation(userID, creationID uint64) (*models.Creation, error) {
	creation, err := s.store.GetCreation(creationID)
	if err != nil {
		return nil, err
	}
	if creation.UserID != userID {
		return nil, ErrNotOwner
	}
	return creation, nil
}

// stateFor returns the live state for a creation, rebuilding it from the
// record when memory has no entry (restart, another instance took earlier
// stages).
func (s *CreationService) stateFor(c *models.Creation) *pipeline.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stages[c.ID]; ok {
		return st
	}
	st := pipeline.FromRecord(c)
	s.stages[c.ID] = st
	return st
}

func (s *CreationService) setState(creationID uint64, st *pipeline.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[creationID] = st
}

// State pointers in s.stages are shared with concurrent status reads, so
// every mutation and every read goes through these lock-holding helpers.
func (s *CreationService) advance(st *pipeline.State, to pipeline.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return st.Advance(to)
}

func (s *CreationService) fail(st *pipeline.State, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = st.Fail(msg)
}

// dropToImageReady rolls a failed 3D stage back while keeping the error
// visible for status reads.
func (s *CreationService) dropToImageReady(st *pipeline.State, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := st.Advance(pipeline.ImageReady); err != nil {
		zap.L().Error("stage rollback failed", zap.Error(err))
	}
	st.Err = msg
}

func (s *CreationService) snapshot(st *pipeline.State) pipeline.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *st
}

func (s *CreationService) begin(creationID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[creationID] {
		return false
	}
	s.inflight[creationID] = true
	return true
}

func (s *CreationService) end(creationID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, creationID)
}

// publishStage mirrors the stage to Redis and pushes it over SSE. Both are
// best effort; the pipeline never blocks on observers.
func (s *CreationService) publishStage(c *models.Creation, st pipeline.State) {
	if s.cache != nil {
		_ = s.cache.SaveCreationStage(c.UserID, c.ID, st.Stage.String(), c.Status, st.Err)
	}

	payload := struct {
		Type       string `json:"type"`
		UserID     uint64 `json:"user_id"`
		CreationID uint64 `json:"creation_id"`
		Stage      string `json:"stage"`
		Status     string `json:"status"`
		ImageURL   string `json:"image_url,omitempty"`
		ModelURL   string `json:"model_url,omitempty"`
		Error      string `json:"error,omitempty"`
	}{
		Type:       "creation",
		UserID:     c.UserID,
		CreationID: c.ID,
		Stage:      st.Stage.String(),
		Status:     c.Status,
		ImageURL:   c.GeneratedImageURL,
		ModelURL:   c.Generated3DURL,
		Error:      st.Err,
	}

	if hub := sse.GetHub(); hub != nil {
		if b, err := json.Marshal(payload); err == nil {
			hub.PublishTopic(strconv.FormatUint(c.UserID, 10), b)
		}
	}
}
