// Package pipeline holds the per-creation stage machine. The two external
// generation calls are never batched as one unit: the image stage must finish
// before the 3D stage becomes eligible, and a 3D failure drops back to
// ImageReady so only that stage is retried.
package pipeline

import (
	"fmt"

	"cudliy/models"
)

type Stage int

const (
	Idle Stage = iota
	RecordCreated
	ImageRequested
	ImageReady
	ModelRequested
	ModelReady
	Failed
)

var stageNames = map[Stage]string{
	Idle:           "idle",
	RecordCreated:  "record_created",
	ImageRequested: "image_requested",
	ImageReady:     "image_ready",
	ModelRequested: "model_requested",
	ModelReady:     "model_ready",
	Failed:         "failed",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Terminal stages accept no further transitions. A failed creation is
// abandoned; the user starts over with a brand-new creation.
func (s Stage) Terminal() bool { return s == ModelReady || s == Failed }

// edges lists the legal forward transitions. ModelRequested -> ImageReady is
// the 3D-stage retry path: the image artifact is kept.
var edges = map[Stage][]Stage{
	Idle:           {RecordCreated},
	RecordCreated:  {ImageRequested},
	ImageRequested: {ImageReady},
	ImageReady:     {ModelRequested},
	ModelRequested: {ModelReady, ImageReady},
}

// State is the explicit finite-state value owned by the orchestrator.
// Presentation reads it; nothing else mutates it.
type State struct {
	Stage Stage
	Err   string
}

func NewState() *State { return &State{Stage: Idle} }

// Advance moves to the target stage if the transition is legal.
func (st *State) Advance(to Stage) error {
	for _, next := range edges[st.Stage] {
		if next == to {
			st.Stage = to
			st.Err = ""
			return nil
		}
	}
	return fmt.Errorf("illegal stage transition %s -> %s", st.Stage, to)
}

// Fail marks the state failed with the upstream error description. Failing a
// terminal state is rejected so a completed creation can never regress.
func (st *State) Fail(msg string) error {
	if st.Stage.Terminal() {
		return fmt.Errorf("cannot fail terminal stage %s", st.Stage)
	}
	st.Stage = Failed
	st.Err = msg
	return nil
}

// FromRecord rebuilds the stage from a persisted creation, used when the
// in-memory state is gone (process restart) or the request arrives at another
// instance. The record only ever reflects the last completed stage.
func FromRecord(c *models.Creation) *State {
	switch {
	case c.HasModel():
		return &State{Stage: ModelReady}
	case c.HasImage():
		return &State{Stage: ImageReady}
	default:
		return &State{Stage: RecordCreated}
	}
}
