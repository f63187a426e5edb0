package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cudliy/models"
)

func TestHappyPath(t *testing.T) {
	st := NewState()
	for _, next := range []Stage{RecordCreated, ImageRequested, ImageReady, ModelRequested, ModelReady} {
		require.NoError(t, st.Advance(next))
	}
	assert.True(t, st.Stage.Terminal())
}

func TestModelStageRequiresImageStage(t *testing.T) {
	st := NewState()
	require.NoError(t, st.Advance(RecordCreated))
	assert.Error(t, st.Advance(ModelRequested), "3D stage must not be reachable before the image stage")
	assert.Error(t, st.Advance(ImageReady), "image must be requested before it is ready")
}

func TestModelFailureDropsBackToImageReady(t *testing.T) {
	st := &State{Stage: ModelRequested}
	require.NoError(t, st.Advance(ImageReady))
	// retry of just the 3D stage
	require.NoError(t, st.Advance(ModelRequested))
	require.NoError(t, st.Advance(ModelReady))
}

func TestFail(t *testing.T) {
	st := &State{Stage: ImageRequested}
	require.NoError(t, st.Fail("upstream timeout"))
	assert.Equal(t, Failed, st.Stage)
	assert.Equal(t, "upstream timeout", st.Err)

	// failed is terminal
	assert.Error(t, st.Advance(ImageRequested))
	assert.Error(t, st.Fail("again"))
}

func TestFailTerminalRejected(t *testing.T) {
	st := &State{Stage: ModelReady}
	assert.Error(t, st.Fail("too late"))
	assert.Equal(t, ModelReady, st.Stage)
}

func TestFromRecord(t *testing.T) {
	cases := []struct {
		name string
		c    models.Creation
		want Stage
	}{
		{"fresh", models.Creation{Status: models.StatusPending}, RecordCreated},
		{"image attached", models.Creation{GeneratedImageURL: "https://x/a.png", Status: models.StatusProcessing}, ImageReady},
		{"completed", models.Creation{GeneratedImageURL: "https://x/a.png", Generated3DURL: "https://x/a.glb", Status: models.StatusCompleted}, ModelReady},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromRecord(&tc.c).Stage)
		})
	}
}
