package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(imageURL, modelURL string) *Client {
	return New(imageURL, modelURL, 2*time.Second)
}

func TestGenerateImageFromText(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"text":        r.URL.Query().Get("text"),
			"creation_id": r.URL.Query().Get("creation_id"),
			"user_id":     r.URL.Query().Get("user_id"),
			"timestamp":   r.URL.Query().Get("timestamp"),
		}
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"image_url":"https://x/a.png"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	res, err := c.GenerateImageFromText(context.Background(), ImageRequest{
		Text:       "  a red dragon ",
		CreationID: "42",
		UserID:     "7",
		Timestamp:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/a.png", res.ArtifactURL)
	assert.JSONEq(t, `{"success":true,"image_url":"https://x/a.png"}`, string(res.Raw))

	assert.Equal(t, "a red dragon", gotQuery["text"], "text is trimmed before sending")
	assert.Equal(t, "42", gotQuery["creation_id"])
	assert.Equal(t, "7", gotQuery["user_id"])
	assert.Equal(t, "2025-03-01T12:00:00Z", gotQuery["timestamp"])
}

func TestGenerateModelFromImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://x/a.png", r.URL.Query().Get("image_url"))
		w.Write([]byte(`{"model_url":"https://x/a.glb"}`))
	}))
	defer srv.Close()

	c := newTestClient("", srv.URL)
	res, err := c.GenerateModelFromImage(context.Background(), ModelRequest{
		ImageURL:   "https://x/a.png",
		CreationID: "42",
		UserID:     "7",
		Timestamp:  time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/a.glb", res.ArtifactURL)
}

func TestValidationRejectsBeforeAnyCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	c := newTestClient(srv.URL, srv.URL)

	_, err := c.GenerateImageFromText(context.Background(), ImageRequest{Text: "   ", CreationID: "1", UserID: "2"})
	assert.Error(t, err)

	_, err = c.GenerateImageFromText(context.Background(), ImageRequest{Text: "a toy", UserID: "2"})
	assert.Error(t, err)

	_, err = c.GenerateModelFromImage(context.Background(), ModelRequest{CreationID: "1", UserID: "2"})
	assert.Error(t, err)

	assert.False(t, called, "validation failures must not reach the network")
}

func TestNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow not registered", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.GenerateImageFromText(context.Background(), ImageRequest{Text: "a toy", CreationID: "1", UserID: "2", Timestamp: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.GenerateImageFromText(context.Background(), ImageRequest{Text: "a toy", CreationID: "1", UserID: "2", Timestamp: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestMissingArtifactFieldIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"queued"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.GenerateImageFromText(context.Background(), ImageRequest{Text: "a toy", CreationID: "1", UserID: "2", Timestamp: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image_url")
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"image_url":"https://x/a.png"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, 50*time.Millisecond)
	_, err := c.GenerateImageFromText(context.Background(), ImageRequest{Text: "a toy", CreationID: "1", UserID: "2", Timestamp: time.Now()})
	assert.Error(t, err)
}
