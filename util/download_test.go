package util

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadModelFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("glTF binary payload"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := DownloadModelFile(srv.URL, dir, "p-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "p-1.glb"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "glTF binary payload", string(data))
}

func TestDownloadFailureLeavesNoSpoolFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := DownloadModelFile(srv.URL, dir, "p-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	_, statErr := os.Stat(filepath.Join(dir, "p-1.glb"))
	assert.True(t, os.IsNotExist(statErr), "no empty .glb is left behind on failure")
}
