package util

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DownloadModelFile pulls a generated 3D asset into the local print spool and
// returns the spooled path. The print worker calls this before handing the
// file to the slicer.
func DownloadModelFile(fileURL, spoolDir, printID string) (string, error) {
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create spool dir: %v", err)
	}

	resp, err := http.Get(fileURL)
	if err != nil {
		return "", fmt.Errorf("download request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	// create the spool file only once the response is good; a failed
	// download must not leave an empty .glb behind
	path := filepath.Join(spoolDir, printID+".glb")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %v", err)
	}

	if _, err = io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write spool file: %v", err)
	}
	if err = out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write spool file: %v", err)
	}

	return path, nil
}
