// Package gateway issues the calls to the external generation webhooks
// (text-to-image and image-to-3D) and normalizes their responses. Transport
// concerns stay behind this boundary: the orchestrator only ever sees a
// Result or a descriptive error.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ImageRequest is the input to the text-to-image stage.
type ImageRequest struct {
	Text       string
	CreationID string
	UserID     string
	Timestamp  time.Time
}

// ModelRequest is the input to the image-to-3D stage, keyed on an existing
// image artifact rather than free text.
type ModelRequest struct {
	ImageURL   string
	CreationID string
	UserID     string
	Timestamp  time.Time
}

// Result is the uniform success shape for both stages: the artifact URL plus
// the raw upstream payload for anything the caller wants to inspect.
type Result struct {
	ArtifactURL string
	Raw         json.RawMessage
}

type Client struct {
	imageWebhookURL string
	modelWebhookURL string
	http            *http.Client
}

// New builds a gateway client. The timeout applies to each outbound call; a
// hung upstream must not freeze a stage indefinitely.
func New(imageWebhookURL, modelWebhookURL string, timeout time.Duration) *Client {
	return &Client{
		imageWebhookURL: imageWebhookURL,
		modelWebhookURL: modelWebhookURL,
		http:            &http.Client{Timeout: timeout},
	}
}

// GenerateImageFromText calls the text-to-image webhook. Two calls produce
// two independent upstream side effects; no deduplication is applied here.
func (c *Client) GenerateImageFromText(ctx context.Context, req ImageRequest) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("generation text must not be empty")
	}
	if req.CreationID == "" || req.UserID == "" {
		return nil, errors.New("creation id and user id are required")
	}
	params := url.Values{}
	params.Set("text", strings.TrimSpace(req.Text))
	params.Set("creation_id", req.CreationID)
	params.Set("user_id", req.UserID)
	params.Set("timestamp", req.Timestamp.UTC().Format(time.RFC3339))
	return c.call(ctx, c.imageWebhookURL, params, "image_url")
}

// GenerateModelFromImage calls the image-to-3D webhook with a previously
// generated image artifact.
func (c *Client) GenerateModelFromImage(ctx context.Context, req ModelRequest) (*Result, error) {
	if req.ImageURL == "" {
		return nil, errors.New("image url must not be empty")
	}
	if req.CreationID == "" || req.UserID == "" {
		return nil, errors.New("creation id and user id are required")
	}
	params := url.Values{}
	params.Set("image_url", req.ImageURL)
	params.Set("creation_id", req.CreationID)
	params.Set("user_id", req.UserID)
	params.Set("timestamp", req.Timestamp.UTC().Format(time.RFC3339))
	return c.call(ctx, c.modelWebhookURL, params, "model_url")
}

// call POSTs to the webhook with the stage parameters in the query string
// (the n8n workflows read them there) and reads the named artifact field out
// of the JSON body. A 2xx body without the artifact field counts as failure:
// a stage that "succeeded" without producing anything is not a success.
func (c *Client) call(ctx context.Context, webhookURL string, params url.Values, artifactField string) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %v", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("webhook call failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %s", strings.TrimSpace(string(body)))
	}

	var artifact string
	if raw, ok := fields[artifactField]; ok {
		if err := json.Unmarshal(raw, &artifact); err != nil {
			return nil, fmt.Errorf("malformed %s field in response", artifactField)
		}
	}
	if artifact == "" {
		return nil, fmt.Errorf("webhook response carried no %s", artifactField)
	}

	return &Result{ArtifactURL: artifact, Raw: body}, nil
}
