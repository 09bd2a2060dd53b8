// Package replicate runs Sora 2 through Replicate's predictions API.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"video-backend/internal/provider"
	"video-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://api.replicate.com"
	defaultTimeout = 60 * time.Second
)

var modelRefs = map[string]string{
	"sora-2":     "openai/sora-2",
	"sora-2-pro": "openai/sora-2-pro",
}

// Config configures the Replicate client.
type Config struct {
	APIToken   string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements provider.Provider over Replicate predictions.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, fmt.Errorf("REPLICATE_API_TOKEN is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{token: cfg.APIToken, baseURL: baseURL, httpClient: httpClient}, nil
}

func (c *Client) Name() string { return provider.NameReplicate }

type predictionInput struct {
	Prompt      string `json:"prompt"`
	Duration    int    `json:"duration"`
	AspectRatio string `json:"aspect_ratio"`
}

type createRequest struct {
	Input predictionInput `json:"input"`
}

type prediction struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Output     any            `json:"output"`
	OutputURL  any            `json:"output_url"`
	OutputURLs any            `json:"output_urls"`
	Files      any            `json:"files"`
	Error      any            `json:"error"`
	Metrics    map[string]any `json:"metrics"`
}

// Submit creates a prediction on the model matching req.Model.
func (c *Client) Submit(ctx context.Context, req provider.SubmitRequest) (string, error) {
	ref, ok := modelRefs[req.Model]
	if !ok {
		return "", fmt.Errorf("replicate: unsupported model %q", req.Model)
	}
	payload, err := json.Marshal(createRequest{Input: predictionInput{
		Prompt:      req.Prompt,
		Duration:    req.Seconds,
		AspectRatio: AspectRatio(req.Size),
	}})
	if err != nil {
		return "", err
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/v1/models/"+ref+"/predictions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var pred prediction
	if err := c.doJSON(httpReq, &pred); err != nil {
		return "", err
	}
	if pred.ID == "" {
		return "", provider.ErrMissingJobID
	}
	return pred.ID, nil
}

// Poll fetches a prediction and normalizes it.
func (c *Client) Poll(ctx context.Context, jobID string) (provider.JobStatus, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/v1/predictions/"+jobID, nil)
	if err != nil {
		return provider.JobStatus{}, err
	}
	var pred prediction
	if err := c.doJSON(httpReq, &pred); err != nil {
		return provider.JobStatus{}, err
	}

	out := provider.JobStatus{
		ID:     jobID,
		Status: NormalizeStatus(pred.Status),
		Error:  errorString(pred.Error),
	}
	if p, ok := pred.Metrics["progress_percent"].(float64); ok {
		out.Progress = &p
	}
	if pred.Status == "succeeded" {
		for _, candidate := range []any{pred.Output, pred.OutputURL, pred.OutputURLs, pred.Files} {
			if u := provider.FindVideoURL(candidate); u != "" {
				out.VideoURL = u
				break
			}
		}
		if out.VideoURL == "" {
			telemetry.Warn("provider.url_missing", map[string]any{
				"provider": provider.NameReplicate,
				"job_id":   jobID,
			})
		}
	}
	return out, nil
}

// NormalizeStatus maps Replicate prediction states onto provider.Status.
// Anything unrecognized stays non-terminal.
func NormalizeStatus(native string) provider.Status {
	switch native {
	case "starting", "queued":
		return provider.StatusPending
	case "processing":
		return provider.StatusProcessing
	case "succeeded":
		return provider.StatusCompleted
	case "failed", "canceled":
		return provider.StatusFailed
	default:
		return provider.StatusProcessing
	}
}

// AspectRatio converts a WxH size to Replicate's orientation name.
func AspectRatio(size string) string {
	parts := strings.SplitN(strings.ToLower(size), "x", 2)
	if len(parts) == 2 {
		w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
		h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errW == nil && errH == nil && w > h {
			return "landscape"
		}
	}
	return "portrait"
}

func errorString(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	default:
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Sprint(e)
		}
		return string(data)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("replicate request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: Prediction not found", provider.ErrJobNotFound)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("replicate API error (%d): %s", resp.StatusCode, readAPIError(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode replicate response: %w", err)
	}
	return nil
}

func readAPIError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return err.Error()
	}
	var parsed struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Title != "" {
			return parsed.Title
		}
	}
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		return trimmed
	}
	return "unknown error"
}

var _ provider.Provider = (*Client)(nil)
