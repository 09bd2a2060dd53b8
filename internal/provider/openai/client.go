// Package openai submits Sora 2 jobs to the OpenAI videos API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"video-backend/internal/provider"
)

const (
	defaultBaseURL = "https://api.openai.com"
	videosPath     = "/v1/videos"
	defaultTimeout = 60 * time.Second
)

// Config configures the OpenAI videos client.
type Config struct {
	APIKey       string
	BaseURL      string
	Organization string
	Project      string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client implements provider.Provider and provider.Downloader.
type Client struct {
	apiKey     string
	baseURL    string
	org        string
	project    string
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
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
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		org:        strings.TrimSpace(cfg.Organization),
		project:    strings.TrimSpace(cfg.Project),
		httpClient: httpClient,
	}, nil
}

func (c *Client) Name() string { return provider.NameOpenAI }

type videoJob struct {
	ID       string         `json:"id"`
	Model    string         `json:"model"`
	Status   string         `json:"status"`
	Progress float64        `json:"progress"`
	Size     string         `json:"size"`
	Seconds  string         `json:"seconds"`
	Error    *videoJobError `json:"error"`
}

type videoJobError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Submit creates a video job.
func (c *Client) Submit(ctx context.Context, req provider.SubmitRequest) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := [][2]string{
		{"prompt", req.Prompt},
		{"model", req.Model},
		{"seconds", strconv.Itoa(req.Seconds)},
		{"size", req.Size},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, videosPath, body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var job videoJob
	if err := c.doJSON(httpReq, &job); err != nil {
		return "", err
	}
	if job.ID == "" {
		return "", provider.ErrMissingJobID
	}
	return job.ID, nil
}

// Poll fetches the job and normalizes its status.
func (c *Client) Poll(ctx context.Context, jobID string) (provider.JobStatus, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, videosPath+"/"+jobID, nil)
	if err != nil {
		return provider.JobStatus{}, err
	}
	var job videoJob
	if err := c.doJSON(httpReq, &job); err != nil {
		return provider.JobStatus{}, err
	}

	out := provider.JobStatus{
		ID:     jobID,
		Status: NormalizeStatus(job.Status),
	}
	if job.Progress > 0 {
		p := normalizeProgress(job.Progress)
		out.Progress = &p
	}
	if job.Error != nil && job.Error.Message != "" {
		out.Error = job.Error.Message
	}
	if out.Status == provider.StatusCompleted {
		out.VideoURL = c.contentURL(jobID)
	}
	return out, nil
}

// Download streams the finished MP4. The caller closes the reader.
func (c *Client) Download(ctx context.Context, jobID string) (io.ReadCloser, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, videosPath+"/"+jobID+"/content", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "video/mp4")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai download: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return resp.Body, nil
}

// NormalizeStatus maps the videos API vocabulary onto provider.Status.
// Unknown states stay non-terminal.
func NormalizeStatus(native string) provider.Status {
	switch strings.ToLower(strings.TrimSpace(native)) {
	case "queued", "pending":
		return provider.StatusPending
	case "in_progress", "processing":
		return provider.StatusProcessing
	case "completed":
		return provider.StatusCompleted
	case "failed", "canceled", "cancelled", "rejected", "expired":
		return provider.StatusFailed
	default:
		return provider.StatusProcessing
	}
}

func (c *Client) contentURL(jobID string) string {
	return c.baseURL + videosPath + "/" + jobID + "/content"
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.org != "" {
		req.Header.Set("OpenAI-Organization", c.org)
	}
	if c.project != "" {
		req.Header.Set("OpenAI-Project", c.project)
	}
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", provider.ErrJobNotFound, readAPIError(resp.Body))
	}
	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openai response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	return fmt.Errorf("openai API error (%d): %s", resp.StatusCode, readAPIError(resp.Body))
}

func readAPIError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return err.Error()
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "unknown error"
	}
	var parsed struct {
		Error *videoJobError `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return trimmed
}

// normalizeProgress accepts either a 0-1 fraction or a percentage.
func normalizeProgress(progress float64) float64 {
	if progress <= 1 && progress >= 0 {
		return progress * 100
	}
	return progress
}

var (
	_ provider.Provider   = (*Client)(nil)
	_ provider.Downloader = (*Client)(nil)
)
