// Package provider defines the capability every video-generation backend
// implements and the normalized job status the rest of the service reasons about.
package provider

import (
	"context"
	"errors"
	"io"
)

// Status is the normalized job lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is one of the four normalized states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// SubmitRequest carries one generation request.
type SubmitRequest struct {
	Prompt  string
	Model   string
	Size    string
	Seconds int
}

// JobStatus is a poll result expressed in the normalized vocabulary.
type JobStatus struct {
	ID       string   `json:"id"`
	Status   Status   `json:"status"`
	VideoURL string   `json:"videoUrl,omitempty"`
	Error    string   `json:"error,omitempty"`
	Progress *float64 `json:"progress,omitempty"`
}

// Provider submits jobs to an external video service and polls them.
type Provider interface {
	Name() string
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	Poll(ctx context.Context, jobID string) (JobStatus, error)
}

// Downloader is implemented by providers whose media URLs need the provider's
// credentials to fetch.
type Downloader interface {
	Download(ctx context.Context, jobID string) (io.ReadCloser, error)
}

var (
	// ErrMissingJobID is returned when a provider accepts a request without an id.
	ErrMissingJobID = errors.New("provider response missing job id")
	// ErrJobNotFound is returned when the provider does not know the job.
	ErrJobNotFound = errors.New("provider job not found")
)

// Names of the built-in providers.
const (
	NameOpenAI    = "openai"
	NameReplicate = "replicate"
	NameMock      = "mock"
)
