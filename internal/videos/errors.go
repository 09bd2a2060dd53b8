package videos

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no video matches the lookup.
	ErrNotFound = errors.New("video not found")
	// ErrValidation marks request problems the caller can fix.
	ErrValidation = errors.New("invalid request")
	// ErrStorage is returned when the job row could not be written.
	ErrStorage = errors.New("Failed to store video record")
	// ErrModelNotAllowed is returned when the user's tier excludes the model.
	ErrModelNotAllowed = errors.New("model not allowed for tier")
)

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a failure reported by the video provider.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "provider " + e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }
