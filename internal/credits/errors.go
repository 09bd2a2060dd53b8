package credits

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientCredits indicates the balance cannot cover the requested amount.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrInvalidAmount is returned for negative ledger amounts.
	ErrInvalidAmount = errors.New("invalid credit amount")
)

// InsufficientError reports a shortfall with the amounts involved.
type InsufficientError struct {
	Required  int
	Available int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("Insufficient credits. Required: %d, Available: %d", e.Required, e.Available)
}

func (e *InsufficientError) Unwrap() error {
	return ErrInsufficientCredits
}
