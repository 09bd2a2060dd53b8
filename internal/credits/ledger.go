package credits

import (
	"context"
	"errors"
	"fmt"

	"video-backend/internal/shared/telemetry"
)

// BalanceStore persists one integer balance per user.
//
// TryDeduct must be a single conditional decrement: it subtracts amount only
// when the balance covers it. When it does not, the store returns the current
// balance together with ErrInsufficientCredits. Unknown users yield the
// store's own not-found error.
type BalanceStore interface {
	Balance(ctx context.Context, userID string) (int, error)
	TryDeduct(ctx context.Context, userID string, amount int) (int, error)
	Refund(ctx context.Context, userID string, amount int) (int, error)
	Add(ctx context.Context, userID string, amount int) (int, error)
}

// Check is the advisory result of CheckBalance.
type Check struct {
	Sufficient bool `json:"sufficient"`
	Balance    int  `json:"balance"`
}

// Ledger applies credit operations against a BalanceStore.
type Ledger struct {
	store BalanceStore
}

// NewLedger constructs a Ledger.
func NewLedger(store BalanceStore) *Ledger {
	return &Ledger{store: store}
}

// CheckBalance reports whether userID can cover required. It is advisory only:
// an unknown user or store failure reads as insufficient with a zero balance.
func (l *Ledger) CheckBalance(ctx context.Context, userID string, required int) (Check, error) {
	balance, err := l.store.Balance(ctx, userID)
	if err != nil {
		return Check{Sufficient: false, Balance: 0}, err
	}
	return Check{Sufficient: balance >= required, Balance: balance}, nil
}

// Deduct atomically removes amount from the balance.
func (l *Ledger) Deduct(ctx context.Context, userID string, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("deduct %d: %w", amount, ErrInvalidAmount)
	}
	if amount == 0 {
		return l.store.Balance(ctx, userID)
	}
	balance, err := l.store.TryDeduct(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			telemetry.Info("credits.deduct_rejected", map[string]any{
				"user_id":   userID,
				"required":  amount,
				"available": balance,
			})
			return balance, &InsufficientError{Required: amount, Available: balance}
		}
		return 0, fmt.Errorf("deduct credits: %w", err)
	}
	telemetry.Info("credits.deduct", map[string]any{
		"user_id": userID,
		"amount":  amount,
		"balance": balance,
	})
	return balance, nil
}

// Refund returns amount to the balance. It does not touch the purchased total.
func (l *Ledger) Refund(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("refund %d: %w", amount, ErrInvalidAmount)
	}
	if amount == 0 {
		return nil
	}
	balance, err := l.store.Refund(ctx, userID, amount)
	if err != nil {
		telemetry.Error("credits.refund_failed", map[string]any{
			"user_id": userID,
			"amount":  amount,
			"error":   err.Error(),
		})
		return fmt.Errorf("refund credits: %w", err)
	}
	telemetry.Info("credits.refund", map[string]any{
		"user_id": userID,
		"amount":  amount,
		"balance": balance,
	})
	return nil
}

// Add credits a purchase or upgrade, raising the purchased total by the same amount.
func (l *Ledger) Add(ctx context.Context, userID string, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("add %d: %w", amount, ErrInvalidAmount)
	}
	if amount == 0 {
		return l.store.Balance(ctx, userID)
	}
	balance, err := l.store.Add(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("add credits: %w", err)
	}
	telemetry.Info("credits.add", map[string]any{
		"user_id": userID,
		"amount":  amount,
		"balance": balance,
	})
	return balance, nil
}
