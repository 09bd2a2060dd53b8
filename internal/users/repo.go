package users

import (
	"context"
	"errors"

	"video-backend/internal/credits"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// ErrDuplicate is returned by Create when the external identity already has a row.
var ErrDuplicate = errors.New("user already exists")

// Repo persists users. Balance mutations go through the embedded
// credits.BalanceStore so the ledger never sees the rest of the row.
type Repo interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetByWhopID(ctx context.Context, whopUserID string) (User, error)
	UpdateTier(ctx context.Context, userID, tier string) error
	credits.BalanceStore
}
