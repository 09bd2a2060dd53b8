package users

import (
	"context"
	"sync"
	"time"

	"video-backend/internal/credits"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	users  map[string]User
	byWhop map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:  make(map[string]User),
		byWhop: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byWhop[user.WhopUserID]; ok {
		return User{}, ErrDuplicate
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	r.byWhop[user.WhopUserID] = user.ID
	return user, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByWhopID(ctx context.Context, whopUserID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byWhop[whopUserID]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

func (r *MemoryRepo) UpdateTier(ctx context.Context, userID, tier string) error {
	_, err := r.mutate(ctx, userID, func(u *User) error {
		u.SubscriptionTier = tier
		return nil
	})
	return err
}

func (r *MemoryRepo) Balance(ctx context.Context, userID string) (int, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.CreditsRemaining, nil
}

func (r *MemoryRepo) TryDeduct(ctx context.Context, userID string, amount int) (int, error) {
	return r.mutate(ctx, userID, func(u *User) error {
		if u.CreditsRemaining < amount {
			return credits.ErrInsufficientCredits
		}
		u.CreditsRemaining -= amount
		return nil
	})
}

func (r *MemoryRepo) Refund(ctx context.Context, userID string, amount int) (int, error) {
	return r.mutate(ctx, userID, func(u *User) error {
		u.CreditsRemaining += amount
		return nil
	})
}

func (r *MemoryRepo) Add(ctx context.Context, userID string, amount int) (int, error) {
	return r.mutate(ctx, userID, func(u *User) error {
		u.CreditsRemaining += amount
		u.TotalCreditsPurchased += amount
		return nil
	})
}

// mutate applies fn under the write lock. On error the row is left unchanged
// and the current balance is returned alongside it.
func (r *MemoryRepo) mutate(ctx context.Context, userID string, fn func(*User) error) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	if err := fn(&user); err != nil {
		return r.users[userID].CreditsRemaining, err
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return user.CreditsRemaining, nil
}

var _ Repo = (*MemoryRepo)(nil)
