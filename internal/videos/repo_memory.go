package videos

import (
	"context"
	"sort"
	"sync"
	"time"

	"video-backend/internal/provider"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	videos map[string]Video
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{videos: make(map[string]Video)}
}

func (r *MemoryRepo) Insert(ctx context.Context, v Video) (Video, error) {
	if err := ctx.Err(); err != nil {
		return Video{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	if v.PromptJSON == nil {
		v.PromptJSON = map[string]any{}
	}
	r.videos[v.ID] = v
	return v, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Video, error) {
	if err := ctx.Err(); err != nil {
		return Video{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.videos[id]
	if !ok {
		return Video{}, ErrNotFound
	}
	return v, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Video, 0)
	for _, v := range r.videos {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return false, ErrNotFound
	}
	if v.Status.Terminal() {
		return false, nil
	}
	if v.Status == provider.StatusProcessing && update.Status == provider.StatusPending {
		return false, nil
	}
	v.Status = update.Status
	v.VideoURL = update.VideoURL
	v.StorageKey = update.StorageKey
	v.ErrorMessage = update.ErrorMessage
	v.Progress = update.Progress
	v.UpdatedAt = time.Now().UTC()
	r.videos[id] = v
	return true, nil
}

func (r *MemoryRepo) MarkRefunded(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return false, ErrNotFound
	}
	if v.CreditsRefunded {
		return false, nil
	}
	v.CreditsRefunded = true
	v.UpdatedAt = time.Now().UTC()
	r.videos[id] = v
	return true, nil
}

var _ Repo = (*MemoryRepo)(nil)
