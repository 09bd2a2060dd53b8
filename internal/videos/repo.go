package videos

import "context"

// Repo persists video jobs.
//
// UpdateStatus never moves a row out of a terminal state; it reports whether
// the update was applied. MarkRefunded flips credits_refunded from false to
// true and reports whether this call did it.
type Repo interface {
	Insert(ctx context.Context, v Video) (Video, error)
	GetByID(ctx context.Context, id string) (Video, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Video, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (bool, error)
	MarkRefunded(ctx context.Context, id string) (bool, error)
}
