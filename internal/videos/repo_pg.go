package videos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"video-backend/internal/provider"
)

type PGRepo struct {
	DB *sql.DB
}

const videoColumns = `id, user_id, prompt_text, prompt_json, model, duration_seconds, resolution, status, provider, provider_job_id,
video_url, storage_key, error_message, progress, credits_used, credits_refunded, created_at, updated_at`

func (r *PGRepo) Insert(ctx context.Context, v Video) (Video, error) {
	if v.PromptJSON == nil {
		v.PromptJSON = map[string]any{}
	}
	promptJSON, err := json.Marshal(v.PromptJSON)
	if err != nil {
		return Video{}, fmt.Errorf("encode prompt json: %w", err)
	}
	const query = `
INSERT INTO videos (id, user_id, prompt_text, prompt_json, model, duration_seconds, resolution, status, provider, provider_job_id, credits_used, credits_refunded, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, now(), now())
RETURNING created_at, updated_at`
	err = r.DB.QueryRowContext(ctx, query,
		v.ID,
		v.UserID,
		v.PromptText,
		string(promptJSON),
		v.Model,
		v.DurationSeconds,
		v.Resolution,
		string(v.Status),
		v.Provider,
		v.ProviderJobID,
		v.CreditsUsed,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Video{}, err
	}
	v.CreditsRefunded = false
	return v, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Video, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1 LIMIT 1`, id)
	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Video{}, ErrNotFound
		}
		return Video{}, err
	}
	return v, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Video, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+videoColumns+`
FROM videos
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
UPDATE videos
SET status = $1, video_url = $2, storage_key = $3, error_message = $4, progress = $5, updated_at = now()
WHERE id = $6 AND status NOT IN ('completed', 'failed')
  AND NOT (status = 'processing' AND $1 = 'pending')`,
		string(update.Status),
		nullableString(update.VideoURL),
		nullableString(update.StorageKey),
		nullableString(update.ErrorMessage),
		nullableFloat(update.Progress),
		id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepo) MarkRefunded(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
UPDATE videos SET credits_refunded = true, updated_at = now()
WHERE id = $1 AND credits_refunded = false`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (Video, error) {
	var v Video
	var status string
	var promptJSON []byte
	var videoURL, storageKey, errorMessage sql.NullString
	var progress sql.NullFloat64
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.PromptText,
		&promptJSON,
		&v.Model,
		&v.DurationSeconds,
		&v.Resolution,
		&status,
		&v.Provider,
		&v.ProviderJobID,
		&videoURL,
		&storageKey,
		&errorMessage,
		&progress,
		&v.CreditsUsed,
		&v.CreditsRefunded,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return Video{}, err
	}
	v.Status = provider.Status(status)
	v.VideoURL = videoURL.String
	v.StorageKey = storageKey.String
	v.ErrorMessage = errorMessage.String
	if progress.Valid {
		p := progress.Float64
		v.Progress = &p
	}
	v.PromptJSON = map[string]any{}
	if len(promptJSON) > 0 {
		if err := json.Unmarshal(promptJSON, &v.PromptJSON); err != nil {
			return Video{}, fmt.Errorf("decode prompt json: %w", err)
		}
	}
	return v, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
