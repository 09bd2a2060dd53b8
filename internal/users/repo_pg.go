package users

import (
	"context"
	"database/sql"
	"errors"

	"video-backend/internal/credits"
)

type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, whop_user_id, email, username, subscription_tier, credits_remaining, total_credits_purchased, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, whop_user_id, email, username, subscription_tier, credits_remaining, total_credits_purchased, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (whop_user_id) DO NOTHING
RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.WhopUserID,
		nullableString(user.Email),
		nullableString(user.Username),
		user.SubscriptionTier,
		user.CreditsRemaining,
		user.TotalCreditsPurchased,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrDuplicate
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, userID)
}

func (r *PGRepo) GetByWhopID(ctx context.Context, whopUserID string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE whop_user_id = $1 LIMIT 1`, whopUserID)
}

func (r *PGRepo) UpdateTier(ctx context.Context, userID, tier string) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE users SET subscription_tier = $1, updated_at = now() WHERE id = $2`, tier, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := r.DB.QueryRowContext(ctx, `SELECT credits_remaining FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// TryDeduct is a single conditional UPDATE; two requests racing on the same
// balance cannot both pass the credits_remaining >= $1 guard.
func (r *PGRepo) TryDeduct(ctx context.Context, userID string, amount int) (int, error) {
	var balance int
	err := r.DB.QueryRowContext(ctx, `
UPDATE users
SET credits_remaining = credits_remaining - $1, updated_at = now()
WHERE id = $2 AND credits_remaining >= $1
RETURNING credits_remaining`, amount, userID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	current, err := r.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	return current, credits.ErrInsufficientCredits
}

func (r *PGRepo) Refund(ctx context.Context, userID string, amount int) (int, error) {
	return r.increment(ctx, `
UPDATE users
SET credits_remaining = credits_remaining + $1, updated_at = now()
WHERE id = $2
RETURNING credits_remaining`, amount, userID)
}

func (r *PGRepo) Add(ctx context.Context, userID string, amount int) (int, error) {
	return r.increment(ctx, `
UPDATE users
SET credits_remaining = credits_remaining + $1,
    total_credits_purchased = total_credits_purchased + $1,
    updated_at = now()
WHERE id = $2
RETURNING credits_remaining`, amount, userID)
}

func (r *PGRepo) increment(ctx context.Context, query string, amount int, userID string) (int, error) {
	var balance int
	if err := r.DB.QueryRowContext(ctx, query, amount, userID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (User, error) {
	var user User
	var email sql.NullString
	var username sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.WhopUserID,
		&email,
		&username,
		&user.SubscriptionTier,
		&user.CreditsRemaining,
		&user.TotalCreditsPurchased,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if email.Valid {
		user.Email = email.String
	}
	if username.Valid {
		user.Username = username.String
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
