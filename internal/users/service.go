package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"video-backend/internal/credits"
	"video-backend/internal/shared/telemetry"
)

// ErrInvalidTier is returned when a tier name is not in the catalogue.
var ErrInvalidTier = errors.New("invalid subscription tier")

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// GetOrCreate returns the user for an external identity, creating it on first
// sight with the starter tier and its monthly credits.
func (s *Service) GetOrCreate(ctx context.Context, id Identity) (User, bool, error) {
	if s == nil || s.Repo == nil {
		return User{}, false, errors.New("users service not configured")
	}
	whopID := strings.TrimSpace(id.WhopUserID)
	if whopID == "" {
		return User{}, false, errors.New("whop user id is required")
	}

	user, err := s.Repo.GetByWhopID(ctx, whopID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, fmt.Errorf("lookup user: %w", err)
	}

	starter := credits.StarterCredits()
	user, err = s.Repo.Create(ctx, User{
		ID:                    uuid.NewString(),
		WhopUserID:            whopID,
		Email:                 strings.TrimSpace(id.Email),
		Username:              strings.TrimSpace(id.Username),
		SubscriptionTier:      credits.TierStarter,
		CreditsRemaining:      starter,
		TotalCreditsPurchased: starter,
	})
	if errors.Is(err, ErrDuplicate) {
		// Another request created the row between our read and insert.
		user, err = s.Repo.GetByWhopID(ctx, whopID)
		if err != nil {
			return User{}, false, fmt.Errorf("lookup user: %w", err)
		}
		return user, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("create user: %w", err)
	}
	telemetry.Info("users.created", map[string]any{
		"user_id":      user.ID,
		"whop_user_id": whopID,
		"credits":      starter,
	})
	return user, true, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	// ids are uuid columns; anything else cannot name a row.
	if _, err := uuid.Parse(userID); err != nil {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

// UpdateTier changes the subscription tier. Credits are granted separately.
func (s *Service) UpdateTier(ctx context.Context, userID, tier string) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if !credits.ValidTier(tier) {
		return fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	if err := s.Repo.UpdateTier(ctx, userID, tier); err != nil {
		return err
	}
	telemetry.Info("users.tier_updated", map[string]any{
		"user_id": userID,
		"tier":    tier,
	})
	return nil
}
