package videos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"video-backend/internal/credits"
	"video-backend/internal/provider"
	"video-backend/internal/shared/cache"
	"video-backend/internal/shared/metrics"
	"video-backend/internal/shared/telemetry"
	"video-backend/internal/users"
)

const (
	// DefaultListLimit is both the default and the maximum page size for List.
	DefaultListLimit = 50
	// PollInterval is how often clients are expected to call CheckStatus.
	PollInterval = 5 * time.Second

	statusCachePrefix = "video-status:"
)

// UserLookup resolves users by id.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

// Service coordinates credits, the video provider, and job persistence.
type Service struct {
	Videos   Repo
	Users    UserLookup
	Ledger   *credits.Ledger
	Provider provider.Provider
	// Archiver is optional; nil keeps provider URLs as-is.
	Archiver *Archiver
	// Cache is optional; nil polls the provider on every CheckStatus.
	Cache    cache.Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateInput is one generation request.
type GenerateInput struct {
	UserID     string
	Prompt     string
	PromptJSON map[string]any
	Model      string
	Duration   int
	Resolution string
}

// GenerateResult is returned once a job is accepted and recorded.
type GenerateResult struct {
	JobID            string `json:"jobId"`
	VideoID          string `json:"videoId"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

func validateGenerate(in GenerateInput) error {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Prompt) == "" ||
		in.Model == "" || in.Duration == 0 || in.Resolution == "" {
		return invalid("Missing required fields")
	}
	if !credits.ValidModel(in.Model) {
		return invalid("Invalid model: %s", in.Model)
	}
	if !credits.ValidDuration(in.Duration) {
		return invalid("Invalid duration: %d", in.Duration)
	}
	if !ValidResolution(in.Model, in.Resolution) {
		return invalid("Invalid resolution %s for model %s", in.Resolution, in.Model)
	}
	return nil
}

// Generate charges the user, submits the job, and records it. Credits are
// deducted before submission and returned if submission or recording fails.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	if err := validateGenerate(in); err != nil {
		return GenerateResult{}, err
	}

	user, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return GenerateResult{}, err
	}
	if !credits.TierAllows(user.SubscriptionTier, in.Model) {
		return GenerateResult{}, fmt.Errorf("%w: %s on %s", ErrModelNotAllowed, in.Model, user.SubscriptionTier)
	}

	cost, err := credits.Cost(in.Model, in.Duration)
	if err != nil {
		return GenerateResult{}, err
	}

	check, err := s.Ledger.CheckBalance(ctx, user.ID, cost)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("check balance: %w", err)
	}
	if !check.Sufficient {
		return GenerateResult{}, &credits.InsufficientError{Required: cost, Available: check.Balance}
	}

	balance, err := s.Ledger.Deduct(ctx, user.ID, cost)
	if err != nil {
		return GenerateResult{}, err
	}

	jobID, err := s.Provider.Submit(ctx, provider.SubmitRequest{
		Prompt:  in.Prompt,
		Model:   in.Model,
		Size:    in.Resolution,
		Seconds: in.Duration,
	})
	if err == nil && jobID == "" {
		err = provider.ErrMissingJobID
	}
	if err != nil {
		metrics.IncVideoSubmitFailed()
		s.refund(user.ID, cost, "submit_failed", "")
		telemetry.Error("video.submit_failed", map[string]any{
			"user_id":  user.ID,
			"provider": s.Provider.Name(),
			"error":    err,
		})
		return GenerateResult{}, &ProviderError{Provider: s.Provider.Name(), Op: "submit", Err: err}
	}

	promptJSON := in.PromptJSON
	if promptJSON == nil {
		promptJSON = map[string]any{}
	}
	video, err := s.Videos.Insert(ctx, Video{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		PromptText:      in.Prompt,
		PromptJSON:      promptJSON,
		Model:           in.Model,
		DurationSeconds: in.Duration,
		Resolution:      in.Resolution,
		Status:          provider.StatusPending,
		Provider:        s.Provider.Name(),
		ProviderJobID:   jobID,
		CreditsUsed:     cost,
	})
	if err != nil {
		s.refund(user.ID, cost, "insert_failed", "")
		telemetry.Error("video.insert_failed", map[string]any{
			"user_id": user.ID,
			"job_id":  jobID,
			"error":   err,
		})
		return GenerateResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	metrics.IncVideoSubmitted()
	telemetry.Info("video.submit", map[string]any{
		"user_id":  user.ID,
		"video_id": video.ID,
		"job_id":   jobID,
		"provider": video.Provider,
		"model":    in.Model,
		"seconds":  in.Duration,
		"credits":  cost,
	})
	return GenerateResult{JobID: jobID, VideoID: video.ID, CreditsRemaining: balance}, nil
}

// CheckStatus polls the provider for a job and persists the result. Terminal
// jobs are answered from the row without contacting the provider.
func (s *Service) CheckStatus(ctx context.Context, jobID, videoID string) (provider.JobStatus, error) {
	jobID = strings.TrimSpace(jobID)
	videoID = strings.TrimSpace(videoID)
	if jobID == "" || videoID == "" {
		return provider.JobStatus{}, invalid("Missing jobId or videoId")
	}

	v, err := s.lookup(ctx, videoID)
	if err != nil {
		return provider.JobStatus{}, err
	}
	if v.ProviderJobID != jobID {
		return provider.JobStatus{}, ErrNotFound
	}
	if v.Status.Terminal() {
		return v.JobStatus(), nil
	}
	if st, ok := s.cached(ctx, videoID); ok {
		return st, nil
	}

	metrics.IncProviderPoll()
	st, err := s.Provider.Poll(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			return provider.JobStatus{}, ctx.Err()
		}
		s.failJob(ctx, v, err.Error())
		return provider.JobStatus{}, &ProviderError{Provider: s.Provider.Name(), Op: "poll", Err: err}
	}
	st.ID = jobID
	if !st.Status.Valid() {
		st.Status = provider.StatusProcessing
	}

	update := StatusUpdate{
		Status:       st.Status,
		VideoURL:     st.VideoURL,
		ErrorMessage: st.Error,
		Progress:     st.Progress,
	}
	if st.Status == provider.StatusCompleted && s.Archiver != nil && (st.VideoURL != "" || s.Archiver.Downloader != nil) {
		key, size, err := s.Archiver.Archive(ctx, v, st.VideoURL)
		if err != nil {
			telemetry.Warn("video.archive_failed", map[string]any{
				"video_id": v.ID,
				"user_id":  v.UserID,
				"error":    err,
			})
		} else {
			update.StorageKey = key
			update.VideoURL = ContentPath(v.ID)
			st.VideoURL = update.VideoURL
			telemetry.Info("video.archived", map[string]any{
				"video_id": v.ID,
				"bytes":    size,
			})
		}
	}
	if st.Status == provider.StatusCompleted && update.StorageKey == "" && s.proxies(v) {
		// The provider URL needs our API key; clients stream through us instead.
		update.VideoURL = ContentPath(v.ID)
		st.VideoURL = update.VideoURL
	}
	if st.Status == provider.StatusFailed && update.ErrorMessage == "" {
		update.ErrorMessage = "Video generation failed"
		st.Error = update.ErrorMessage
	}

	applied, err := s.Videos.UpdateStatus(ctx, v.ID, update)
	if err != nil {
		return provider.JobStatus{}, fmt.Errorf("update video status: %w", err)
	}
	if !applied {
		// Another poll already moved the row to a terminal state.
		current, err := s.Videos.GetByID(ctx, v.ID)
		if err != nil {
			return provider.JobStatus{}, err
		}
		return current.JobStatus(), nil
	}

	switch st.Status {
	case provider.StatusCompleted:
		metrics.IncVideoCompleted()
		metrics.ObserveGenerationDurationMs(float64(s.now().Sub(v.CreatedAt).Milliseconds()))
	case provider.StatusFailed:
		metrics.IncVideoFailed()
		s.refundJob(ctx, v)
	}
	s.remember(ctx, videoID, st)

	telemetry.Info("video.status", map[string]any{
		"video_id": v.ID,
		"user_id":  v.UserID,
		"job_id":   jobID,
		"status":   string(st.Status),
	})
	return st, nil
}

// failJob records a poll failure and returns the job's credits.
func (s *Service) failJob(ctx context.Context, v Video, message string) {
	applied, err := s.Videos.UpdateStatus(ctx, v.ID, StatusUpdate{
		Status:       provider.StatusFailed,
		ErrorMessage: message,
	})
	if err != nil {
		telemetry.Error("video.status_update_failed", map[string]any{
			"video_id": v.ID,
			"error":    err,
		})
		return
	}
	if !applied {
		return
	}
	metrics.IncVideoFailed()
	s.refundJob(ctx, v)
}

// refundJob returns a failed job's credits. Only the caller that flips the
// refunded flag issues the ledger refund.
func (s *Service) refundJob(ctx context.Context, v Video) {
	flipped, err := s.Videos.MarkRefunded(ctx, v.ID)
	if err != nil {
		telemetry.Error("credits.refund_failed", map[string]any{
			"user_id":  v.UserID,
			"video_id": v.ID,
			"amount":   v.CreditsUsed,
			"error":    err,
		})
		return
	}
	if !flipped {
		return
	}
	s.refund(v.UserID, v.CreditsUsed, "job_failed", v.ID)
}

func (s *Service) refund(userID string, amount int, reason, videoID string) {
	// The request context may already be canceled; a refund must still land.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Ledger.Refund(ctx, userID, amount); err != nil {
		return
	}
	metrics.AddCreditsRefunded(amount)
	telemetry.Info("video.refund", map[string]any{
		"user_id":  userID,
		"video_id": videoID,
		"amount":   amount,
		"reason":   reason,
	})
}

func (s *Service) cached(ctx context.Context, videoID string) (provider.JobStatus, bool) {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return provider.JobStatus{}, false
	}
	raw, ok, err := s.Cache.Get(ctx, statusCachePrefix+videoID)
	if err != nil {
		telemetry.Warn("cache.get_failed", map[string]any{"video_id": videoID, "error": err})
		return provider.JobStatus{}, false
	}
	if !ok {
		return provider.JobStatus{}, false
	}
	var st provider.JobStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return provider.JobStatus{}, false
	}
	return st, true
}

func (s *Service) remember(ctx context.Context, videoID string, st provider.JobStatus) {
	if s.Cache == nil || s.CacheTTL <= 0 || st.Status.Terminal() {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, statusCachePrefix+videoID, raw, s.CacheTTL); err != nil {
		telemetry.Warn("cache.set_failed", map[string]any{"video_id": videoID, "error": err})
	}
}

// List returns a user's videos, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Video, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("Missing user ID")
	}
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	return s.Videos.ListByUser(ctx, userID, limit)
}

// OpenContent streams a finished video: the archived copy when one exists,
// otherwise the provider's media fetched with provider credentials.
func (s *Service) OpenContent(ctx context.Context, videoID string) (io.ReadCloser, Video, error) {
	v, err := s.lookup(ctx, videoID)
	if err != nil {
		return nil, Video{}, err
	}
	if v.StorageKey != "" && s.Archiver != nil {
		rc, err := s.Archiver.Open(ctx, v.StorageKey)
		if err != nil {
			return nil, Video{}, err
		}
		return rc, v, nil
	}
	if v.Status != provider.StatusCompleted || !s.proxies(v) {
		return nil, Video{}, ErrNotFound
	}
	rc, err := s.Provider.(provider.Downloader).Download(ctx, v.ProviderJobID)
	if err != nil {
		return nil, Video{}, &ProviderError{Provider: v.Provider, Op: "download", Err: err}
	}
	return rc, v, nil
}

// proxies reports whether v's media can be streamed from the provider that
// created it.
func (s *Service) proxies(v Video) bool {
	if s.Provider == nil || v.Provider != s.Provider.Name() {
		return false
	}
	_, ok := s.Provider.(provider.Downloader)
	return ok
}

// lookup loads a video by id. Video ids are uuids; anything else is unknown.
func (s *Service) lookup(ctx context.Context, videoID string) (Video, error) {
	if _, err := uuid.Parse(videoID); err != nil {
		return Video{}, ErrNotFound
	}
	return s.Videos.GetByID(ctx, videoID)
}
