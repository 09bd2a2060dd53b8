// Package mock simulates a video provider whose jobs progress on a timer.
package mock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"video-backend/internal/provider"
)

// DefaultFailureRate is the probability that Submit fails.
const DefaultFailureRate = 0.05

const (
	pendingFor    = 5 * time.Second
	processingFor = 30 * time.Second
	slugLen       = 16
	suffixLen     = 6
	suffixChars   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// SampleVideos are public sample clips returned for completed jobs.
var SampleVideos = []string{
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
}

// ErrRandomFailure is returned by Submit when the simulated failure triggers.
var ErrRandomFailure = errors.New("Mock API error: Random failure for testing")

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Options configures a Provider. Zero values pick real time and a seeded source.
type Options struct {
	FailureRate float64
	Now         func() time.Time
	Rand        *rand.Rand
}

// Provider is a deterministic-by-injection stand-in for a real video API.
type Provider struct {
	failureRate float64
	now         func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// New constructs a mock provider. A negative failure rate selects the default.
func New(opts Options) *Provider {
	rate := opts.FailureRate
	if rate < 0 {
		rate = DefaultFailureRate
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Provider{failureRate: rate, now: now, rnd: rnd}
}

func (p *Provider) Name() string { return provider.NameMock }

// Submit returns a job id embedding the prompt slug and submission time.
func (p *Provider) Submit(ctx context.Context, req provider.SubmitRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	fail := p.rnd.Float64() < p.failureRate
	suffix := make([]byte, suffixLen)
	for i := range suffix {
		suffix[i] = suffixChars[p.rnd.Intn(len(suffixChars))]
	}
	p.mu.Unlock()

	if fail {
		return "", ErrRandomFailure
	}
	return fmt.Sprintf("mock_job_%s_%d_%s", Slug(req.Prompt), p.now().UnixMilli(), suffix), nil
}

// Poll derives status from the time elapsed since submission.
func (p *Provider) Poll(ctx context.Context, jobID string) (provider.JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return provider.JobStatus{}, err
	}
	out := provider.JobStatus{ID: jobID}

	submitted, ok := submittedAt(jobID)
	if !ok {
		submitted = p.now()
	}
	elapsed := p.now().Sub(submitted)
	switch {
	case elapsed < pendingFor:
		out.Status = provider.StatusPending
	case elapsed < processingFor:
		out.Status = provider.StatusProcessing
		pct := float64(elapsed-pendingFor) / float64(processingFor-pendingFor) * 100
		out.Progress = &pct
	default:
		out.Status = provider.StatusCompleted
		p.mu.Lock()
		out.VideoURL = SampleVideos[p.rnd.Intn(len(SampleVideos))]
		p.mu.Unlock()
	}
	return out, nil
}

// Slug lowercases prompt, collapses non-alphanumerics into '-', and keeps
// at most 16 characters.
func Slug(prompt string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(prompt), "-")
	if len(s) > slugLen {
		s = s[:slugLen]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "prompt"
	}
	return s
}

// submittedAt reads the millisecond timestamp, which is always the
// second-to-last underscore-separated field.
func submittedAt(jobID string) (time.Time, bool) {
	parts := strings.Split(jobID, "_")
	if len(parts) < 5 || parts[0] != "mock" || parts[1] != "job" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

var _ provider.Provider = (*Provider)(nil)
