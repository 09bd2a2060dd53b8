package mock

import (
	"context"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-backend/internal/provider"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var jobIDPattern = regexp.MustCompile(`^mock_job_[a-z0-9-]{1,16}_\d+_[a-z0-9]{6}$`)

func TestSubmitJobIDFormat(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(1760000000000)}
	p := New(Options{FailureRate: 0, Now: clock.Now, Rand: rand.New(rand.NewSource(1))})

	id, err := p.Submit(context.Background(), provider.SubmitRequest{Prompt: "A Cat, on the Moon!!"})
	require.NoError(t, err)
	assert.Regexp(t, jobIDPattern, id)
	assert.Contains(t, id, "mock_job_a-cat-on-the-moo_1760000000000_")
}

func TestSubmitAlwaysFailsAtRateOne(t *testing.T) {
	p := New(Options{FailureRate: 1, Rand: rand.New(rand.NewSource(1))})
	_, err := p.Submit(context.Background(), provider.SubmitRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrRandomFailure)
}

func TestNegativeRateUsesDefault(t *testing.T) {
	p := New(Options{FailureRate: -1})
	assert.Equal(t, DefaultFailureRate, p.failureRate)
}

func TestPollProgression(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(1760000000000)}
	p := New(Options{FailureRate: 0, Now: clock.Now, Rand: rand.New(rand.NewSource(7))})
	ctx := context.Background()

	id, err := p.Submit(ctx, provider.SubmitRequest{Prompt: "waves"})
	require.NoError(t, err)

	st, err := p.Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, provider.StatusPending, st.Status)

	clock.Advance(10 * time.Second)
	st, err = p.Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, provider.StatusProcessing, st.Status)
	require.NotNil(t, st.Progress)
	assert.InDelta(t, 20.0, *st.Progress, 0.001)

	clock.Advance(25 * time.Second)
	st, err = p.Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, provider.StatusCompleted, st.Status)
	assert.Contains(t, SampleVideos, st.VideoURL)
}

func TestPollUnparseableIDIsPending(t *testing.T) {
	p := New(Options{FailureRate: 0})
	st, err := p.Poll(context.Background(), "not-a-mock-id")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusPending, st.Status)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "prompt", Slug("!!!"))
	assert.Equal(t, "hello-world", Slug("Hello  World"))
	assert.Equal(t, "a-very-long-prom", Slug("a very long prompt indeed"))
}
