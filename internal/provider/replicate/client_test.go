package replicate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-backend/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{APIToken: "r8_test", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestSubmitCreatesPrediction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/openai/sora-2-pro/predictions", r.URL.Path)
		assert.Equal(t, "Bearer r8_test", r.Header.Get("Authorization"))
		var body createRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "city at night", body.Input.Prompt)
		assert.Equal(t, 12, body.Input.Duration)
		assert.Equal(t, "portrait", body.Input.AspectRatio)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"pred_1","status":"starting"}`)
	})

	id, err := c.Submit(context.Background(), provider.SubmitRequest{
		Prompt: "city at night", Model: "sora-2-pro", Size: "1024x1792", Seconds: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "pred_1", id)
}

func TestSubmitRejectsUnknownModel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request")
	})
	_, err := c.Submit(context.Background(), provider.SubmitRequest{Model: "veo-3"})
	assert.Error(t, err)
}

func TestPollFindsNestedURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/predictions/pred_1", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"id": "pred_1",
			"status": "succeeded",
			"metrics": {"progress_percent": 100},
			"output": [{"meta": {}}, {"result": {"video": {"href": "https://replicate.delivery/out.mp4"}}}]
		}`)
	})

	st, err := c.Poll(context.Background(), "pred_1")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusCompleted, st.Status)
	assert.Equal(t, "https://replicate.delivery/out.mp4", st.VideoURL)
	require.NotNil(t, st.Progress)
	assert.Equal(t, 100.0, *st.Progress)
}

func TestPollFallsBackToOutputURLs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"pred_2","status":"succeeded","output":null,"output_urls":["https://replicate.delivery/b.mp4"]}`)
	})
	st, err := c.Poll(context.Background(), "pred_2")
	require.NoError(t, err)
	assert.Equal(t, "https://replicate.delivery/b.mp4", st.VideoURL)
}

func TestPollSucceededWithoutURLStillCompleted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"pred_3","status":"succeeded","output":{"note":"done"}}`)
	})
	st, err := c.Poll(context.Background(), "pred_3")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusCompleted, st.Status)
	assert.Empty(t, st.VideoURL)
}

func TestPollFailedCarriesError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"pred_4","status":"canceled","error":"user canceled"}`)
	})
	st, err := c.Poll(context.Background(), "pred_4")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusFailed, st.Status)
	assert.Equal(t, "user canceled", st.Error)
}

func TestPollNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found."}`)
	})
	_, err := c.Poll(context.Background(), "pred_x")
	assert.ErrorIs(t, err, provider.ErrJobNotFound)
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]provider.Status{
		"starting":   provider.StatusPending,
		"queued":     provider.StatusPending,
		"processing": provider.StatusProcessing,
		"succeeded":  provider.StatusCompleted,
		"failed":     provider.StatusFailed,
		"canceled":   provider.StatusFailed,
		"booting":    provider.StatusProcessing,
		"":           provider.StatusProcessing,
	}
	for native, want := range tests {
		assert.Equal(t, want, NormalizeStatus(native), native)
	}
}

func TestAspectRatio(t *testing.T) {
	assert.Equal(t, "landscape", AspectRatio("1280x720"))
	assert.Equal(t, "landscape", AspectRatio("1792x1024"))
	assert.Equal(t, "portrait", AspectRatio("720x1280"))
	assert.Equal(t, "portrait", AspectRatio("garbage"))
}
