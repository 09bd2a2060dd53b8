package openai

import (
	"context"
	"errors"
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
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestSubmitSendsMultipartForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/videos", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "a cat surfing", r.FormValue("prompt"))
		assert.Equal(t, "sora-2", r.FormValue("model"))
		assert.Equal(t, "8", r.FormValue("seconds"))
		assert.Equal(t, "1280x720", r.FormValue("size"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"video_123","status":"queued"}`)
	})

	id, err := c.Submit(context.Background(), provider.SubmitRequest{
		Prompt: "a cat surfing", Model: "sora-2", Size: "1280x720", Seconds: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "video_123", id)
}

func TestSubmitSurfacesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"prompt rejected by moderation"}}`)
	})

	_, err := c.Submit(context.Background(), provider.SubmitRequest{Prompt: "x", Model: "sora-2", Size: "720x1280", Seconds: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt rejected by moderation")
}

func TestSubmitMissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"queued"}`)
	})
	_, err := c.Submit(context.Background(), provider.SubmitRequest{Prompt: "x", Model: "sora-2", Size: "720x1280", Seconds: 4})
	assert.ErrorIs(t, err, provider.ErrMissingJobID)
}

func TestPollNormalizesAndBuildsContentURL(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/videos/video_1":
			_, _ = io.WriteString(w, `{"id":"video_1","status":"in_progress","progress":0.42}`)
		case "/v1/videos/video_2":
			_, _ = io.WriteString(w, `{"id":"video_2","status":"completed","progress":100}`)
		case "/v1/videos/video_3":
			_, _ = io.WriteString(w, `{"id":"video_3","status":"failed","error":{"message":"safety"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"message":"no such video"}}`)
		}
	}))
	t.Cleanup(srv.Close)
	srvURL = srv.URL
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srvURL})
	require.NoError(t, err)

	st, err := c.Poll(context.Background(), "video_1")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusProcessing, st.Status)
	require.NotNil(t, st.Progress)
	assert.InDelta(t, 42.0, *st.Progress, 0.001)

	st, err = c.Poll(context.Background(), "video_2")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusCompleted, st.Status)
	assert.Equal(t, srvURL+"/v1/videos/video_2/content", st.VideoURL)

	st, err = c.Poll(context.Background(), "video_3")
	require.NoError(t, err)
	assert.Equal(t, provider.StatusFailed, st.Status)
	assert.Equal(t, "safety", st.Error)

	_, err = c.Poll(context.Background(), "video_404")
	assert.True(t, errors.Is(err, provider.ErrJobNotFound))
}

func TestDownloadStreamsContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos/video_2/content", r.URL.Path)
		assert.Equal(t, "video/mp4", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, "mp4-bytes")
	})

	rc, err := c.Download(context.Background(), "video_2")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "mp4-bytes", string(data))
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]provider.Status{
		"queued":      provider.StatusPending,
		"pending":     provider.StatusPending,
		"in_progress": provider.StatusProcessing,
		"processing":  provider.StatusProcessing,
		"completed":   provider.StatusCompleted,
		"failed":      provider.StatusFailed,
		"cancelled":   provider.StatusFailed,
		"expired":     provider.StatusFailed,
		"mystery":     provider.StatusProcessing,
	}
	for native, want := range tests {
		assert.Equal(t, want, NormalizeStatus(native), native)
	}
}
