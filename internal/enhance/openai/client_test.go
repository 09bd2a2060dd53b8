package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-backend/internal/enhance"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		assert.InDelta(t, 0.7, body.Temperature, 0.0001)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)

		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   DefaultModel,
			"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEnhanceParsesFencedJSON(t *testing.T) {
	srv := completionServer(t, "```json\n{\"scene\":{\"subject\":\"lighthouse\"}}\n```")
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.Enhance(context.Background(), "a lighthouse in a storm")
	require.NoError(t, err)
	assert.Equal(t, "lighthouse", out["scene"].(map[string]any)["subject"])
}

func TestEnhanceUnparseable(t *testing.T) {
	srv := completionServer(t, "Sure! Here is your prompt.")
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Enhance(context.Background(), "anything")
	assert.ErrorIs(t, err, enhance.ErrUnparseableResponse)
}

func TestEnhanceAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Enhance(context.Background(), "anything")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, enhance.ErrUnparseableResponse)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestHashPromptStable(t *testing.T) {
	assert.Equal(t, hashPrompt("abc"), hashPrompt("abc"))
	assert.NotEqual(t, hashPrompt("abc"), hashPrompt("abd"))
	assert.Len(t, hashPrompt("abc"), 16)
}
