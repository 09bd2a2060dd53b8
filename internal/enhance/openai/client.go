// Package openai implements enhance.Enhancer with OpenAI chat completions.
package openai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"video-backend/internal/enhance"
	"video-backend/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4"

const temperature = 0.7

// Config configures the enhancer client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements enhance.Enhancer.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		if !strings.HasSuffix(base, "/v1") {
			base += "/v1"
		}
		apiCfg.BaseURL = base
	}
	if cfg.Timeout > 0 {
		apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{api: openai.NewClientWithConfig(apiCfg), model: model}, nil
}

func (c *Client) Enhance(ctx context.Context, prompt string) (map[string]any, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: enhance.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	logUsage(c.model, prompt, resp.Usage)
	if len(resp.Choices) == 0 {
		return nil, enhance.ErrUnparseableResponse
	}
	return enhance.ParseObject(resp.Choices[0].Message.Content)
}

func logUsage(model, prompt string, usage openai.Usage) {
	telemetry.Info("enhance.completion", map[string]any{
		"model":             model,
		"prompt_hash":       hashPrompt(prompt),
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
	})
}

// hashPrompt lets completions be correlated in logs without recording
// user text.
func hashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}

var _ enhance.Enhancer = (*Client)(nil)
