// Package enhance turns a free-form video description into a structured
// JSON prompt.
package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Enhancer expands a natural-language prompt into a JSON object.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (map[string]any, error)
}

// ErrUnparseableResponse is returned when the model output is not a JSON object.
var ErrUnparseableResponse = errors.New("Failed to parse AI response")

// SystemPrompt instructs the model on the JSON layout to produce.
const SystemPrompt = `You are an expert at converting natural language descriptions into structured JSON prompts for Sora 2 video generation.
Convert the user's description into a JSON structure with these sections:
- scene: {subject, environment, objects, composition}
- camera: {angle, movement, lens, focus}
- motion: {primary, secondary, tertiary, pace}
- lighting: {source, direction, quality, color_temp, mood}
- timeline: {0-Xs, X-Ys, Y-Zs} (based on video duration)
Return ONLY the JSON object, no explanation.`

// ParseObject decodes model output into a JSON object, tolerating markdown
// code fences around it.
func ParseObject(content string) (map[string]any, error) {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```JSON")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, ErrUnparseableResponse
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(clean), &out); err != nil || out == nil {
		return nil, ErrUnparseableResponse
	}
	return out, nil
}
