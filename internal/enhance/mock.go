package enhance

import (
	"context"
	"strings"
)

const maxSubjectLen = 120

// Mock returns a fixed cinematic template seeded with the prompt.
type Mock struct{}

func (Mock) Enhance(ctx context.Context, prompt string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(prompt)
	if r := []rune(subject); len(r) > maxSubjectLen {
		subject = string(r[:maxSubjectLen])
	}
	if subject == "" {
		subject = "scene from prompt"
	}
	return map[string]any{
		"scene": map[string]any{
			"subject":     subject,
			"environment": "based on description",
			"composition": "cinematic framing",
		},
		"camera": map[string]any{
			"angle":    "eye level",
			"movement": "smooth tracking",
			"lens":     "35mm equivalent",
			"focus":    "subject in focus",
		},
		"motion": map[string]any{
			"primary": "main action",
			"pace":    "moderate",
		},
		"lighting": map[string]any{
			"source":     "natural light",
			"direction":  "soft directional",
			"quality":    "cinematic",
			"color_temp": "warm 3200K",
			"mood":       "professional",
		},
		"timeline": map[string]any{
			"0-3s":  "establish scene",
			"3-8s":  "main action",
			"8-12s": "conclusion",
		},
	}, nil
}

var _ Enhancer = Mock{}
