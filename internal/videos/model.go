package videos

import (
	"time"

	"video-backend/internal/credits"
	"video-backend/internal/provider"
)

// Video is one generation job and its last known provider state.
type Video struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	PromptText      string          `json:"promptText"`
	PromptJSON      map[string]any  `json:"promptJson"`
	Model           string          `json:"model"`
	DurationSeconds int             `json:"durationSeconds"`
	Resolution      string          `json:"resolution"`
	Status          provider.Status `json:"status"`
	Provider        string          `json:"provider"`
	ProviderJobID   string          `json:"providerJobId"`
	VideoURL        string          `json:"videoUrl,omitempty"`
	StorageKey      string          `json:"-"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	Progress        *float64        `json:"progress,omitempty"`
	CreditsUsed     int             `json:"creditsUsed"`
	CreditsRefunded bool            `json:"creditsRefunded"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// JobStatus renders the persisted row in the poll response shape.
func (v Video) JobStatus() provider.JobStatus {
	return provider.JobStatus{
		ID:       v.ProviderJobID,
		Status:   v.Status,
		VideoURL: v.VideoURL,
		Error:    v.ErrorMessage,
		Progress: v.Progress,
	}
}

// StatusUpdate is the mutable part of a row.
type StatusUpdate struct {
	Status       provider.Status
	VideoURL     string
	StorageKey   string
	ErrorMessage string
	Progress     *float64
}

var resolutions = map[string][]string{
	credits.ModelSora2:    {"720x1280", "1280x720"},
	credits.ModelSora2Pro: {"720x1280", "1280x720", "1024x1792", "1792x1024"},
}

// Resolutions lists the output sizes a model supports.
func Resolutions(model string) []string {
	return append([]string(nil), resolutions[model]...)
}

// ValidResolution reports whether model can render size.
func ValidResolution(model, size string) bool {
	for _, r := range resolutions[model] {
		if r == size {
			return true
		}
	}
	return false
}

// ContentPath is the API path that streams an archived video.
func ContentPath(videoID string) string {
	return "/api/videos/" + videoID + "/content"
}
