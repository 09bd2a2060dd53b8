package videos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"video-backend/internal/provider"
	"video-backend/internal/shared/storage/object"
)

const archiveContentType = "video/mp4"

// Archiver copies finished provider media into the object store so playback
// does not depend on short-lived provider URLs.
type Archiver struct {
	Store object.Store
	// Downloader, when set, fetches media with provider credentials instead
	// of a plain GET on the result URL.
	Downloader provider.Downloader
	HTTPClient *http.Client
}

// NewArchiver constructs an Archiver. d may be nil.
func NewArchiver(store object.Store, d provider.Downloader, timeout time.Duration) *Archiver {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Archiver{
		Store:      store,
		Downloader: d,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Archive stores the media for v and returns its storage key.
func (a *Archiver) Archive(ctx context.Context, v Video, mediaURL string) (string, int64, error) {
	key, err := object.VideoKey(v.UserID, v.ID)
	if err != nil {
		return "", 0, err
	}
	body, err := a.fetch(ctx, v.ProviderJobID, mediaURL)
	if err != nil {
		return "", 0, err
	}
	defer body.Close()

	n, err := a.Store.Put(ctx, key, archiveContentType, body)
	if err != nil {
		return "", 0, fmt.Errorf("store video: %w", err)
	}
	return key, n, nil
}

// Open streams an archived object.
func (a *Archiver) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return a.Store.Open(ctx, key)
}

func (a *Archiver) fetch(ctx context.Context, jobID, mediaURL string) (io.ReadCloser, error) {
	if a.Downloader != nil {
		body, err := a.Downloader.Download(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("download video: %w", err)
		}
		return body, nil
	}
	if mediaURL == "" {
		return nil, fmt.Errorf("download video: no media url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("download video: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
