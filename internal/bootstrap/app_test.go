package bootstrap

import (
	"testing"
	"time"

	"video-backend/internal/enhance"
	"video-backend/internal/provider"
	"video-backend/internal/shared/cache"
	"video-backend/internal/shared/config"
)

func TestBuildDevFallsBackToMemoryAndMock(t *testing.T) {
	app, err := Build(config.Config{
		Env:           "dev",
		VideoProvider: provider.NameOpenAI,
		PollCacheTTL:  2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if app.DB != nil {
		t.Fatalf("expected no database in dev without DATABASE_URL")
	}
	if app.Provider.Name() != provider.NameMock {
		t.Fatalf("expected mock provider without an API key, got %s", app.Provider.Name())
	}
	if _, ok := app.Enhancer.(enhance.Mock); !ok {
		t.Fatalf("expected mock enhancer, got %T", app.Enhancer)
	}
	if _, ok := app.Cache.(*cache.Memory); !ok {
		t.Fatalf("expected in-process cache, got %T", app.Cache)
	}
	if app.VideosService.Archiver != nil {
		t.Fatalf("expected archiving disabled by default")
	}
	if app.Router == nil {
		t.Fatalf("expected router")
	}
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	if _, err := Build(config.Config{Env: "production"}); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildProviderSelection(t *testing.T) {
	p, err := buildProvider(config.Config{Env: "production", VideoProvider: provider.NameReplicate, ReplicateAPIToken: "r8_x"})
	if err != nil || p.Name() != provider.NameReplicate {
		t.Fatalf("expected replicate provider, got %v %v", p, err)
	}
	p, err = buildProvider(config.Config{Env: "production", VideoProvider: provider.NameOpenAI, OpenAIAPIKey: "sk-x"})
	if err != nil || p.Name() != provider.NameOpenAI {
		t.Fatalf("expected openai provider, got %v %v", p, err)
	}
	if _, err := buildProvider(config.Config{Env: "production", VideoProvider: provider.NameOpenAI}); err == nil {
		t.Fatalf("expected missing key to fail outside dev")
	}
}

func TestBuildArchiveWiresDownloader(t *testing.T) {
	app, err := Build(config.Config{
		Env:             "dev",
		VideoProvider:   provider.NameOpenAI,
		OpenAIAPIKey:    "sk-test",
		ArchiveVideos:   true,
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if app.VideosService.Archiver == nil || app.VideosService.Archiver.Downloader == nil {
		t.Fatalf("expected archiver with the openai downloader")
	}
}
