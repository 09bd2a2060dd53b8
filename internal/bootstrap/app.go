package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"video-backend/internal/credits"
	"video-backend/internal/enhance"
	enhanceopenai "video-backend/internal/enhance/openai"
	"video-backend/internal/provider"
	"video-backend/internal/provider/mock"
	soraopenai "video-backend/internal/provider/openai"
	"video-backend/internal/provider/replicate"
	"video-backend/internal/shared/cache"
	"video-backend/internal/shared/config"
	"video-backend/internal/shared/server"
	"video-backend/internal/shared/storage/db"
	"video-backend/internal/shared/storage/object"
	localstore "video-backend/internal/shared/storage/object/local"
	s3store "video-backend/internal/shared/storage/object/s3"
	"video-backend/internal/users"
	"video-backend/internal/videos"
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.Store
	Cache    cache.Cache
	Provider provider.Provider
	Enhancer enhance.Enhancer

	UsersRepo      users.Repo
	VideosRepo     videos.Repo
	Ledger         *credits.Ledger
	UsersService   *users.Service
	VideosService  *videos.Service
	UsersHandler   *users.Handler
	VideosHandler  *videos.Handler
	EnhanceHandler *enhance.Handler

	closers []io.Closer
}

// Build prepares dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB)
	}

	prov, err := buildProvider(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Provider = prov

	enhancer, err := buildEnhancer(cfg, prov.Name())
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Enhancer = enhancer

	if cfg.ArchiveVideos {
		store, err := buildStore(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Store = store
	}

	app.Cache = buildCache(ctx, app)

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		UserHandler:    app.UsersHandler,
		VideoHandler:   app.VideosHandler,
		EnhanceHandler: app.EnhanceHandler,
	})

	log.Printf("bootstrap: env=%s provider=%s database=%v archive=%v", cfg.Env, prov.Name(), sqlDB != nil, app.Store != nil)
	return app, nil
}

// Close releases the database pool and cache connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("bootstrap: close: %v", err)
		}
	}
	a.closers = nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.DevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.DevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildProvider(cfg config.Config) (provider.Provider, error) {
	switch cfg.VideoProvider {
	case provider.NameMock:
		return mock.New(mock.Options{FailureRate: cfg.MockFailureRate}), nil
	case provider.NameReplicate:
		if strings.TrimSpace(cfg.ReplicateAPIToken) == "" && cfg.DevLike() {
			log.Printf("bootstrap: REPLICATE_API_TOKEN empty; using mock provider")
			return mock.New(mock.Options{FailureRate: cfg.MockFailureRate}), nil
		}
		return replicate.NewClient(replicate.Config{
			APIToken: cfg.ReplicateAPIToken,
			BaseURL:  cfg.ReplicateBaseURL,
			Timeout:  cfg.ProviderTimeout,
		})
	default:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && cfg.DevLike() {
			log.Printf("bootstrap: OPENAI_API_KEY empty; using mock provider")
			return mock.New(mock.Options{FailureRate: cfg.MockFailureRate}), nil
		}
		return soraopenai.NewClient(soraopenai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.ProviderTimeout,
		})
	}
}

func buildEnhancer(cfg config.Config, providerName string) (enhance.Enhancer, error) {
	if providerName == provider.NameMock || strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		if !cfg.DevLike() && providerName != provider.NameMock {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for prompt enhancement")
		}
		return enhance.Mock{}, nil
	}
	return enhanceopenai.NewClient(enhanceopenai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.EnhanceModel,
		Timeout: cfg.ProviderTimeout,
	})
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCache(ctx context.Context, app *App) cache.Cache {
	cfg := app.Config
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return cache.NewMemory(nil)
	}
	rc := cache.NewRedis(cache.RedisOptions{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		KeyPrefix: "video-backend:",
	})
	if err := rc.Ping(ctx); err != nil {
		log.Printf("bootstrap: redis unavailable at %s; using in-process cache: %v", cfg.RedisAddr, err)
		_ = rc.Close()
		return cache.NewMemory(nil)
	}
	app.closers = append(app.closers, rc)
	return rc
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.VideosRepo = &videos.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.VideosRepo = videos.NewMemoryRepo()
	}

	app.Ledger = credits.NewLedger(app.UsersRepo)
	app.UsersService = users.NewService(app.UsersRepo)

	var archiver *videos.Archiver
	if app.Store != nil {
		downloader, _ := app.Provider.(provider.Downloader)
		archiver = videos.NewArchiver(app.Store, downloader, 0)
	}

	app.VideosService = &videos.Service{
		Videos:   app.VideosRepo,
		Users:    app.UsersService,
		Ledger:   app.Ledger,
		Provider: app.Provider,
		Archiver: archiver,
		Cache:    app.Cache,
		CacheTTL: app.Config.PollCacheTTL,
	}

	app.UsersHandler = users.NewHandler(app.UsersService)
	app.VideosHandler = videos.NewHandler(app.VideosService)
	app.EnhanceHandler = enhance.NewHandler(app.Enhancer)
}
