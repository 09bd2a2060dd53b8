package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	PublicBaseURL   string

	DatabaseURL string

	VideoProvider   string
	MockFailureRate float64
	ProviderTimeout time.Duration

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	ReplicateAPIToken string
	ReplicateBaseURL  string
	EnhanceModel      string

	ArchiveVideos   bool
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	RedisAddr     string
	RedisPassword string
	PollCacheTTL  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	cfg := Config{
		Env:             env,
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		DatabaseURL: dbURL,

		MockFailureRate: getFloat("MOCK_FAILURE_RATE", 0.05),
		ProviderTimeout: time.Duration(getInt("PROVIDER_TIMEOUT_SECONDS", 60)) * time.Second,

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		ReplicateAPIToken: getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", ""),
		EnhanceModel:      getEnv("ENHANCE_MODEL", "gpt-4"),

		ArchiveVideos:   getBool("ARCHIVE_VIDEOS", false),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		PollCacheTTL:  getDuration("POLL_CACHE_TTL", 2*time.Second),
	}
	cfg.VideoProvider = resolveProvider(
		getBool("MOCK_MODE", false),
		getBool("USE_REPLICATE", false),
		getEnv("VIDEO_PROVIDER", ""),
	)
	return cfg
}

// DevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) DevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

// resolveProvider applies the legacy flags before VIDEO_PROVIDER.
func resolveProvider(mockMode, useReplicate bool, name string) string {
	switch {
	case mockMode:
		return "mock"
	case useReplicate:
		return "replicate"
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "replicate":
		return "replicate"
	case "mock":
		return "mock"
	default:
		return "openai"
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return v
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		log.Printf("invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return v
}

// getDuration accepts Go durations ("2s") or bare seconds ("2").
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Printf("invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
