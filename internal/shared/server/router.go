package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-backend/internal/enhance"
	"video-backend/internal/shared/config"
	"video-backend/internal/shared/metrics"
	"video-backend/internal/shared/server/middleware"
	"video-backend/internal/shared/server/respond"
	"video-backend/internal/users"
	"video-backend/internal/videos"
)

// RouterDeps carries the handlers mounted under /api.
type RouterDeps struct {
	Config         config.Config
	UserHandler    *users.Handler
	VideoHandler   *videos.Handler
	EnhanceHandler *enhance.Handler
	RateLimiter    *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.DevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	limited := api.Group("")
	limited.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules:    middleware.DefaultRateLimitRules(),
		GroupFor: middleware.GroupForRoute,
		Limiter:  limiter,
	}))
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(limited)
	}
	if deps.VideoHandler != nil {
		deps.VideoHandler.RegisterRoutes(limited)
	}
	if deps.EnhanceHandler != nil {
		deps.EnhanceHandler.RegisterRoutes(limited)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
