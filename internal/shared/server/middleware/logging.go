package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"video-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":   RequestIDFromContext(c),
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"status":       c.Writer.Status(),
			"duration_ms":  float64(latency.Microseconds()) / 1000.0,
			"whop_user_id": WhopUserIDFromContext(c),
			"user_id":      c.GetString("userId"),
			"video_id":     c.GetString("videoId"),
			"job_status":   c.GetString("jobStatus"),
			"client_ip":    c.ClientIP(),
			"user_agent":   c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		telemetry.Info("request.complete", fields)
	}
}
