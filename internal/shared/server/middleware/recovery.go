package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"video-backend/internal/shared/metrics"
	"video-backend/internal/shared/server/respond"
	"video-backend/internal/shared/telemetry"
)

// Recovery is the only place a panic becomes a response. A panic after the
// content stream started can only be logged; the body is already on the wire.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncHTTPPanic()
			telemetry.Error("panic", map[string]any{
				"request_id":   RequestIDFromContext(c),
				"error":        rec,
				"stack":        string(debug.Stack()),
				"path":         c.Request.URL.Path,
				"method":       c.Request.Method,
				"whop_user_id": WhopUserIDFromContext(c),
				"user_id":      c.GetString("userId"),
				"video_id":     c.GetString("videoId"),
				"written":      c.Writer.Written(),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
			c.Abort()
		}()
		c.Next()
	}
}
