package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"video-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), Identity(), Logging())
	router.GET("/api/check-status/:jobId", func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("videoId", "video-1")
		c.Set("jobStatus", "processing")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	req := httptest.NewRequest(http.MethodGet, "/api/check-status/job-1?videoId=video-1", nil)
	req.Header.Set(HeaderWhopUserID, "user_whop")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("expected log output")
	}
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "user_id", "whop_user_id", "video_id", "duration_ms", "status", "job_status", "route"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["whop_user_id"] != "user_whop" {
		t.Fatalf("unexpected whop_user_id: %v", payload["whop_user_id"])
	}
	if payload["video_id"] != "video-1" {
		t.Fatalf("unexpected video_id: %v", payload["video_id"])
	}
	if payload["job_status"] != "processing" {
		t.Fatalf("unexpected job_status: %v", payload["job_status"])
	}
	if payload["route"] != "/api/check-status/:jobId" {
		t.Fatalf("unexpected route: %v", payload["route"])
	}
}
