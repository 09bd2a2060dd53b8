package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"video-backend/internal/enhance"
	"video-backend/internal/shared/config"
	"video-backend/internal/shared/server/middleware"
	"video-backend/internal/users"
)

func newTestRouter() http.Handler {
	return NewRouter(RouterDeps{
		Config:         config.Config{Env: "production", CORSAllowOrigin: []string{"*"}},
		UserHandler:    users.NewHandler(users.NewService(users.NewMemoryRepo())),
		EnhanceHandler: enhance.NewHandler(enhance.Mock{}),
	})
}

func TestHealth(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "video_submitted_total") {
		t.Fatalf("unexpected metrics response %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMeCreatesUserFromHostHeaders(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(middleware.HeaderWhopUserID, "user_abc")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Success bool `json:"success"`
		User    struct {
			CreditsRemaining int `json:"creditsRemaining"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Success || payload.User.CreditsRemaining != 15 {
		t.Fatalf("unexpected payload %s", resp.Body.String())
	}
}

func TestEnhanceRouteMounted(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/enhance-prompt", strings.NewReader(`{"prompt":"waves"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
