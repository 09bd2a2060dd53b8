package videos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"video-backend/internal/credits"
	"video-backend/internal/shared/server/respond"
	"video-backend/internal/shared/storage/object"
	"video-backend/internal/users"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	RegisterValidators()
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-video", h.generate)
	rg.GET("/check-status/:jobId", h.checkStatus)
	rg.GET("/videos", h.list)
	rg.GET("/videos/:id/content", h.content)
}

type generateRequest struct {
	UserID     string          `json:"userId" binding:"required"`
	Prompt     string          `json:"prompt" binding:"required"`
	JSONPrompt json.RawMessage `json:"jsonPrompt"`
	Model      string          `json:"model" binding:"required,videomodel"`
	Duration   Seconds         `json:"duration" binding:"required,videoduration"`
	Resolution string          `json:"resolution" binding:"required"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", bindMessage(err), nil)
		return
	}
	c.Set("userId", req.UserID)
	promptJSON, err := promptObject(req.JSONPrompt)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.Svc.Generate(c.Request.Context(), GenerateInput{
		UserID:     req.UserID,
		Prompt:     req.Prompt,
		PromptJSON: promptJSON,
		Model:      req.Model,
		Duration:   int(req.Duration),
		Resolution: req.Resolution,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("videoId", res.VideoID)
	respond.OK(c, gin.H{
		"jobId":            res.JobID,
		"videoId":          res.VideoID,
		"creditsRemaining": res.CreditsRemaining,
	})
}

// promptObject accepts an absent or null jsonPrompt, or a JSON object. The
// stored prompt_json column always holds an object.
func promptObject(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, invalid("Invalid jsonPrompt: expected a JSON object")
	}
	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, invalid("Invalid jsonPrompt: expected a JSON object")
	}
	return obj, nil
}

func (h *Handler) checkStatus(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("jobId"))
	if jobID == "" {
		jobID = strings.TrimSpace(c.Query("jobId"))
	}
	videoID := strings.TrimSpace(c.Query("videoId"))
	c.Set("videoId", videoID)

	st, err := h.Svc.CheckStatus(c.Request.Context(), jobID, videoID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("jobStatus", string(st.Status))
	respond.OK(c, gin.H{"status": st})
}

func (h *Handler) list(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	c.Set("userId", userID)
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid limit", nil)
			return
		}
		limit = n
	}
	videos, err := h.Svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"videos": videos})
}

func (h *Handler) content(c *gin.Context) {
	videoID := c.Param("id")
	c.Set("videoId", videoID)
	rc, _, err := h.Svc.OpenContent(c.Request.Context(), videoID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Cache-Control", "private, max-age=3600")
	c.DataFromReader(http.StatusOK, -1, archiveContentType, rc, nil)
}

func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	var insufficient *credits.InsufficientError
	var perr *ProviderError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", verr.Message, nil)
	case errors.As(err, &insufficient):
		respond.Error(c, http.StatusBadRequest, "insufficient_credits", insufficient.Error(), gin.H{
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.Is(err, ErrModelNotAllowed):
		respond.Error(c, http.StatusForbidden, "model_not_allowed", "Model not available on your plan", nil)
	case errors.Is(err, users.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, object.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Video not found", nil)
	case errors.As(err, &perr):
		respond.Error(c, http.StatusInternalServerError, "provider_error", perr.Error(), nil)
	case errors.Is(err, ErrStorage):
		respond.Error(c, http.StatusInternalServerError, "storage_error", ErrStorage.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
	}
}

