package enhance

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"video-backend/internal/shared/server/respond"
)

type Handler struct {
	Enhancer Enhancer
}

func NewHandler(e Enhancer) *Handler {
	return &Handler{Enhancer: e}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/enhance-prompt", h.enhance)
}

type enhanceRequest struct {
	Prompt *string `json:"prompt"`
}

func (h *Handler) enhance(c *gin.Context) {
	if h.Enhancer == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == nil || strings.TrimSpace(*req.Prompt) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid prompt", nil)
		return
	}
	out, err := h.Enhancer.Enhance(c.Request.Context(), *req.Prompt)
	if err != nil {
		msg := "Failed to enhance prompt"
		if errors.Is(err, ErrUnparseableResponse) {
			msg = ErrUnparseableResponse.Error()
		}
		respond.Error(c, http.StatusInternalServerError, "enhance_failed", msg, nil)
		return
	}
	respond.OK(c, gin.H{"jsonPrompt": out})
}
