package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"video-backend/internal/credits"
	"video-backend/internal/shared/server/middleware"
	"video-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/credits", h.credits)
}

// me resolves the caller's host identity to a user, creating it on first sight.
func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	whopID := middleware.WhopUserIDFromContext(c)
	if whopID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}
	user, created, err := h.Svc.GetOrCreate(c.Request.Context(), Identity{
		WhopUserID: whopID,
		Email:      middleware.UserEmailFromContext(c),
		Username:   middleware.UserNameFromContext(c),
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	c.Set("userId", user.ID)
	respond.OK(c, gin.H{
		"user":    user,
		"created": created,
	})
}

func (h *Handler) credits(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "userId is required", nil)
		return
	}
	c.Set("userId", userID)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load credits", nil)
		return
	}
	tier, _ := credits.LookupTier(user.SubscriptionTier)
	respond.OK(c, gin.H{
		"credits":               user.CreditsRemaining,
		"totalCreditsPurchased": user.TotalCreditsPurchased,
		"tier":                  user.SubscriptionTier,
		"allowedModels":         tier.AllowedModels,
	})
}
