package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles account and token endpoints
type AuthHandler struct {
	authService      *services.AuthService
	rateLimitService *services.RateLimitService
	auditService     *services.AuditService
	logger           *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	authService *services.AuthService,
	rateLimitService *services.RateLimitService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		rateLimitService: rateLimitService,
		auditService:     auditService,
		logger:           logger,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.safeLogAuthEvent(c, resp.User.ID, services.ActionRegister, map[string]interface{}{"role": resp.User.Role})
	respondData(c, http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	meta := requestMeta(c)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if h.rateLimitService != nil {
		if err := h.rateLimitService.CheckLogin(ctx, email, meta.IPAddress); err != nil {
			var rateErr *services.RateLimitError
			if errors.As(err, &rateErr) {
				if h.auditService != nil {
					h.auditService.LogRateLimitViolation(ctx, meta, email, rateErr.RetryAfter)
				}
				retry := int(time.Until(rateErr.RetryAfter).Seconds())
				if retry < 1 {
					retry = 1
				}
				c.Header("Retry-After", strconv.Itoa(retry))
				respondError(c, h.logger, apperror.RateLimited(rateErr.Message))
				return
			}
			respondError(c, h.logger, apperror.Internal("Failed to check login attempts", err))
			return
		}
	}

	resp, err := h.authService.Login(ctx, req)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnauthenticated {
			h.safeLogLoginFailed(c, email, "invalid_credentials")
		}
		respondError(c, h.logger, err)
		return
	}

	if h.auditService != nil {
		h.auditService.LogLogin(ctx, meta, resp.User)
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": resp.User.ID,
		"role":    resp.User.Role,
	}).Info("User logged in")

	respondData(c, http.StatusOK, resp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if h.auditService != nil && apperror.KindOf(err) == apperror.KindUnauthenticated {
			h.auditService.SafeLog(c.Request.Context(), requestMeta(c), services.AuditEvent{
				Action:     services.ActionTokenRefreshFailed,
				EntityType: "token",
			})
		}
		respondError(c, h.logger, err)
		return
	}

	h.safeLogAuthEvent(c, resp.User.ID, services.ActionTokenRefresh, nil)
	respondData(c, http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// ChangePassword handles PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	caller := middleware.CallerFrom(c)
	if err := h.authService.ChangePassword(c.Request.Context(), caller, req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.safeLogAuthEvent(c, caller.ID, services.ActionPasswordChange, nil)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated",
	})
}

// ListTenants handles GET /api/v1/auth/tenants
func (h *AuthHandler) ListTenants(c *gin.Context) {
	tenants, err := h.authService.ListTenants(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondItems(c, tenants)
}
