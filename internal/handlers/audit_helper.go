package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/internal/services"
)

// recordEvent writes a lifecycle audit entry for the request's caller without
// failing the request
func recordEvent(c *gin.Context, audit *services.AuditService, action, entityType, entityID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	caller := middleware.CallerFrom(c)
	audit.LogEntityEvent(c.Request.Context(), requestMeta(c), caller.ID, action, entityType, entityID, details)
}

func (h *AuthHandler) safeLogLoginFailed(c *gin.Context, email, reason string) {
	if h.auditService != nil {
		h.auditService.LogLoginFailed(c.Request.Context(), requestMeta(c), email, reason)
	}
}

func (h *AuthHandler) safeLogAuthEvent(c *gin.Context, userID, action string, details map[string]interface{}) {
	if h.auditService != nil {
		h.auditService.LogEntityEvent(c.Request.Context(), requestMeta(c), userID, action, "user", userID, details)
	}
}
