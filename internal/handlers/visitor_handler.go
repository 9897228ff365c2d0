package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// VisitorHandler handles visitor log HTTP requests
type VisitorHandler struct {
	visitorService *services.VisitorService
	auditService   *services.AuditService
	logger         *logrus.Logger
}

// NewVisitorHandler creates a new VisitorHandler
func NewVisitorHandler(visitorService *services.VisitorService, auditService *services.AuditService, logger *logrus.Logger) *VisitorHandler {
	return &VisitorHandler{
		visitorService: visitorService,
		auditService:   auditService,
		logger:         logger,
	}
}

// CreateVisitor handles POST /api/v1/visitors
func (h *VisitorHandler) CreateVisitor(c *gin.Context) {
	var req models.CreateVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	visitor, err := h.visitorService.Create(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, visitor)
}

// ListVisitors handles GET /api/v1/visitors
// Query params: status, from, to, sort, page, limit
func (h *VisitorHandler) ListVisitors(c *gin.Context) {
	filter, err := h.visitorFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Status = models.VisitorStatus(status)
		if !filter.Status.Valid() {
			respondError(c, h.logger, apperror.Validation("invalid status: must be checked-in or checked-out"))
			return
		}
	}

	result, err := h.visitorService.List(c.Request.Context(), middleware.CallerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, result)
}

// ListOverdueVisitors handles GET /api/v1/visitors/overdue
func (h *VisitorHandler) ListOverdueVisitors(c *gin.Context) {
	filter, err := h.visitorFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.visitorService.ListOverdue(c.Request.Context(), middleware.CallerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, result)
}

// ListTenantVisitors handles GET /api/v1/visitors/tenant/:tenantId
func (h *VisitorHandler) ListTenantVisitors(c *gin.Context) {
	visitors, err := h.visitorService.ListForTenant(c.Request.Context(), middleware.CallerFrom(c), c.Param("tenantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondItems(c, visitors)
}

// GetVisitor handles GET /api/v1/visitors/:id
func (h *VisitorHandler) GetVisitor(c *gin.Context) {
	visitor, err := h.visitorService.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, visitor)
}

// CheckoutVisitor handles PUT /api/v1/visitors/:id/checkout
func (h *VisitorHandler) CheckoutVisitor(c *gin.Context) {
	visitor, err := h.visitorService.Checkout(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordEvent(c, h.auditService, services.ActionVisitorCheckedOut, "visitor", visitor.ID, map[string]interface{}{
		"tenant": visitor.TenantID,
	})
	respondData(c, http.StatusOK, visitor)
}

// visitorFilter reads the check-in window and paging parameters
func (h *VisitorHandler) visitorFilter(c *gin.Context) (models.VisitorFilter, error) {
	var filter models.VisitorFilter
	if from := c.Query("from"); from != "" {
		t, err := query.ParseTime(from)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := query.ParseTime(to)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, apperror.Validation("to cannot be before from")
	}

	var err error
	filter.Sort, filter.Page, err = listParams(c, models.VisitorSortFields, nil)
	return filter, err
}
