package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// ComplaintHandler handles complaint HTTP requests
type ComplaintHandler struct {
	complaintService *services.ComplaintService
	auditService     *services.AuditService
	files            storage.FileStore
	logger           *logrus.Logger
}

// NewComplaintHandler creates a new ComplaintHandler
func NewComplaintHandler(complaintService *services.ComplaintService, auditService *services.AuditService, files storage.FileStore, logger *logrus.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		auditService:     auditService,
		files:            files,
		logger:           logger,
	}
}

// CreateComplaint handles POST /api/v1/complaints (JSON or multipart with up to 3 images)
func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	var req models.CreateComplaintRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	images, err := saveUploads(c, h.files, h.logger, maxComplaintImages)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	complaint, err := h.complaintService.Create(c.Request.Context(), middleware.CallerFrom(c), req, images)
	if err != nil {
		discardUploads(c, h.files, h.logger, images)
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, complaint)
}

// ListComplaints handles GET /api/v1/complaints
// Query params: status, category, sort, page, limit
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	var filter models.ComplaintFilter
	if status := c.Query("status"); status != "" {
		filter.Status = models.ComplaintStatus(status)
		if !filter.Status.Valid() {
			respondError(c, h.logger, apperror.Validation("invalid status: must be pending, in-progress, or resolved"))
			return
		}
	}
	if category := c.Query("category"); category != "" {
		filter.Category = models.ComplaintCategory(category)
		if !filter.Category.Valid() {
			respondError(c, h.logger, apperror.Validation("invalid category"))
			return
		}
	}

	var err error
	filter.Sort, filter.Page, err = listParams(c, models.ComplaintSortFields, nil)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.complaintService.List(c.Request.Context(), middleware.CallerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, result)
}

// ListMyComplaints handles GET /api/v1/complaints/me
func (h *ComplaintHandler) ListMyComplaints(c *gin.Context) {
	complaints, err := h.complaintService.ListMine(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondItems(c, complaints)
}

// GetComplaint handles GET /api/v1/complaints/:id
func (h *ComplaintHandler) GetComplaint(c *gin.Context) {
	complaint, err := h.complaintService.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, complaint)
}

// UpdateComplaint handles PUT /api/v1/complaints/:id
func (h *ComplaintHandler) UpdateComplaint(c *gin.Context) {
	var req models.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	complaint, err := h.complaintService.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordEvent(c, h.auditService, services.ActionComplaintUpdated, "complaint", complaint.ID, map[string]interface{}{
		"status": complaint.Status,
	})
	respondData(c, http.StatusOK, complaint)
}
