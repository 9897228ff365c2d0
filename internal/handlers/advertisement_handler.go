package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// AdvertisementHandler handles classified advertisement HTTP requests
type AdvertisementHandler struct {
	adService    *services.AdvertisementService
	auditService *services.AuditService
	files        storage.FileStore
	logger       *logrus.Logger
}

// NewAdvertisementHandler creates a new AdvertisementHandler
func NewAdvertisementHandler(adService *services.AdvertisementService, auditService *services.AuditService, files storage.FileStore, logger *logrus.Logger) *AdvertisementHandler {
	return &AdvertisementHandler{
		adService:    adService,
		auditService: auditService,
		files:        files,
		logger:       logger,
	}
}

// CreateAdvertisement handles POST /api/v1/advertisements
func (h *AdvertisementHandler) CreateAdvertisement(c *gin.Context) {
	var req models.CreateAdvertisementRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	images, err := saveUploads(c, h.files, h.logger, maxAdImages)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ad, err := h.adService.Create(c.Request.Context(), middleware.CallerFrom(c), req, images)
	if err != nil {
		discardUploads(c, h.files, h.logger, images)
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, ad)
}

// ListAdvertisements handles GET /api/v1/advertisements
// Query params: category, minPrice, maxPrice, sort, page, limit
func (h *AdvertisementHandler) ListAdvertisements(c *gin.Context) {
	filter := models.AdvertisementFilter{Category: c.Query("category")}

	var err error
	if filter.MinPrice, err = optionalFloat(c, "minPrice"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if filter.MaxPrice, err = optionalFloat(c, "maxPrice"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if filter.Sort, filter.Page, err = listParams(c, models.AdvertisementSortFields, nil); err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.adService.List(c.Request.Context(), middleware.CallerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, result)
}

// ListMyAdvertisements handles GET /api/v1/advertisements/me
func (h *AdvertisementHandler) ListMyAdvertisements(c *gin.Context) {
	ads, err := h.adService.ListMine(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondItems(c, ads)
}

// GetAdvertisement handles GET /api/v1/advertisements/:id
func (h *AdvertisementHandler) GetAdvertisement(c *gin.Context) {
	ad, err := h.adService.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, ad)
}

// UpdateAdvertisement handles PUT /api/v1/advertisements/:id
func (h *AdvertisementHandler) UpdateAdvertisement(c *gin.Context) {
	var req models.UpdateAdvertisementRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	images, err := saveUploads(c, h.files, h.logger, maxAdImages)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ad, err := h.adService.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req, images)
	if err != nil {
		discardUploads(c, h.files, h.logger, images)
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, ad)
}

// DeleteAdvertisement handles DELETE /api/v1/advertisements/:id
func (h *AdvertisementHandler) DeleteAdvertisement(c *gin.Context) {
	id := c.Param("id")
	if err := h.adService.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordEvent(c, h.auditService, services.ActionAdDeleted, "advertisement", id, nil)
	respondData(c, http.StatusOK, gin.H{})
}
