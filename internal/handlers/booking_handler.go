package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService *services.BookingService
	auditService   *services.AuditService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, auditService *services.AuditService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		auditService:   auditService,
		logger:         logger,
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordEvent(c, h.auditService, services.ActionBookingCreated, "booking", booking.ID, map[string]interface{}{
		"room":        booking.RoomID,
		"duration":    booking.Duration,
		"totalAmount": booking.TotalAmount,
	})
	respondData(c, http.StatusCreated, booking)
}

// ListBookings handles GET /api/v1/bookings
// Query params: status, room, sort, page, limit
func (h *BookingHandler) ListBookings(c *gin.Context) {
	filter := models.BookingFilter{RoomID: c.Query("room")}
	if status := c.Query("status"); status != "" {
		filter.Status = models.BookingStatus(status)
		if !filter.Status.Valid() {
			respondError(c, h.logger, apperror.Validation("invalid status: must be pending, confirmed, cancelled, or completed"))
			return
		}
	}

	var err error
	filter.Sort, filter.Page, err = listParams(c, models.BookingSortFields, nil)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.bookingService.List(c.Request.Context(), middleware.CallerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, result)
}

// ListMyBookings handles GET /api/v1/bookings/me
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListMine(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondItems(c, bookings)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, booking)
}

// UpdateBooking handles PUT /api/v1/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.Validation("Invalid request body: "+err.Error()))
		return
	}

	booking, err := h.bookingService.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordEvent(c, h.auditService, services.ActionBookingUpdated, "booking", booking.ID, map[string]interface{}{
		"status":        booking.Status,
		"paymentStatus": booking.PaymentStatus,
	})
	respondData(c, http.StatusOK, booking)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	booking, err := h.bookingService.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordEvent(c, h.auditService, services.ActionBookingDeleted, "booking", booking.ID, map[string]interface{}{
		"room":   booking.RoomID,
		"status": booking.Status,
	})
	respondData(c, http.StatusOK, gin.H{})
}
