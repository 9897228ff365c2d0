package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// RoomHandler handles room HTTP requests
type RoomHandler struct {
	roomService  *services.RoomService
	auditService *services.AuditService
	files        storage.FileStore
	logger       *logrus.Logger
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(roomService *services.RoomService, auditService *services.AuditService, files storage.FileStore, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{
		roomService:  roomService,
		auditService: auditService,
		files:        files,
		logger:       logger,
	}
}

// ListRooms handles GET /api/v1/rooms
// Supports field[op]=value filters, select, sort, page and limit.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	conditions, err := query.ParseConditions(c.Request.URL.Query(), models.RoomFilterFields)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	fields, err := query.ParseSelect(c.Query("select"), models.RoomSelectFields)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sort, page, err := listParams(c, models.RoomSortFields, nil)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.roomService.List(c.Request.Context(), middleware.CallerFrom(c), models.RoomFilter{
		Conditions: conditions,
		Sort:       sort,
		Page:       page,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if len(fields) == 0 {
		respondPage(c, result)
		return
	}

	projected := make([]map[string]any, 0, len(result.Items))
	for i := range result.Items {
		item, err := query.Project(&result.Items[i], fields)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		projected = append(projected, item)
	}
	respondPageData(c, projected, len(projected), result.Total, result.Pagination())
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, room)
}

// CreateRoom handles POST /api/v1/rooms (JSON or multipart with up to 5 images)
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	images, err := saveUploads(c, h.files, h.logger, maxRoomImages)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), middleware.CallerFrom(c), req, images)
	if err != nil {
		discardUploads(c, h.files, h.logger, images)
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, room)
}

// UpdateRoom handles PUT /api/v1/rooms/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	var req models.UpdateRoomRequest
	if err := bindBody(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	images, err := saveUploads(c, h.files, h.logger, maxRoomImages)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	room, err := h.roomService.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), req, images)
	if err != nil {
		discardUploads(c, h.files, h.logger, images)
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	id := c.Param("id")
	if err := h.roomService.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordEvent(c, h.auditService, services.ActionRoomDeleted, "room", id, nil)
	respondData(c, http.StatusOK, gin.H{})
}
