package models

import (
	"errors"
	"strings"
	"time"

	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/lib/pq"
)

// RoomStatus represents the availability of a room
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// DefaultRoomImage is used when a room is created without uploads
const DefaultRoomImage = "default-room.jpg"

// Room represents a bookable hostel room
type Room struct {
	ID          string         `json:"id" db:"id"`
	RoomNumber  string         `json:"roomNumber" db:"room_number"`
	Floor       int            `json:"floor" db:"floor"`
	Capacity    int            `json:"capacity" db:"capacity"`
	Price       float64        `json:"price" db:"price"`
	Status      RoomStatus     `json:"status" db:"status"`
	Amenities   pq.StringArray `json:"amenities" db:"amenities"`
	Images      pq.StringArray `json:"images" db:"images"`
	Description string         `json:"description" db:"description"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// RoomFilterFields are the room attributes accepted in comparison filters
var RoomFilterFields = map[string]query.FieldType{
	"price":      query.FieldNumber,
	"floor":      query.FieldNumber,
	"capacity":   query.FieldNumber,
	"createdAt":  query.FieldDate,
	"status":     query.FieldString,
	"roomNumber": query.FieldString,
}

// RoomSortFields are the room attributes accepted in sort parameters
var RoomSortFields = []string{"roomNumber", "floor", "capacity", "price", "status", "createdAt"}

// RoomSelectFields are the attributes accepted in sparse fieldsets
var RoomSelectFields = []string{"roomNumber", "floor", "capacity", "price", "status", "amenities", "images", "description", "createdAt", "updatedAt"}

// RoomFilter narrows room listings
type RoomFilter struct {
	Conditions []query.Condition
	Sort       []query.SortField
	Page       *query.Page
}

// CreateRoomRequest represents the request to create a room (JSON or multipart)
type CreateRoomRequest struct {
	RoomNumber  string   `json:"roomNumber" form:"roomNumber" binding:"required"`
	Floor       *int     `json:"floor" form:"floor" binding:"required"`
	Capacity    *int     `json:"capacity,omitempty" form:"capacity"`
	Price       *float64 `json:"price" form:"price" binding:"required"`
	Status      string   `json:"status,omitempty" form:"status"`
	Amenities   []string `json:"amenities,omitempty" form:"amenities"`
	Description string   `json:"description,omitempty" form:"description"`
}

// UpdateRoomRequest represents the request to update a room. Nil fields are unchanged.
type UpdateRoomRequest struct {
	RoomNumber         *string  `json:"roomNumber,omitempty" form:"roomNumber"`
	Floor              *int     `json:"floor,omitempty" form:"floor"`
	Capacity           *int     `json:"capacity,omitempty" form:"capacity"`
	Price              *float64 `json:"price,omitempty" form:"price"`
	Status             *string  `json:"status,omitempty" form:"status"`
	Amenities          []string `json:"amenities,omitempty" form:"amenities"`
	Description        *string  `json:"description,omitempty" form:"description"`
	KeepExistingImages *bool    `json:"keepExistingImages,omitempty" form:"keepExistingImages"`
}

// Validate validates the CreateRoomRequest
func (req *CreateRoomRequest) Validate() error {
	if strings.TrimSpace(req.RoomNumber) == "" {
		return errors.New("roomNumber is required")
	}
	if req.Price != nil && *req.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return errors.New("capacity must be greater than 0")
	}
	if req.Status != "" {
		if err := validateManualRoomStatus(RoomStatus(req.Status)); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the UpdateRoomRequest
func (req *UpdateRoomRequest) Validate() error {
	if req.RoomNumber != nil && strings.TrimSpace(*req.RoomNumber) == "" {
		return errors.New("roomNumber cannot be empty")
	}
	if req.Price != nil && *req.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return errors.New("capacity must be greater than 0")
	}
	if req.Status != nil {
		if err := validateManualRoomStatus(RoomStatus(*req.Status)); err != nil {
			return err
		}
	}
	return nil
}

// occupied is driven by bookings and never set by hand
func validateManualRoomStatus(status RoomStatus) error {
	switch status {
	case RoomStatusAvailable, RoomStatusMaintenance:
		return nil
	case RoomStatusOccupied:
		return errors.New("status occupied is set by bookings and cannot be assigned directly")
	default:
		return errors.New("invalid status: must be available or maintenance")
	}
}

// NormalizeList trims entries and splits single comma separated values, as sent
// by multipart forms.
func NormalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
