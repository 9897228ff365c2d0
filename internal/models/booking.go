package models

import (
	"errors"
	"strings"
	"time"

	"github.com/hostelhub/hostel-backend/internal/query"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// bookingTransitions lists the legal status edges. Terminal states have none.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether a booking in this status holds its room
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// ReleasesRoom reports whether entering this status frees the room
func (s BookingStatus) ReleasesRoom() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// CanTransition reports whether a booking may move from one status to another
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Booking represents a tenant's reservation of a room
type Booking struct {
	ID            string        `json:"id" db:"id"`
	RoomID        string        `json:"roomId" db:"room_id"`
	TenantID      string        `json:"tenantId" db:"tenant_id"`
	CheckInDate   time.Time     `json:"checkInDate" db:"check_in_date"`
	Duration      int           `json:"duration" db:"duration"`
	Status        BookingStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" db:"payment_status"`
	TotalAmount   float64       `json:"totalAmount" db:"total_amount"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// BookingView is a booking with its tenant and room attached
type BookingView struct {
	Booking
	Tenant *UserSummary `json:"tenant,omitempty"`
	Room   *Room        `json:"room,omitempty"`
}

// BookingSortFields are the booking attributes accepted in sort parameters
var BookingSortFields = []string{"createdAt", "checkInDate", "duration", "totalAmount", "status"}

// BookingFilter narrows booking listings
type BookingFilter struct {
	Status     BookingStatus
	RoomID     string
	TenantID   string
	ActiveOnly bool
	Sort       []query.SortField
	Page       *query.Page
}

// CreateBookingRequest represents the request body for POST /bookings
type CreateBookingRequest struct {
	RoomID      string `json:"room" binding:"required"`
	CheckInDate string `json:"checkInDate" binding:"required"`
	Duration    int    `json:"duration" binding:"required"`
}

// UpdateBookingRequest represents the request body for PUT /bookings/:id
type UpdateBookingRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
}

// Validate validates the CreateBookingRequest
func (req *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(req.RoomID) == "" {
		return errors.New("room is required")
	}
	if strings.TrimSpace(req.CheckInDate) == "" {
		return errors.New("checkInDate is required")
	}
	if req.Duration <= 0 {
		return errors.New("duration must be a positive number of months")
	}
	return nil
}

// Validate validates the UpdateBookingRequest
func (req *UpdateBookingRequest) Validate() error {
	if req.Status == nil && req.PaymentStatus == nil {
		return errors.New("nothing to update")
	}
	if req.Status != nil && !BookingStatus(*req.Status).Valid() {
		return errors.New("invalid status: must be pending, confirmed, cancelled, or completed")
	}
	if req.PaymentStatus != nil && !PaymentStatus(*req.PaymentStatus).Valid() {
		return errors.New("invalid paymentStatus: must be pending, paid, or refunded")
	}
	return nil
}
