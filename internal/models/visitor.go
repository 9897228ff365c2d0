package models

import (
	"errors"
	"strings"
	"time"

	"github.com/hostelhub/hostel-backend/internal/query"
)

// VisitorStatus represents whether a visitor is on the premises
type VisitorStatus string

const (
	VisitorStatusCheckedIn  VisitorStatus = "checked-in"
	VisitorStatusCheckedOut VisitorStatus = "checked-out"
)

// Valid reports whether s is a known visitor status
func (s VisitorStatus) Valid() bool {
	return s == VisitorStatusCheckedIn || s == VisitorStatusCheckedOut
}

// Visitor represents a guest visiting a tenant
type Visitor struct {
	ID                   string        `json:"id" db:"id"`
	Name                 string        `json:"name" db:"name"`
	IDNumber             string        `json:"idNumber" db:"id_number"`
	Phone                string        `json:"phone" db:"phone"`
	TenantID             string        `json:"tenantId" db:"tenant_id"`
	CheckInTime          time.Time     `json:"checkInTime" db:"check_in_time"`
	ExpectedCheckOutTime time.Time     `json:"expectedCheckOutTime" db:"expected_check_out_time"`
	ActualCheckOutTime   *time.Time    `json:"actualCheckOutTime,omitempty" db:"actual_check_out_time"`
	Purpose              string        `json:"purpose" db:"purpose"`
	Status               VisitorStatus `json:"status" db:"status"`
	RegisteredByID       string        `json:"registeredById" db:"registered_by"`
	CreatedAt            time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsOverdue reports whether a checked-in visitor has passed the expected checkout time
func (v *Visitor) IsOverdue(now time.Time) bool {
	return v.Status == VisitorStatusCheckedIn && now.After(v.ExpectedCheckOutTime)
}

// VisitorView is a visitor with the visited tenant and registering matron attached
type VisitorView struct {
	Visitor
	Tenant       *UserSummary `json:"tenant,omitempty"`
	RegisteredBy *UserSummary `json:"registeredBy,omitempty"`
}

// VisitorSortFields are the visitor attributes accepted in sort parameters
var VisitorSortFields = []string{"checkInTime", "expectedCheckOutTime", "name", "status", "createdAt"}

// VisitorDefaultSort orders visitors by most recent check-in
var VisitorDefaultSort = []query.SortField{{Field: "checkInTime", Desc: true}}

// VisitorFilter narrows visitor listings
type VisitorFilter struct {
	Status   VisitorStatus
	TenantID string
	From     *time.Time
	To       *time.Time
	// OverdueAt selects checked-in visitors whose expected checkout is before it
	OverdueAt *time.Time
	Sort      []query.SortField
	Page      *query.Page
}

// CreateVisitorRequest represents the request body for POST /visitors
type CreateVisitorRequest struct {
	Name                 string `json:"name" binding:"required"`
	IDNumber             string `json:"idNumber" binding:"required"`
	Phone                string `json:"phone" binding:"required"`
	TenantID             string `json:"tenant" binding:"required"`
	CheckInTime          string `json:"checkInTime,omitempty"`
	ExpectedCheckOutTime string `json:"expectedCheckOutTime" binding:"required"`
	Purpose              string `json:"purpose" binding:"required"`
}

// Validate validates the CreateVisitorRequest
func (req *CreateVisitorRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(req.IDNumber) == "" {
		return errors.New("idNumber is required")
	}
	if strings.TrimSpace(req.Purpose) == "" {
		return errors.New("purpose is required")
	}
	return nil
}
