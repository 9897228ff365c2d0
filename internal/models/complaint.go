package models

import (
	"errors"
	"strings"
	"time"

	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/lib/pq"
)

// ComplaintStatus represents the progress of a maintenance complaint
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in-progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
)

// Valid reports whether s is a known complaint status
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved:
		return true
	}
	return false
}

// ComplaintCategory classifies a complaint
type ComplaintCategory string

const (
	ComplaintCategoryWater       ComplaintCategory = "water"
	ComplaintCategoryElectricity ComplaintCategory = "electricity"
	ComplaintCategoryPlumbing    ComplaintCategory = "plumbing"
	ComplaintCategoryFurniture   ComplaintCategory = "furniture"
	ComplaintCategoryCleanliness ComplaintCategory = "cleanliness"
	ComplaintCategorySecurity    ComplaintCategory = "security"
	ComplaintCategoryOther       ComplaintCategory = "other"
)

// Valid reports whether c is a known complaint category
func (c ComplaintCategory) Valid() bool {
	switch c {
	case ComplaintCategoryWater, ComplaintCategoryElectricity, ComplaintCategoryPlumbing,
		ComplaintCategoryFurniture, ComplaintCategoryCleanliness, ComplaintCategorySecurity,
		ComplaintCategoryOther:
		return true
	}
	return false
}

// Complaint represents a maintenance issue raised by a tenant
type Complaint struct {
	ID          string            `json:"id" db:"id"`
	TenantID    string            `json:"tenantId" db:"tenant_id"`
	RoomID      string            `json:"roomId" db:"room_id"`
	Category    ComplaintCategory `json:"category" db:"category"`
	Description string            `json:"description" db:"description"`
	Status      ComplaintStatus   `json:"status" db:"status"`
	Images      pq.StringArray    `json:"images" db:"images"`
	Resolution  string            `json:"resolution,omitempty" db:"resolution"`
	ResolvedAt  *time.Time        `json:"resolvedAt,omitempty" db:"resolved_at"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// ComplaintView is a complaint with its tenant and room attached
type ComplaintView struct {
	Complaint
	Tenant *UserSummary `json:"tenant,omitempty"`
	Room   *Room        `json:"room,omitempty"`
}

// ComplaintSortFields are the complaint attributes accepted in sort parameters
var ComplaintSortFields = []string{"createdAt", "status", "category", "resolvedAt"}

// ComplaintFilter narrows complaint listings
type ComplaintFilter struct {
	Status   ComplaintStatus
	Category ComplaintCategory
	TenantID string
	Sort     []query.SortField
	Page     *query.Page
}

// CreateComplaintRequest represents the request to file a complaint (JSON or multipart)
type CreateComplaintRequest struct {
	RoomID      string `json:"room" form:"room" binding:"required"`
	Category    string `json:"category" form:"category" binding:"required"`
	Description string `json:"description" form:"description" binding:"required"`
}

// UpdateComplaintRequest represents the request body for PUT /complaints/:id
type UpdateComplaintRequest struct {
	Status     *string `json:"status,omitempty"`
	Resolution *string `json:"resolution,omitempty"`
	Category   *string `json:"category,omitempty"`
}

// Validate validates the CreateComplaintRequest
func (req *CreateComplaintRequest) Validate() error {
	if !ComplaintCategory(req.Category).Valid() {
		return errors.New("invalid category: must be water, electricity, plumbing, furniture, cleanliness, security, or other")
	}
	if strings.TrimSpace(req.Description) == "" {
		return errors.New("description is required")
	}
	return nil
}

// Validate validates the UpdateComplaintRequest
func (req *UpdateComplaintRequest) Validate() error {
	if req.Status != nil && !ComplaintStatus(*req.Status).Valid() {
		return errors.New("invalid status: must be pending, in-progress, or resolved")
	}
	if req.Category != nil && !ComplaintCategory(*req.Category).Valid() {
		return errors.New("invalid category")
	}
	return nil
}
