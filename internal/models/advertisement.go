package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/lib/pq"
)

const (
	MaxAdTitleLength       = 50
	MaxAdDescriptionLength = 500
)

// Advertisement represents a classified listing posted by any user
type Advertisement struct {
	ID          string         `json:"id" db:"id"`
	UserID      string         `json:"userId" db:"user_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Price       *float64       `json:"price,omitempty" db:"price"`
	Category    string         `json:"category" db:"category"`
	Images      pq.StringArray `json:"images" db:"images"`
	ContactInfo string         `json:"contactInfo" db:"contact_info"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// AdvertisementView is an advertisement with its poster attached
type AdvertisementView struct {
	Advertisement
	User *UserSummary `json:"user,omitempty"`
}

// AdvertisementSortFields are the advertisement attributes accepted in sort parameters
var AdvertisementSortFields = []string{"createdAt", "price", "title", "category"}

// AdvertisementFilter narrows advertisement listings
type AdvertisementFilter struct {
	Category string
	UserID   string
	MinPrice *float64
	MaxPrice *float64
	Sort     []query.SortField
	Page     *query.Page
}

// CreateAdvertisementRequest represents the request to post an advertisement (JSON or multipart)
type CreateAdvertisementRequest struct {
	Title       string   `json:"title" form:"title" binding:"required"`
	Description string   `json:"description" form:"description" binding:"required"`
	Price       *float64 `json:"price,omitempty" form:"price"`
	Category    string   `json:"category" form:"category" binding:"required"`
	ContactInfo string   `json:"contactInfo" form:"contactInfo" binding:"required"`
}

// UpdateAdvertisementRequest represents the request to edit an advertisement
type UpdateAdvertisementRequest struct {
	Title              *string  `json:"title,omitempty" form:"title"`
	Description        *string  `json:"description,omitempty" form:"description"`
	Price              *float64 `json:"price,omitempty" form:"price"`
	Category           *string  `json:"category,omitempty" form:"category"`
	ContactInfo        *string  `json:"contactInfo,omitempty" form:"contactInfo"`
	KeepExistingImages *bool    `json:"keepExistingImages,omitempty" form:"keepExistingImages"`
}

// Validate validates the CreateAdvertisementRequest
func (req *CreateAdvertisementRequest) Validate() error {
	return validateAdFields(&req.Title, &req.Description, req.Price, &req.Category, &req.ContactInfo)
}

// Validate validates the UpdateAdvertisementRequest
func (req *UpdateAdvertisementRequest) Validate() error {
	return validateAdFields(req.Title, req.Description, req.Price, req.Category, req.ContactInfo)
}

func validateAdFields(title, description *string, price *float64, category, contact *string) error {
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return errors.New("title is required")
		}
		if utf8.RuneCountInString(*title) > MaxAdTitleLength {
			return errors.New("title cannot be more than 50 characters")
		}
	}
	if description != nil {
		if strings.TrimSpace(*description) == "" {
			return errors.New("description is required")
		}
		if utf8.RuneCountInString(*description) > MaxAdDescriptionLength {
			return errors.New("description cannot be more than 500 characters")
		}
	}
	if price != nil && *price < 0 {
		return errors.New("price cannot be negative")
	}
	if category != nil && strings.TrimSpace(*category) == "" {
		return errors.New("category is required")
	}
	if contact != nil && strings.TrimSpace(*contact) == "" {
		return errors.New("contactInfo is required")
	}
	return nil
}
