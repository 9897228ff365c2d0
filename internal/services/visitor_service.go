package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-backend/internal/access"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/hostelhub/hostel-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

const msgTenantNotFound = "tenant not found"

// VisitorService manages visitor check-ins
type VisitorService struct {
	store          database.Store
	phoneValidator *validator.PhoneValidator
	logger         *logrus.Logger
	now            func() time.Time
}

// NewVisitorService creates a new visitor service
func NewVisitorService(store database.Store, phoneValidator *validator.PhoneValidator, logger *logrus.Logger) *VisitorService {
	return &VisitorService{
		store:          store,
		phoneValidator: phoneValidator,
		logger:         logger,
		now:            time.Now,
	}
}

// Create checks a visitor in for an existing tenant
func (s *VisitorService) Create(ctx context.Context, caller access.Caller, req models.CreateVisitorRequest) (*models.VisitorView, error) {
	if err := access.Check(caller, access.OpCreateVisitor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	phone, err := s.phoneValidator.Validate(req.Phone)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	checkIn := s.now()
	if strings.TrimSpace(req.CheckInTime) != "" {
		if checkIn, err = query.ParseTime(req.CheckInTime); err != nil {
			return nil, err
		}
	}
	expected, err := query.ParseTime(req.ExpectedCheckOutTime)
	if err != nil {
		return nil, err
	}
	if !expected.After(checkIn) {
		return nil, apperror.Validation("expectedCheckOutTime must be after checkInTime")
	}

	if _, err := s.tenant(ctx, req.TenantID); err != nil {
		return nil, err
	}

	visitor := &models.Visitor{
		ID:                   uuid.New().String(),
		Name:                 strings.TrimSpace(req.Name),
		IDNumber:             strings.TrimSpace(req.IDNumber),
		Phone:                phone,
		TenantID:             req.TenantID,
		CheckInTime:          checkIn,
		ExpectedCheckOutTime: expected,
		Purpose:              strings.TrimSpace(req.Purpose),
		Status:               models.VisitorStatusCheckedIn,
		RegisteredByID:       caller.ID,
	}
	if err := s.store.Visitors().Create(ctx, visitor); err != nil {
		return nil, storeError(err, "visitor")
	}

	s.logger.WithFields(logrus.Fields{"visitor_id": visitor.ID, "tenant_id": visitor.TenantID}).Info("Visitor checked in")

	views, err := s.hydrate(ctx, []models.Visitor{*visitor})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of all visitors
func (s *VisitorService) List(ctx context.Context, caller access.Caller, filter models.VisitorFilter) (*ListResult[models.VisitorView], error) {
	if err := access.Check(caller, access.OpListVisitors); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// ListOverdue returns one page of checked-in visitors past their expected checkout
func (s *VisitorService) ListOverdue(ctx context.Context, caller access.Caller, filter models.VisitorFilter) (*ListResult[models.VisitorView], error) {
	if err := access.Check(caller, access.OpListOverdueVisitors); err != nil {
		return nil, err
	}
	now := s.now()
	filter.Status = models.VisitorStatusCheckedIn
	filter.OverdueAt = &now
	if len(filter.Sort) == 0 {
		filter.Sort = []query.SortField{{Field: "expectedCheckOutTime"}}
	}
	return s.list(ctx, filter)
}

// ListForTenant returns every visitor of a tenant, most recent first
func (s *VisitorService) ListForTenant(ctx context.Context, caller access.Caller, tenantID string) ([]models.VisitorView, error) {
	if err := access.Check(caller, access.OpListTenantVisitors); err != nil {
		return nil, err
	}
	if _, err := s.tenant(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := access.CheckOwner(caller, access.OpListTenantVisitors, tenantID); err != nil {
		return nil, err
	}

	visitors, err := s.store.Visitors().List(ctx, models.VisitorFilter{TenantID: tenantID, Sort: models.VisitorDefaultSort})
	if err != nil {
		return nil, storeError(err, "visitor")
	}
	return s.hydrate(ctx, visitors)
}

// Get returns a visitor visible to the caller
func (s *VisitorService) Get(ctx context.Context, caller access.Caller, id string) (*models.VisitorView, error) {
	if err := access.Check(caller, access.OpReadVisitor); err != nil {
		return nil, err
	}
	visitor, err := s.store.Visitors().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "visitor")
	}
	if err := access.CheckOwner(caller, access.OpReadVisitor, visitor.TenantID); err != nil {
		return nil, err
	}

	views, err := s.hydrate(ctx, []models.Visitor{*visitor})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Checkout records a checked-in visitor leaving
func (s *VisitorService) Checkout(ctx context.Context, caller access.Caller, id string) (*models.VisitorView, error) {
	if err := access.Check(caller, access.OpCheckoutVisitor); err != nil {
		return nil, err
	}

	visitor, err := s.store.Visitors().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "visitor")
	}
	if visitor.Status == models.VisitorStatusCheckedOut {
		return nil, apperror.InvalidState("visitor already checked out")
	}

	now := s.now()
	visitor.Status = models.VisitorStatusCheckedOut
	visitor.ActualCheckOutTime = &now
	if err := s.store.Visitors().Update(ctx, visitor); err != nil {
		return nil, storeError(err, "visitor")
	}

	s.logger.WithFields(logrus.Fields{
		"visitor_id": visitor.ID,
		"overstayed": now.After(visitor.ExpectedCheckOutTime),
	}).Info("Visitor checked out")

	views, err := s.hydrate(ctx, []models.Visitor{*visitor})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// FindOverdue returns every checked-in visitor past the expected checkout at now.
// It is used by background jobs and performs no access check.
func (s *VisitorService) FindOverdue(ctx context.Context, now time.Time) ([]models.Visitor, error) {
	visitors, err := s.store.Visitors().List(ctx, models.VisitorFilter{
		Status:    models.VisitorStatusCheckedIn,
		OverdueAt: &now,
		Sort:      []query.SortField{{Field: "expectedCheckOutTime"}},
	})
	if err != nil {
		return nil, storeError(err, "visitor")
	}
	return visitors, nil
}

func (s *VisitorService) list(ctx context.Context, filter models.VisitorFilter) (*ListResult[models.VisitorView], error) {
	filter.Sort, filter.Page = listDefaults(filter.Sort, filter.Page, models.VisitorDefaultSort)

	visitors, err := s.store.Visitors().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "visitor")
	}
	total, err := s.store.Visitors().Count(ctx, filter)
	if err != nil {
		return nil, storeError(err, "visitor")
	}
	views, err := s.hydrate(ctx, visitors)
	if err != nil {
		return nil, err
	}

	return &ListResult[models.VisitorView]{Items: views, Total: total, Page: *filter.Page}, nil
}

// tenant loads a user that must exist and hold the tenant role
func (s *VisitorService) tenant(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.NotFound(msgTenantNotFound)
		}
		return nil, storeError(err, "user")
	}
	if user.Role != models.RoleTenant {
		return nil, apperror.NotFound(msgTenantNotFound)
	}
	return user, nil
}

func (s *VisitorService) hydrate(ctx context.Context, visitors []models.Visitor) ([]models.VisitorView, error) {
	ids := make([]string, 0, len(visitors)*2)
	for _, v := range visitors {
		ids = append(ids, v.TenantID, v.RegisteredByID)
	}

	users, err := loadUsers(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.VisitorView, len(visitors))
	for i, v := range visitors {
		views[i] = models.VisitorView{
			Visitor:      v,
			Tenant:       users[v.TenantID].Summary(),
			RegisteredBy: users[v.RegisteredByID].NameOnly(),
		}
	}
	return views, nil
}
