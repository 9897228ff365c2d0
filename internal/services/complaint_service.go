package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-backend/internal/access"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/sirupsen/logrus"
)

// ComplaintService manages maintenance complaints
type ComplaintService struct {
	store  database.Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewComplaintService creates a new complaint service
func NewComplaintService(store database.Store, logger *logrus.Logger) *ComplaintService {
	return &ComplaintService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create files a complaint about an existing room
func (s *ComplaintService) Create(ctx context.Context, caller access.Caller, req models.CreateComplaintRequest, images []string) (*models.ComplaintView, error) {
	if err := access.Check(caller, access.OpCreateComplaint); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	room, err := s.store.Rooms().GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, storeError(err, "room")
	}

	complaint := &models.Complaint{
		ID:          uuid.New().String(),
		TenantID:    caller.ID,
		RoomID:      room.ID,
		Category:    models.ComplaintCategory(req.Category),
		Description: strings.TrimSpace(req.Description),
		Status:      models.ComplaintStatusPending,
		Images:      images,
	}
	if err := s.store.Complaints().Create(ctx, complaint); err != nil {
		return nil, storeError(err, "complaint")
	}

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaint.ID,
		"room_id":      room.ID,
		"category":     complaint.Category,
	}).Info("Complaint filed")

	views, err := s.hydrate(ctx, []models.Complaint{*complaint})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of all complaints
func (s *ComplaintService) List(ctx context.Context, caller access.Caller, filter models.ComplaintFilter) (*ListResult[models.ComplaintView], error) {
	if err := access.Check(caller, access.OpListComplaints); err != nil {
		return nil, err
	}
	filter.Sort, filter.Page = listDefaults(filter.Sort, filter.Page, query.ByCreatedAtDesc)

	complaints, err := s.store.Complaints().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "complaint")
	}
	total, err := s.store.Complaints().Count(ctx, filter)
	if err != nil {
		return nil, storeError(err, "complaint")
	}
	views, err := s.hydrate(ctx, complaints)
	if err != nil {
		return nil, err
	}

	return &ListResult[models.ComplaintView]{Items: views, Total: total, Page: *filter.Page}, nil
}

// ListMine returns every complaint filed by the calling tenant
func (s *ComplaintService) ListMine(ctx context.Context, caller access.Caller) ([]models.ComplaintView, error) {
	if err := access.Check(caller, access.OpListMyComplaints); err != nil {
		return nil, err
	}
	complaints, err := s.store.Complaints().List(ctx, models.ComplaintFilter{TenantID: caller.ID, Sort: query.ByCreatedAtDesc})
	if err != nil {
		return nil, storeError(err, "complaint")
	}
	return s.hydrate(ctx, complaints)
}

// Get returns a complaint visible to the caller
func (s *ComplaintService) Get(ctx context.Context, caller access.Caller, id string) (*models.ComplaintView, error) {
	if err := access.Check(caller, access.OpReadComplaint); err != nil {
		return nil, err
	}
	complaint, err := s.store.Complaints().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "complaint")
	}
	if err := access.CheckOwner(caller, access.OpReadComplaint, complaint.TenantID); err != nil {
		return nil, err
	}

	views, err := s.hydrate(ctx, []models.Complaint{*complaint})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update edits the status, resolution or category of a complaint. resolvedAt is
// stamped each time the complaint enters resolved and is otherwise left alone.
func (s *ComplaintService) Update(ctx context.Context, caller access.Caller, id string, req models.UpdateComplaintRequest) (*models.ComplaintView, error) {
	if err := access.Check(caller, access.OpUpdateComplaint); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	complaint, err := s.store.Complaints().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "complaint")
	}

	from := complaint.Status
	if req.Status != nil {
		to := models.ComplaintStatus(*req.Status)
		if to == models.ComplaintStatusResolved && from != models.ComplaintStatusResolved {
			now := s.now()
			complaint.ResolvedAt = &now
		}
		complaint.Status = to
	}
	if req.Resolution != nil {
		complaint.Resolution = strings.TrimSpace(*req.Resolution)
	}
	if req.Category != nil {
		complaint.Category = models.ComplaintCategory(*req.Category)
	}

	if err := s.store.Complaints().Update(ctx, complaint); err != nil {
		return nil, storeError(err, "complaint")
	}

	if complaint.Status != from {
		s.logger.WithFields(logrus.Fields{
			"complaint_id": complaint.ID,
			"from":         from,
			"to":           complaint.Status,
		}).Info("Complaint status changed")
	}

	views, err := s.hydrate(ctx, []models.Complaint{*complaint})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ComplaintService) hydrate(ctx context.Context, complaints []models.Complaint) ([]models.ComplaintView, error) {
	tenantIDs := make([]string, 0, len(complaints))
	roomIDs := make([]string, 0, len(complaints))
	for _, c := range complaints {
		tenantIDs = append(tenantIDs, c.TenantID)
		roomIDs = append(roomIDs, c.RoomID)
	}

	users, err := loadUsers(ctx, s.store, tenantIDs)
	if err != nil {
		return nil, err
	}
	rooms, err := loadRooms(ctx, s.store, roomIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ComplaintView, len(complaints))
	for i, c := range complaints {
		views[i] = models.ComplaintView{
			Complaint: c,
			Tenant:    users[c.TenantID].Summary(),
			Room:      rooms[c.RoomID],
		}
	}
	return views, nil
}
