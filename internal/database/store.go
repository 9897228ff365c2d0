package database

import (
	"context"

	"github.com/hostelhub/hostel-backend/internal/models"
)

// UserRepository persists user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// RoomRepository persists rooms
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id string) (*models.Room, error)
	// GetByIDForUpdate reads a room and locks it until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*models.Room, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Room, error)
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	Count(ctx context.Context, filter models.RoomFilter) (int, error)
	Update(ctx context.Context, room *models.Room) error
	UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error
	Delete(ctx context.Context, id string) error
}

// BookingRepository persists bookings
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	Count(ctx context.Context, filter models.BookingFilter) (int, error)
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
}

// ComplaintRepository persists complaints
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	Count(ctx context.Context, filter models.ComplaintFilter) (int, error)
	Update(ctx context.Context, complaint *models.Complaint) error
}

// VisitorRepository persists visitor check-ins
type VisitorRepository interface {
	Create(ctx context.Context, visitor *models.Visitor) error
	GetByID(ctx context.Context, id string) (*models.Visitor, error)
	List(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error)
	Count(ctx context.Context, filter models.VisitorFilter) (int, error)
	Update(ctx context.Context, visitor *models.Visitor) error
}

// AdvertisementRepository persists classified ads
type AdvertisementRepository interface {
	Create(ctx context.Context, ad *models.Advertisement) error
	GetByID(ctx context.Context, id string) (*models.Advertisement, error)
	List(ctx context.Context, filter models.AdvertisementFilter) ([]models.Advertisement, error)
	Count(ctx context.Context, filter models.AdvertisementFilter) (int, error)
	Update(ctx context.Context, ad *models.Advertisement) error
	Delete(ctx context.Context, id string) error
}

// AuditLogRepository persists audit events
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	Count(ctx context.Context, filter models.AuditLogFilter) (int, error)
}

// Store groups the repositories behind one transactional boundary.
//
// Repositories return ErrNotFound when a record is missing and ErrDuplicate
// on unique key collisions.
type Store interface {
	Users() UserRepository
	Rooms() RoomRepository
	Bookings() BookingRepository
	Complaints() ComplaintRepository
	Visitors() VisitorRepository
	Advertisements() AdvertisementRepository
	AuditLogs() AuditLogRepository

	// InTx runs fn against a transactional view of the store. The transaction
	// commits when fn returns nil and rolls back otherwise. Nested calls reuse
	// the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
