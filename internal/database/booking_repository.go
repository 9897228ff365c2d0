package database

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, room_id, tenant_id, check_in_date, duration, status, payment_status, total_amount, created_at, updated_at`

var bookingFieldColumns = map[string]string{
	"createdAt":   "created_at",
	"checkInDate": "check_in_date",
	"duration":    "duration",
	"totalAmount": "total_amount",
	"status":      "status",
}

type bookingRepository struct {
	db sqlx.ExtContext
}

// NewBookingRepository creates a booking repository on db or a transaction
func NewBookingRepository(db sqlx.ExtContext) BookingRepository {
	return &bookingRepository{db: db}
}

// Create inserts a new booking
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, room_id, tenant_id, check_in_date, duration, status, payment_status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		booking.ID, booking.RoomID, booking.TenantID, booking.CheckInDate, booking.Duration,
		booking.Status, booking.PaymentStatus, booking.TotalAmount,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a booking by ID
func (r *bookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &booking, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", translateError(err))
	}
	return &booking, nil
}

func (r *bookingRepository) where(filter models.BookingFilter) *whereClause {
	where := &whereClause{}
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.RoomID != "" {
		where.add("room_id::text = ?", filter.RoomID)
	}
	if filter.TenantID != "" {
		where.add("tenant_id::text = ?", filter.TenantID)
	}
	if filter.ActiveOnly {
		where.add("status IN ('pending', 'confirmed')")
	}
	return where
}

// List returns the bookings matching filter
func (r *bookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	where := r.where(filter)
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where.String() +
		orderBy(filter.Sort, bookingFieldColumns) + limitOffset(filter.Page, where)

	bookings := []models.Booking{}
	if err := sqlx.SelectContext(ctx, r.db, &bookings, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", translateError(err))
	}
	return bookings, nil
}

// Count returns the number of bookings matching filter, ignoring paging
func (r *bookingRepository) Count(ctx context.Context, filter models.BookingFilter) (int, error) {
	return count(ctx, r.db, "bookings", r.where(filter))
}

// Update writes the booking status fields
func (r *bookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, booking.ID, booking.Status, booking.PaymentStatus).
		Scan(&booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", translateError(err))
	}
	return nil
}

// Delete removes a booking
func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	if err := execAffectingOne(ctx, r.db, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}
