package database

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const roomColumns = `id, room_number, floor, capacity, price, status, amenities, images, description, created_at, updated_at`

// roomFieldColumns maps API field names to columns for filters and sorting
var roomFieldColumns = map[string]string{
	"roomNumber": "room_number",
	"floor":      "floor",
	"capacity":   "capacity",
	"price":      "price",
	"status":     "status",
	"createdAt":  "created_at",
}

type roomRepository struct {
	db sqlx.ExtContext
}

// NewRoomRepository creates a room repository on db or a transaction
func NewRoomRepository(db sqlx.ExtContext) RoomRepository {
	return &roomRepository{db: db}
}

// Create inserts a new room
func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (id, room_number, floor, capacity, price, status, amenities, images, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		room.ID, room.RoomNumber, room.Floor, room.Capacity, room.Price, room.Status,
		textArray(room.Amenities), textArray(room.Images), room.Description,
	).Scan(&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a room by ID
func (r *roomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	return r.get(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a room by ID holding a row lock
func (r *roomRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Room, error) {
	return r.get(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id)
}

func (r *roomRepository) get(ctx context.Context, query, id string) (*models.Room, error) {
	var room models.Room
	if err := sqlx.GetContext(ctx, r.db, &room, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", translateError(err))
	}
	return &room, nil
}

// GetByIDs retrieves rooms keyed by ID. Unknown IDs are skipped.
func (r *roomRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Room, error) {
	result := make(map[string]*models.Room, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rooms []models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ANY($1::uuid[])`
	if err := sqlx.SelectContext(ctx, r.db, &rooms, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", translateError(err))
	}

	for i := range rooms {
		result[rooms[i].ID] = &rooms[i]
	}
	return result, nil
}

func (r *roomRepository) where(filter models.RoomFilter) (*whereClause, error) {
	where := &whereClause{}
	for _, cond := range filter.Conditions {
		if err := where.addCondition(cond, roomFieldColumns); err != nil {
			return nil, err
		}
	}
	return where, nil
}

// List returns the rooms matching filter
func (r *roomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	where, err := r.where(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + roomColumns + ` FROM rooms` + where.String() +
		orderBy(filter.Sort, roomFieldColumns) + limitOffset(filter.Page, where)

	rooms := []models.Room{}
	if err := sqlx.SelectContext(ctx, r.db, &rooms, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", translateError(err))
	}
	return rooms, nil
}

// Count returns the number of rooms matching filter, ignoring paging
func (r *roomRepository) Count(ctx context.Context, filter models.RoomFilter) (int, error) {
	where, err := r.where(filter)
	if err != nil {
		return 0, err
	}
	return count(ctx, r.db, "rooms", where)
}

// Update writes every mutable room field
func (r *roomRepository) Update(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms
		SET room_number = $2, floor = $3, capacity = $4, price = $5, status = $6,
			amenities = $7, images = $8, description = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		room.ID, room.RoomNumber, room.Floor, room.Capacity, room.Price, room.Status,
		textArray(room.Amenities), textArray(room.Images), room.Description,
	).Scan(&room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", translateError(err))
	}
	return nil
}

// UpdateStatus sets the availability of a room
func (r *roomRepository) UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error {
	query := `UPDATE rooms SET status = $2, updated_at = NOW() WHERE id = $1`
	if err := execAffectingOne(ctx, r.db, query, id, status); err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	return nil
}

// Delete removes a room together with its bookings and complaints
func (r *roomRepository) Delete(ctx context.Context, id string) error {
	if err := execAffectingOne(ctx, r.db, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}
