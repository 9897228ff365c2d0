package database

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const complaintColumns = `id, tenant_id, room_id, category, description, status, images, resolution, resolved_at, created_at, updated_at`

var complaintFieldColumns = map[string]string{
	"createdAt":  "created_at",
	"status":     "status",
	"category":   "category",
	"resolvedAt": "resolved_at",
}

type complaintRepository struct {
	db sqlx.ExtContext
}

// NewComplaintRepository creates a complaint repository on db or a transaction
func NewComplaintRepository(db sqlx.ExtContext) ComplaintRepository {
	return &complaintRepository{db: db}
}

// Create inserts a new complaint
func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	query := `
		INSERT INTO complaints (id, tenant_id, room_id, category, description, status, images, resolution, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		complaint.ID, complaint.TenantID, complaint.RoomID, complaint.Category, complaint.Description,
		complaint.Status, textArray(complaint.Images), complaint.Resolution, complaint.ResolvedAt,
	).Scan(&complaint.CreatedAt, &complaint.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a complaint by ID
func (r *complaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &complaint, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch complaint: %w", translateError(err))
	}
	return &complaint, nil
}

func (r *complaintRepository) where(filter models.ComplaintFilter) *whereClause {
	where := &whereClause{}
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.Category != "" {
		where.add("category = ?", filter.Category)
	}
	if filter.TenantID != "" {
		where.add("tenant_id::text = ?", filter.TenantID)
	}
	return where
}

// List returns the complaints matching filter
func (r *complaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	where := r.where(filter)
	query := `SELECT ` + complaintColumns + ` FROM complaints` + where.String() +
		orderBy(filter.Sort, complaintFieldColumns) + limitOffset(filter.Page, where)

	complaints := []models.Complaint{}
	if err := sqlx.SelectContext(ctx, r.db, &complaints, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", translateError(err))
	}
	return complaints, nil
}

// Count returns the number of complaints matching filter, ignoring paging
func (r *complaintRepository) Count(ctx context.Context, filter models.ComplaintFilter) (int, error) {
	return count(ctx, r.db, "complaints", r.where(filter))
}

// Update writes the editable complaint fields
func (r *complaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	query := `
		UPDATE complaints
		SET category = $2, status = $3, resolution = $4, resolved_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		complaint.ID, complaint.Category, complaint.Status, complaint.Resolution, complaint.ResolvedAt,
	).Scan(&complaint.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", translateError(err))
	}
	return nil
}
