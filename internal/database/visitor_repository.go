package database

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const visitorColumns = `id, name, id_number, phone, tenant_id, check_in_time, expected_check_out_time,
	actual_check_out_time, purpose, status, registered_by, created_at, updated_at`

var visitorFieldColumns = map[string]string{
	"checkInTime":          "check_in_time",
	"expectedCheckOutTime": "expected_check_out_time",
	"name":                 "name",
	"status":               "status",
	"createdAt":            "created_at",
}

type visitorRepository struct {
	db sqlx.ExtContext
}

// NewVisitorRepository creates a visitor repository on db or a transaction
func NewVisitorRepository(db sqlx.ExtContext) VisitorRepository {
	return &visitorRepository{db: db}
}

// Create inserts a new visitor record
func (r *visitorRepository) Create(ctx context.Context, visitor *models.Visitor) error {
	query := `
		INSERT INTO visitors (
			id, name, id_number, phone, tenant_id, check_in_time, expected_check_out_time,
			actual_check_out_time, purpose, status, registered_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		visitor.ID, visitor.Name, visitor.IDNumber, visitor.Phone, visitor.TenantID,
		visitor.CheckInTime, visitor.ExpectedCheckOutTime, visitor.ActualCheckOutTime,
		visitor.Purpose, visitor.Status, visitor.RegisteredByID,
	).Scan(&visitor.CreatedAt, &visitor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create visitor: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a visitor by ID
func (r *visitorRepository) GetByID(ctx context.Context, id string) (*models.Visitor, error) {
	var visitor models.Visitor
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &visitor, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch visitor: %w", translateError(err))
	}
	return &visitor, nil
}

func (r *visitorRepository) where(filter models.VisitorFilter) *whereClause {
	where := &whereClause{}
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.TenantID != "" {
		where.add("tenant_id::text = ?", filter.TenantID)
	}
	if filter.From != nil {
		where.add("check_in_time >= ?", *filter.From)
	}
	if filter.To != nil {
		where.add("check_in_time <= ?", *filter.To)
	}
	if filter.OverdueAt != nil {
		where.add("status = 'checked-in' AND expected_check_out_time < ?", *filter.OverdueAt)
	}
	return where
}

// List returns the visitors matching filter
func (r *visitorRepository) List(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error) {
	where := r.where(filter)
	query := `SELECT ` + visitorColumns + ` FROM visitors` + where.String() +
		orderBy(filter.Sort, visitorFieldColumns) + limitOffset(filter.Page, where)

	visitors := []models.Visitor{}
	if err := sqlx.SelectContext(ctx, r.db, &visitors, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", translateError(err))
	}
	return visitors, nil
}

// Count returns the number of visitors matching filter, ignoring paging
func (r *visitorRepository) Count(ctx context.Context, filter models.VisitorFilter) (int, error) {
	return count(ctx, r.db, "visitors", r.where(filter))
}

// Update writes the checkout fields of a visitor
func (r *visitorRepository) Update(ctx context.Context, visitor *models.Visitor) error {
	query := `
		UPDATE visitors
		SET status = $2, actual_check_out_time = $3, expected_check_out_time = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		visitor.ID, visitor.Status, visitor.ActualCheckOutTime, visitor.ExpectedCheckOutTime,
	).Scan(&visitor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update visitor: %w", translateError(err))
	}
	return nil
}
