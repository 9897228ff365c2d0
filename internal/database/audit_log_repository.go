package database

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

type auditLogRepository struct {
	db sqlx.ExtContext
}

// NewAuditLogRepository creates an audit log repository on db or a transaction
func NewAuditLogRepository(db sqlx.ExtContext) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create inserts an audit event
func (r *auditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	details := "{}"
	if len(log.Details) > 0 {
		details = string(log.Details)
	}

	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		log.ID, log.UserID, log.Action, log.EntityType, log.EntityID,
		log.IPAddress, log.UserAgent, details,
	).Scan(&log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", translateError(err))
	}
	return nil
}

// Count returns the number of audit events matching filter
func (r *auditLogRepository) Count(ctx context.Context, filter models.AuditLogFilter) (int, error) {
	where := &whereClause{}
	if filter.Action != "" {
		where.add("action = ?", filter.Action)
	}
	if filter.EntityID != "" {
		where.add("entity_id = ?", filter.EntityID)
	}
	if filter.IPAddress != "" {
		where.add("ip_address = ?", filter.IPAddress)
	}
	if !filter.Since.IsZero() {
		where.add("created_at >= ?", filter.Since)
	}
	return count(ctx, r.db, "audit_logs", where)
}
