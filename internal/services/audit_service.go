package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Audit actions
const (
	ActionRegister           = "register"
	ActionLogin              = "login"
	ActionLoginFailed        = "login_failed"
	ActionTokenRefresh       = "token_refresh"
	ActionTokenRefreshFailed = "token_refresh_failed"
	ActionPasswordChange     = "password_change"
	ActionRateLimitViolation = "rate_limit_violation"
	ActionBookingCreated     = "booking_created"
	ActionBookingUpdated     = "booking_updated"
	ActionBookingDeleted     = "booking_deleted"
	ActionRoomDeleted        = "room_deleted"
	ActionComplaintUpdated   = "complaint_updated"
	ActionVisitorCheckedOut  = "visitor_checked_out"
	ActionVisitorOverstay    = "visitor_overstay"
	ActionAdDeleted          = "advertisement_deleted"
)

// retainedActions are stored even when audit logging is disabled. The login
// rate limit and the overstay monitor count them.
var retainedActions = map[string]bool{
	ActionLoginFailed:     true,
	ActionVisitorOverstay: true,
}

// RequestMeta identifies the client behind an audited action
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEvent represents a security or lifecycle event to be logged
type AuditEvent struct {
	UserID     string                 // empty for pre-authentication events
	Action     string                 // e.g. "login", "booking_created"
	EntityType string                 // e.g. "user", "booking"
	EntityID   string                 // id of the affected entity, or the login email
	Details    map[string]interface{} // stored as JSONB
}

// AuditService handles audit logging for security and lifecycle events
type AuditService struct {
	logs    database.AuditLogRepository
	logger  *logrus.Logger
	enabled bool
}

// NewAuditService creates a new audit service. A disabled service drops every
// event except the retained actions.
func NewAuditService(logs database.AuditLogRepository, logger *logrus.Logger, enabled bool) *AuditService {
	return &AuditService{
		logs:    logs,
		logger:  logger,
		enabled: enabled,
	}
}

// Log writes an event to the audit log
func (s *AuditService) Log(ctx context.Context, meta RequestMeta, event AuditEvent) error {
	if s == nil || (!s.enabled && !retainedActions[event.Action]) {
		return nil
	}

	details := event.Details
	if details == nil {
		details = make(map[string]interface{})
	}
	if meta.UserAgent != "" {
		details["deviceInfo"] = utils.ParseUserAgent(meta.UserAgent)
	}

	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	entry := &models.AuditLog{
		ID:         uuid.New().String(),
		UserID:     optional(event.UserID),
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   optional(event.EntityID),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details:    raw,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

// SafeLog writes an event and only logs a failure, so auditing never fails a request
func (s *AuditService) SafeLog(ctx context.Context, meta RequestMeta, event AuditEvent) {
	if err := s.Log(ctx, meta, event); err != nil {
		s.logger.WithError(err).WithField("action", event.Action).Error("Audit log write failed")
	}
}

// LogLogin logs a successful login
func (s *AuditService) LogLogin(ctx context.Context, meta RequestMeta, user *models.User) {
	s.SafeLog(ctx, meta, AuditEvent{
		UserID:     user.ID,
		Action:     ActionLogin,
		EntityType: "user",
		EntityID:   user.ID,
		Details:    map[string]interface{}{"role": user.Role},
	})
}

// LogLoginFailed logs a rejected login. The email is the entity so failures can be counted per account.
func (s *AuditService) LogLoginFailed(ctx context.Context, meta RequestMeta, email, reason string) {
	s.SafeLog(ctx, meta, AuditEvent{
		Action:     ActionLoginFailed,
		EntityType: "user",
		EntityID:   email,
		Details:    map[string]interface{}{"reason": reason},
	})
}

// LogRateLimitViolation logs a request rejected by the login rate limit
func (s *AuditService) LogRateLimitViolation(ctx context.Context, meta RequestMeta, email string, retryAfter time.Time) {
	s.SafeLog(ctx, meta, AuditEvent{
		Action:     ActionRateLimitViolation,
		EntityType: "rate_limit",
		EntityID:   email,
		Details:    map[string]interface{}{"retryAfter": retryAfter},
	})
}

// LogEntityEvent logs a lifecycle change made by an authenticated user
func (s *AuditService) LogEntityEvent(ctx context.Context, meta RequestMeta, userID, action, entityType, entityID string, details map[string]interface{}) {
	s.SafeLog(ctx, meta, AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// HasEvent reports whether an action was already recorded for an entity
func (s *AuditService) HasEvent(ctx context.Context, action, entityID string) (bool, error) {
	if s == nil {
		return false, nil
	}
	n, err := s.logs.Count(ctx, models.AuditLogFilter{Action: action, EntityID: entityID})
	if err != nil {
		return false, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n > 0, nil
}
