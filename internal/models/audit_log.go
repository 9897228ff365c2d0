package models

import (
	"encoding/json"
	"time"
)

// AuditLog records a security or lifecycle event
type AuditLog struct {
	ID         string          `json:"id" db:"id"`
	UserID     *string         `json:"userId,omitempty" db:"user_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entityType" db:"entity_type"`
	EntityID   *string         `json:"entityId,omitempty" db:"entity_id"`
	IPAddress  string          `json:"ipAddress" db:"ip_address"`
	UserAgent  string          `json:"userAgent" db:"user_agent"`
	Details    json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// AuditLogFilter narrows audit log counts
type AuditLogFilter struct {
	Action    string
	IPAddress string
	EntityID  string
	Since     time.Time
}
