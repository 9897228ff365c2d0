package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables and indexes if they do not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Tables lists the application tables in dependency order, children first
var Tables = []string{"audit_logs", "advertisements", "visitors", "complaints", "bookings", "rooms", "users"}
