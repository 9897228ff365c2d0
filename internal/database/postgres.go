package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore implements Store on PostgreSQL
type PostgresStore struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

// NewPostgresStore creates a store backed by db
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, ext: db}
}

func (s *PostgresStore) Users() UserRepository { return &userRepository{db: s.ext} }
func (s *PostgresStore) Rooms() RoomRepository { return &roomRepository{db: s.ext} }
func (s *PostgresStore) Bookings() BookingRepository { return &bookingRepository{db: s.ext} }
func (s *PostgresStore) Complaints() ComplaintRepository { return &complaintRepository{db: s.ext} }
func (s *PostgresStore) Visitors() VisitorRepository { return &visitorRepository{db: s.ext} }
func (s *PostgresStore) Advertisements() AdvertisementRepository { return &advertisementRepository{db: s.ext} }
func (s *PostgresStore) AuditLogs() AuditLogRepository { return &auditLogRepository{db: s.ext} }

// InTx runs fn inside a database transaction
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&PostgresStore{db: s.db, ext: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// whereClause accumulates SQL conditions and their positional arguments
type whereClause struct {
	conditions []string
	args       []interface{}
}

// add appends a condition. Each "?" in expr is replaced by the next $n placeholder.
func (w *whereClause) add(expr string, args ...interface{}) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		expr = strings.Replace(expr, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conditions = append(w.conditions, expr)
}

func (w *whereClause) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// addCondition renders a parsed comparison filter against the mapped column
func (w *whereClause) addCondition(cond query.Condition, columns map[string]string) error {
	column, ok := columns[cond.Field]
	if !ok {
		return fmt.Errorf("unsupported filter field: %s", cond.Field)
	}

	switch cond.Op {
	case query.OpEq:
		w.add(column+" = ?", cond.Values[0])
	case query.OpGt:
		w.add(column+" > ?", cond.Values[0])
	case query.OpGte:
		w.add(column+" >= ?", cond.Values[0])
	case query.OpLt:
		w.add(column+" < ?", cond.Values[0])
	case query.OpLte:
		w.add(column+" <= ?", cond.Values[0])
	case query.OpIn:
		placeholders := make([]string, len(cond.Values))
		for i := range placeholders {
			placeholders[i] = "?"
		}
		w.add(column+" IN ("+strings.Join(placeholders, ", ")+")", cond.Values...)
	default:
		return fmt.Errorf("unsupported filter operator: %s", cond.Op)
	}
	return nil
}

// orderBy renders an ORDER BY clause, ignoring fields without a column mapping
func orderBy(sort []query.SortField, columns map[string]string) string {
	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		column, ok := columns[s.Field]
		if !ok {
			continue
		}
		if s.Desc {
			parts = append(parts, column+" DESC")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// limitOffset renders LIMIT/OFFSET for a page, appending its arguments to w
func limitOffset(page *query.Page, w *whereClause) string {
	if page == nil {
		return ""
	}
	w.args = append(w.args, page.Limit, page.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func count(ctx context.Context, db sqlx.QueryerContext, table string, where *whereClause) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, db, &n, "SELECT COUNT(*) FROM "+table+where.String(), where.args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, translateError(err))
	}
	return n, nil
}

func execAffectingOne(ctx context.Context, db sqlx.ExecerContext, q string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return translateError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// textArray encodes a string slice for a NOT NULL TEXT[] column
func textArray(values []string) interface{} {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}
