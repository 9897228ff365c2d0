package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrRoomHeld is returned when a second active booking is written for a room
	ErrRoomHeld = errors.New("room already has an active booking")
)

const (
	pqUniqueViolation      = "23505"
	pqInvalidTextRepresent = "22P02"

	activeBookingIndex = "bookings_one_active_per_room"
)

// translateError maps driver errors onto the package sentinels. A malformed
// UUID can never match a row, so it reads as not found.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == activeBookingIndex {
				return ErrRoomHeld
			}
			return ErrDuplicate
		case pqInvalidTextRepresent:
			return ErrNotFound
		}
	}
	return err
}
