package services

import (
	"errors"

	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/database"
)

// storeError classifies a repository error. Errors that already carry a kind
// pass through unchanged.
func storeError(err error, resource string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, database.ErrNotFound):
		return apperror.NotFound(resource + " not found")
	case errors.Is(err, database.ErrRoomHeld):
		return apperror.InvalidState(msgRoomUnavailable)
	case errors.Is(err, database.ErrDuplicate):
		return apperror.Wrap(apperror.KindConflict, resource+" already exists", err)
	default:
		return apperror.Internal("Failed to access "+resource, err)
	}
}

const msgRoomUnavailable = "room is not available for booking"
