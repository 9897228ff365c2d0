package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE rooms SET status`).
			WithArgs("room-1", models.RoomStatusOccupied).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.InTx(ctx, func(tx Store) error {
			return tx.Rooms().UpdateStatus(ctx, "room-1", models.RoomStatusOccupied)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback On Error", func(t *testing.T) {
		store, mock := newMockStore(t)
		failure := errors.New("room is not available for booking")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := store.InTx(ctx, func(tx Store) error {
			return failure
		})
		assert.ErrorIs(t, err, failure)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nested Calls Share Transaction", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := store.InTx(ctx, func(tx Store) error {
			return tx.InTx(ctx, func(inner Store) error {
				assert.Same(t, tx, inner)
				return nil
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))
	assert.ErrorIs(t, translateError(&pq.Error{Code: "23505", Constraint: "users_email_key"}), ErrDuplicate)
	assert.ErrorIs(t, translateError(&pq.Error{Code: "23505", Constraint: activeBookingIndex}), ErrRoomHeld)
	assert.ErrorIs(t, translateError(&pq.Error{Code: "22P02"}), ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}
