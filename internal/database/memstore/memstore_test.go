package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoom(t *testing.T, s *Store, id, number string, price float64) *models.Room {
	t.Helper()
	room := &models.Room{
		ID:         id,
		RoomNumber: number,
		Floor:      1,
		Capacity:   1,
		Price:      price,
		Status:     models.RoomStatusAvailable,
		Images:     []string{models.DefaultRoomImage},
	}
	require.NoError(t, s.Rooms().Create(context.Background(), room))
	return room
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedRoom(t, s, "room-1", "R101", 100)

	failure := errors.New("boom")
	err := s.InTx(ctx, func(tx database.Store) error {
		require.NoError(t, tx.Rooms().UpdateStatus(ctx, "room-1", models.RoomStatusOccupied))
		require.NoError(t, tx.Bookings().Create(ctx, &models.Booking{
			ID: "booking-1", RoomID: "room-1", TenantID: "tenant-1", Duration: 1,
			Status: models.BookingStatusPending, PaymentStatus: models.PaymentStatusPending,
		}))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	room, err := s.Rooms().GetByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)

	_, err = s.Bookings().GetByID(ctx, "booking-1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestInTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedRoom(t, s, "room-1", "R101", 100)

	err := s.InTx(ctx, func(tx database.Store) error {
		return tx.Rooms().UpdateStatus(ctx, "room-1", models.RoomStatusMaintenance)
	})
	require.NoError(t, err)

	room, err := s.Rooms().GetByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusMaintenance, room.Status)
}

func TestInTxSerializesWriters(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedRoom(t, s, "room-1", "R101", 100)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- s.InTx(ctx, func(tx database.Store) error {
				room, err := tx.Rooms().GetByIDForUpdate(ctx, "room-1")
				if err != nil {
					return err
				}
				if room.Status != models.RoomStatusAvailable {
					return errors.New("room is not available for booking")
				}
				if err := tx.Bookings().Create(ctx, &models.Booking{
					ID: fmt.Sprintf("booking-%d", i), RoomID: "room-1", TenantID: "tenant-1", Duration: 1,
					Status: models.BookingStatusPending, PaymentStatus: models.PaymentStatusPending,
				}); err != nil {
					return err
				}
				return tx.Rooms().UpdateStatus(ctx, "room-1", models.RoomStatusOccupied)
			})
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	n, err := s.Bookings().Count(ctx, models.BookingFilter{RoomID: "room-1", ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSecondActiveBookingRejected(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedRoom(t, s, "room-1", "R101", 100)

	active := &models.Booking{ID: "b1", RoomID: "room-1", TenantID: "t1", Duration: 1, Status: models.BookingStatusPending}
	require.NoError(t, s.Bookings().Create(ctx, active))

	err := s.Bookings().Create(ctx, &models.Booking{ID: "b2", RoomID: "room-1", TenantID: "t2", Duration: 1, Status: models.BookingStatusPending})
	assert.ErrorIs(t, err, database.ErrRoomHeld)
}

func TestRoomListFilterSortPage(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 1; i <= 25; i++ {
		seedRoom(t, s, fmt.Sprintf("room-%02d", i), fmt.Sprintf("R%03d", i), float64(i*10))
	}

	filter := models.RoomFilter{
		Conditions: []query.Condition{{Field: "price", Op: query.OpGte, Values: []any{100.0}}},
		Sort:       []query.SortField{{Field: "price", Desc: true}},
		Page:       &query.Page{Number: 2, Limit: 10},
	}

	rooms, err := s.Rooms().List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rooms, 6)
	assert.Equal(t, 150.0, rooms[0].Price)
	assert.Equal(t, 100.0, rooms[5].Price)

	total, err := s.Rooms().Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 16, total)

	empty, err := s.Rooms().List(ctx, models.RoomFilter{Page: &query.Page{Number: 9, Limit: 10}})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRoomNumberUnique(t *testing.T) {
	s := New()
	seedRoom(t, s, "room-1", "R101", 100)

	err := s.Rooms().Create(context.Background(), &models.Room{ID: "room-2", RoomNumber: "R101"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedRoom(t, s, "room-1", "R101", 100)

	room, err := s.Rooms().GetByID(ctx, "room-1")
	require.NoError(t, err)
	room.Images[0] = "changed.jpg"
	room.Status = models.RoomStatusMaintenance

	again, err := s.Rooms().GetByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRoomImage, again.Images[0])
	assert.Equal(t, models.RoomStatusAvailable, again.Status)
}

func TestDeleteRoomCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedRoom(t, s, "room-1", "R101", 100)
	require.NoError(t, s.Bookings().Create(ctx, &models.Booking{ID: "b1", RoomID: "room-1", TenantID: "t1", Status: models.BookingStatusCancelled}))

	require.NoError(t, s.Rooms().Delete(ctx, "room-1"))

	_, err := s.Bookings().GetByID(ctx, "b1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, s.Rooms().Delete(ctx, "room-1"), database.ErrNotFound)
}

func TestVisitorOverdueFilter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { return now })

	require.NoError(t, s.Visitors().Create(ctx, &models.Visitor{
		ID: "v1", TenantID: "t1", Status: models.VisitorStatusCheckedIn,
		CheckInTime: now.Add(-3 * time.Hour), ExpectedCheckOutTime: now.Add(-time.Hour),
	}))
	require.NoError(t, s.Visitors().Create(ctx, &models.Visitor{
		ID: "v2", TenantID: "t1", Status: models.VisitorStatusCheckedIn,
		CheckInTime: now.Add(-time.Hour), ExpectedCheckOutTime: now.Add(time.Hour),
	}))

	overdue, err := s.Visitors().List(ctx, models.VisitorFilter{OverdueAt: &now, Sort: models.VisitorDefaultSort})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "v1", overdue[0].ID)
}

func TestAuditLogCount(t *testing.T) {
	ctx := context.Background()
	s := New()
	email := "amaya@example.com"

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AuditLogs().Create(ctx, &models.AuditLog{ID: fmt.Sprint(i), Action: "login_failed", EntityID: &email}))
	}
	require.NoError(t, s.AuditLogs().Create(ctx, &models.AuditLog{ID: "x", Action: "login_success", EntityID: &email}))

	n, err := s.AuditLogs().Count(ctx, models.AuditLogFilter{Action: "login_failed", EntityID: email, Since: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
