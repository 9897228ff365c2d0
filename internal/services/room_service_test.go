package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestCreateRoomDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	service := NewRoomService(store, nil, testLogger())

	room, err := service.Create(ctx, matron, models.CreateRoomRequest{
		RoomNumber: " R101 ",
		Floor:      intPtr(1),
		Price:      floatPtr(100),
		Amenities:  []string{"wifi, desk", "fan"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "R101", room.RoomNumber)
	assert.Equal(t, 1, room.Capacity)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)
	assert.Equal(t, []string{models.DefaultRoomImage}, []string(room.Images))
	assert.Equal(t, []string{"wifi", "desk", "fan"}, []string(room.Amenities))

	_, err = service.Create(ctx, matron, models.CreateRoomRequest{RoomNumber: "R101", Floor: intPtr(2), Price: floatPtr(90)}, nil)
	assertKind(t, err, apperror.KindConflict)

	_, err = service.Create(ctx, matron, models.CreateRoomRequest{RoomNumber: "R102", Floor: intPtr(1), Price: floatPtr(90), Status: "occupied"}, nil)
	assertKind(t, err, apperror.KindValidationFailed)

	_, err = service.Create(ctx, tenantA, models.CreateRoomRequest{RoomNumber: "R103", Floor: intPtr(1), Price: floatPtr(90)}, nil)
	assertKind(t, err, apperror.KindForbidden)
}

func TestRoomStatusLockedWhileBooked(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedRoom(t, store, "room-101", "R101", 100)
	rooms := NewRoomService(store, nil, testLogger())
	bookings := NewBookingService(store, 24, testLogger())

	booking, err := bookings.Create(ctx, tenantA, newBookingRequest("room-101", 1))
	require.NoError(t, err)

	_, err = rooms.Update(ctx, matron, "room-101", models.UpdateRoomRequest{Status: strPtr("maintenance")}, nil)
	assertKind(t, err, apperror.KindInvalidState)

	err = rooms.Delete(ctx, matron, "room-101")
	assertKind(t, err, apperror.KindInvalidState)

	updated, err := rooms.Update(ctx, matron, "room-101", models.UpdateRoomRequest{Price: floatPtr(120)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, models.RoomStatusOccupied, updated.Status)

	_, err = bookings.Update(ctx, matron, booking.ID, updateStatus("cancelled"))
	require.NoError(t, err)

	updated, err = rooms.Update(ctx, matron, "room-101", models.UpdateRoomRequest{Status: strPtr("maintenance")}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusMaintenance, updated.Status)

	_, err = bookings.Create(ctx, tenantB, newBookingRequest("room-101", 1))
	assertKind(t, err, apperror.KindInvalidState)

	_, err = rooms.Update(ctx, matron, "room-101", models.UpdateRoomRequest{Status: strPtr("occupied")}, nil)
	assertKind(t, err, apperror.KindValidationFailed)

	require.NoError(t, rooms.Delete(ctx, matron, "room-101"))
	_, err = rooms.Get(ctx, anon, "room-101")
	assertKind(t, err, apperror.KindNotFound)
}

func TestUpdateRoomImages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedRoom(t, store, "room-101", "R101", 100)
	files := &fakeFiles{}
	service := NewRoomService(store, files, testLogger())

	room, err := service.Update(ctx, matron, "room-101", models.UpdateRoomRequest{}, []string{"a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, []string(room.Images))

	room, err = service.Update(ctx, matron, "room-101", models.UpdateRoomRequest{}, []string{"b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, []string(room.Images))

	room, err = service.Update(ctx, matron, "room-101", models.UpdateRoomRequest{KeepExistingImages: boolPtr(false)}, []string{"c.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c.jpg"}, []string(room.Images))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, files.deleted)

	require.NoError(t, service.Delete(ctx, matron, "room-101"))
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, files.deleted)
}

func TestListRoomsPagination(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for i := 1; i <= 25; i++ {
		seedRoom(t, store, fmt.Sprintf("room-%02d", i), fmt.Sprintf("R%03d", i), float64(i*10))
	}
	service := NewRoomService(store, nil, testLogger())

	tests := []struct {
		page     int
		items    int
		next     *query.PageRef
		previous *query.PageRef
	}{
		{1, 10, &query.PageRef{Page: 2, Limit: 10}, nil},
		{2, 10, &query.PageRef{Page: 3, Limit: 10}, &query.PageRef{Page: 1, Limit: 10}},
		{3, 5, nil, &query.PageRef{Page: 2, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			result, err := service.List(ctx, anon, models.RoomFilter{Page: &query.Page{Number: tt.page, Limit: 10}})
			require.NoError(t, err)
			assert.Equal(t, 25, result.Total)
			assert.Len(t, result.Items, tt.items)

			pagination := result.Pagination()
			assert.Equal(t, tt.next, pagination.Next)
			assert.Equal(t, tt.previous, pagination.Prev)
		})
	}
}

func TestListRoomsPageBeyondRange(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedRoom(t, store, "room-101", "R101", 100)
	service := NewRoomService(store, nil, testLogger())

	page := query.ParsePage("1844674407370955162", "10")
	result, err := service.List(ctx, anon, models.RoomFilter{Page: &page})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Empty(t, result.Items)
	assert.Nil(t, result.Pagination().Next)
}

func TestListRoomsFiltered(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for i := 1; i <= 5; i++ {
		seedRoom(t, store, fmt.Sprintf("room-%d", i), fmt.Sprintf("R%d", i), float64(i*100))
	}
	service := NewRoomService(store, nil, testLogger())

	conditions, err := query.ParseConditions(map[string][]string{"price[gte]": {"300"}}, models.RoomFilterFields)
	require.NoError(t, err)

	result, err := service.List(ctx, anon, models.RoomFilter{
		Conditions: conditions,
		Sort:       []query.SortField{{Field: "price"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "R3", result.Items[0].RoomNumber)
	assert.Equal(t, "R5", result.Items[2].RoomNumber)
}

func TestMergeImages(t *testing.T) {
	tests := []struct {
		name        string
		current     []string
		uploads     []string
		keep        *bool
		wantMerged  []string
		wantRemoved []string
	}{
		{"no uploads keeps images", []string{"a"}, nil, boolPtr(false), []string{"a"}, nil},
		{"append by default", []string{"a"}, []string{"b"}, nil, []string{"a", "b"}, nil},
		{"placeholder dropped", []string{"default-room.jpg"}, []string{"b"}, nil, []string{"b"}, nil},
		{"replace", []string{"a", "default-room.jpg"}, []string{"b"}, boolPtr(false), []string{"b"}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, removed := mergeImages(tt.current, tt.uploads, tt.keep, models.DefaultRoomImage)
			assert.Equal(t, tt.wantMerged, merged)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}
