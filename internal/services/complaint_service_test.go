package services

import (
	"context"
	"testing"
	"time"

	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplaintResolvedAtStampedOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedRoom(t, store, "room-101", "R101", 100)
	service := NewComplaintService(store, testLogger())

	clock := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return clock }

	complaint, err := service.Create(ctx, tenantA, models.CreateComplaintRequest{
		RoomID:      "room-101",
		Category:    "plumbing",
		Description: "Leaking tap",
	}, []string{"tap.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintStatusPending, complaint.Status)
	assert.Nil(t, complaint.ResolvedAt)
	assert.Equal(t, "Alice", complaint.Tenant.Name)
	assert.Equal(t, "R101", complaint.Room.RoomNumber)

	resolved, err := service.Update(ctx, matron, complaint.ID, models.UpdateComplaintRequest{
		Status:     strPtr("resolved"),
		Resolution: strPtr("Washer replaced"),
	})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(clock))
	assert.Equal(t, "Washer replaced", resolved.Resolution)

	clock = clock.Add(time.Hour)
	again, err := service.Update(ctx, matron, complaint.ID, models.UpdateComplaintRequest{Status: strPtr("resolved")})
	require.NoError(t, err)
	require.NotNil(t, again.ResolvedAt)
	assert.True(t, again.ResolvedAt.Equal(clock.Add(-time.Hour)))

	reopened, err := service.Update(ctx, matron, complaint.ID, models.UpdateComplaintRequest{Status: strPtr("in-progress")})
	require.NoError(t, err)
	require.NotNil(t, reopened.ResolvedAt)
	assert.True(t, reopened.ResolvedAt.Equal(clock.Add(-time.Hour)))

	resolvedAgain, err := service.Update(ctx, matron, complaint.ID, models.UpdateComplaintRequest{Status: strPtr("resolved")})
	require.NoError(t, err)
	assert.True(t, resolvedAgain.ResolvedAt.Equal(clock))
}

func TestComplaintAccess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedRoom(t, store, "room-101", "R101", 100)
	service := NewComplaintService(store, testLogger())

	_, err := service.Create(ctx, tenantA, models.CreateComplaintRequest{RoomID: "missing", Category: "water", Description: "No water"}, nil)
	assertKind(t, err, apperror.KindNotFound)

	_, err = service.Create(ctx, tenantA, models.CreateComplaintRequest{RoomID: "room-101", Category: "noise", Description: "Loud"}, nil)
	assertKind(t, err, apperror.KindValidationFailed)

	_, err = service.Create(ctx, matron, models.CreateComplaintRequest{RoomID: "room-101", Category: "water", Description: "No water"}, nil)
	assertKind(t, err, apperror.KindForbidden)

	complaint, err := service.Create(ctx, tenantA, models.CreateComplaintRequest{RoomID: "room-101", Category: "water", Description: "No water"}, nil)
	require.NoError(t, err)

	_, err = service.Get(ctx, tenantB, complaint.ID)
	assertKind(t, err, apperror.KindForbidden)

	_, err = service.Get(ctx, tenantA, complaint.ID)
	require.NoError(t, err)

	_, err = service.Update(ctx, tenantA, complaint.ID, models.UpdateComplaintRequest{Status: strPtr("resolved")})
	assertKind(t, err, apperror.KindForbidden)

	_, err = service.List(ctx, tenantA, models.ComplaintFilter{})
	assertKind(t, err, apperror.KindForbidden)

	all, err := service.List(ctx, matron, models.ComplaintFilter{Category: models.ComplaintCategoryWater})
	require.NoError(t, err)
	assert.Equal(t, 1, all.Total)

	mine, err := service.ListMine(ctx, tenantB)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
