package services

import (
	"context"
	"testing"
	"time"

	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVisitorService(t *testing.T) (*VisitorService, time.Time) {
	t.Helper()
	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	service := NewVisitorService(newTestStore(t), validator.NewPhoneValidator(), testLogger())
	service.now = func() time.Time { return now }
	return service, now
}

func visitorRequest(tenantID string, expected time.Time) models.CreateVisitorRequest {
	return models.CreateVisitorRequest{
		Name:                 "Carol",
		IDNumber:             "901234567V",
		Phone:                "077 123 4567",
		TenantID:             tenantID,
		ExpectedCheckOutTime: expected.Format(time.RFC3339),
		Purpose:              "Family visit",
	}
}

func TestVisitorCheckInAndCheckout(t *testing.T) {
	ctx := context.Background()
	service, now := newVisitorService(t)

	visitor, err := service.Create(ctx, matron, visitorRequest(tenantA.ID, now.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, models.VisitorStatusCheckedIn, visitor.Status)
	assert.True(t, visitor.CheckInTime.Equal(now))
	assert.Equal(t, "0771234567", visitor.Phone)
	assert.Equal(t, "Alice", visitor.Tenant.Name)
	require.NotNil(t, visitor.RegisteredBy)
	assert.Equal(t, "Mary Matron", visitor.RegisteredBy.Name)
	assert.Empty(t, visitor.RegisteredBy.Email)

	out, err := service.Checkout(ctx, matron, visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitorStatusCheckedOut, out.Status)
	require.NotNil(t, out.ActualCheckOutTime)
	assert.True(t, out.ActualCheckOutTime.Equal(now))

	_, err = service.Checkout(ctx, matron, visitor.ID)
	assertKind(t, err, apperror.KindInvalidState)
	assert.Contains(t, err.Error(), "visitor already checked out")

	_, err = service.Checkout(ctx, matron, "missing")
	assertKind(t, err, apperror.KindNotFound)
}

func TestCreateVisitorRequiresTenant(t *testing.T) {
	ctx := context.Background()
	service, now := newVisitorService(t)

	tests := []struct {
		name string
		req  models.CreateVisitorRequest
		kind apperror.Kind
	}{
		{"unknown user", visitorRequest("nobody", now.Add(time.Hour)), apperror.KindNotFound},
		{"matron is not a tenant", visitorRequest(matron.ID, now.Add(time.Hour)), apperror.KindNotFound},
		{"checkout before check-in", visitorRequest(tenantA.ID, now.Add(-time.Hour)), apperror.KindValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, matron, tt.req)
			assertKind(t, err, tt.kind)
		})
	}

	_, err := service.Create(ctx, tenantA, visitorRequest(tenantA.ID, now.Add(time.Hour)))
	assertKind(t, err, apperror.KindForbidden)
}

func TestVisitorOwnershipAndOverdue(t *testing.T) {
	ctx := context.Background()
	service, now := newVisitorService(t)

	early := visitorRequest(tenantA.ID, now.Add(-time.Hour))
	early.CheckInTime = now.Add(-3 * time.Hour).Format(time.RFC3339)
	overdue, err := service.Create(ctx, matron, early)
	require.NoError(t, err)

	_, err = service.Create(ctx, matron, visitorRequest(tenantB.ID, now.Add(time.Hour)))
	require.NoError(t, err)

	_, err = service.Get(ctx, tenantB, overdue.ID)
	assertKind(t, err, apperror.KindForbidden)
	_, err = service.Get(ctx, tenantA, overdue.ID)
	require.NoError(t, err)

	mine, err := service.ListForTenant(ctx, tenantA, tenantA.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = service.ListForTenant(ctx, tenantB, tenantA.ID)
	assertKind(t, err, apperror.KindForbidden)

	_, err = service.ListForTenant(ctx, tenantB, "nobody")
	assertKind(t, err, apperror.KindNotFound)

	list, err := service.ListOverdue(ctx, matron, models.VisitorFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, overdue.ID, list.Items[0].ID)

	_, err = service.ListOverdue(ctx, tenantA, models.VisitorFilter{})
	assertKind(t, err, apperror.KindForbidden)

	all, err := service.List(ctx, matron, models.VisitorFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
}
