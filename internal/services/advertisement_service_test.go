package services

import (
	"context"
	"strings"
	"testing"

	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adRequest(title string, price *float64) models.CreateAdvertisementRequest {
	return models.CreateAdvertisementRequest{
		Title:       title,
		Description: "Barely used",
		Price:       price,
		Category:    "furniture",
		ContactInfo: "0771234567",
	}
}

func TestAdvertisementOwnership(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	files := &fakeFiles{}
	service := NewAdvertisementService(store, files, testLogger())

	ad, err := service.Create(ctx, tenantA, adRequest("Study desk", floatPtr(40)), []string{"desk.jpg"})
	require.NoError(t, err)
	require.NotNil(t, ad.User)
	assert.Equal(t, "Alice", ad.User.Name)
	assert.Empty(t, ad.User.Email)

	_, err = service.Update(ctx, tenantB, ad.ID, models.UpdateAdvertisementRequest{Title: strPtr("Mine now")}, nil)
	assertKind(t, err, apperror.KindForbidden)

	_, err = service.Update(ctx, tenantB, "missing", models.UpdateAdvertisementRequest{Title: strPtr("Mine now")}, nil)
	assertKind(t, err, apperror.KindNotFound)

	updated, err := service.Update(ctx, tenantA, ad.ID, models.UpdateAdvertisementRequest{Price: floatPtr(35)}, []string{"desk2.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 35.0, *updated.Price)
	assert.Equal(t, []string{"desk.jpg", "desk2.jpg"}, []string(updated.Images))

	moderated, err := service.Update(ctx, matron, ad.ID, models.UpdateAdvertisementRequest{Title: strPtr("Desk")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Desk", moderated.Title)

	err = service.Delete(ctx, tenantB, ad.ID)
	assertKind(t, err, apperror.KindForbidden)

	require.NoError(t, service.Delete(ctx, matron, ad.ID))
	assert.Equal(t, []string{"desk.jpg", "desk2.jpg"}, files.deleted)

	_, err = service.Get(ctx, anon, ad.ID)
	assertKind(t, err, apperror.KindNotFound)
}

func TestAdvertisementValidationAndListing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	service := NewAdvertisementService(store, nil, testLogger())

	_, err := service.Create(ctx, tenantA, adRequest(strings.Repeat("x", 51), nil), nil)
	assertKind(t, err, apperror.KindValidationFailed)

	_, err = service.Create(ctx, anon, adRequest("Kettle", nil), nil)
	assertKind(t, err, apperror.KindUnauthenticated)

	_, err = service.Create(ctx, tenantA, adRequest("Kettle", floatPtr(10)), nil)
	require.NoError(t, err)
	_, err = service.Create(ctx, tenantB, adRequest("Lamp", floatPtr(25)), nil)
	require.NoError(t, err)
	free, err := service.Create(ctx, matron, adRequest("Free books", nil), nil)
	require.NoError(t, err)

	got, err := service.Get(ctx, anon, free.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Price)

	_, err = service.List(ctx, anon, models.AdvertisementFilter{})
	assertKind(t, err, apperror.KindUnauthenticated)

	all, err := service.List(ctx, tenantB, models.AdvertisementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)

	ranged, err := service.List(ctx, tenantB, models.AdvertisementFilter{MinPrice: floatPtr(20)})
	require.NoError(t, err)
	require.Equal(t, 1, ranged.Total)
	assert.Equal(t, "Lamp", ranged.Items[0].Title)

	_, err = service.List(ctx, tenantB, models.AdvertisementFilter{MinPrice: floatPtr(20), MaxPrice: floatPtr(5)})
	assertKind(t, err, apperror.KindValidationFailed)

	mine, err := service.ListMine(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Kettle", mine[0].Title)
}
