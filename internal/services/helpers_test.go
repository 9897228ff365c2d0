package services

import (
	"context"
	"io"
	"testing"

	"github.com/hostelhub/hostel-backend/internal/access"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/database/memstore"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	matron  = access.Caller{ID: "matron-1", Role: models.RoleMatron}
	tenantA = access.Caller{ID: "tenant-a", Role: models.RoleTenant}
	tenantB = access.Caller{ID: "tenant-b", Role: models.RoleTenant}
	anon    = access.Caller{}
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestStore returns a store seeded with one matron and two tenants
func newTestStore(t *testing.T) *memstore.Store {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()

	for _, u := range []models.User{
		{ID: matron.ID, Name: "Mary Matron", Email: "matron@hostel.test", Phone: "0771000000", Role: models.RoleMatron},
		{ID: tenantA.ID, Name: "Alice", Email: "alice@hostel.test", Phone: "0771000001", Role: models.RoleTenant},
		{ID: tenantB.ID, Name: "Bob", Email: "bob@hostel.test", Phone: "0771000002", Role: models.RoleTenant},
	} {
		u := u
		require.NoError(t, store.Users().Create(ctx, &u))
	}
	return store
}

func seedRoom(t *testing.T, store *memstore.Store, id, number string, price float64) *models.Room {
	t.Helper()
	room := &models.Room{
		ID:         id,
		RoomNumber: number,
		Capacity:   1,
		Price:      price,
		Status:     models.RoomStatusAvailable,
		Images:     []string{models.DefaultRoomImage},
	}
	require.NoError(t, store.Rooms().Create(context.Background(), room))
	return room
}

func roomStatus(t *testing.T, store *memstore.Store, id string) models.RoomStatus {
	t.Helper()
	room, err := store.Rooms().GetByID(context.Background(), id)
	require.NoError(t, err)
	return room.Status
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// fakeFiles records deleted references
type fakeFiles struct {
	deleted []string
}

func (f *fakeFiles) Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	return "saved-" + filename, nil
}

func (f *fakeFiles) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}
