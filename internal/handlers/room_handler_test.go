package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartRequest builds a form request with the given fields and n image files
func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, n int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i := 0; i < n; i++ {
		part, err := mw.CreateFormFile(imagesField, fmt.Sprintf("photo%d.jpg", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestRoomListPagination(t *testing.T) {
	app := newTestApp(t)
	matron := app.register(t, "Mary", "mary@hostel.test", "matron")
	for i := 1; i <= 25; i++ {
		createRoom(t, app, matron.Token, fmt.Sprintf("R%03d", i), float64(i*10))
	}

	w, env := app.do(t, http.MethodGet, "/api/v1/rooms?page=2&limit=10&sort=roomNumber", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, 10, env.Count)
	assert.Equal(t, 25, env.Total)
	require.NotNil(t, env.Pagination.Next)
	require.NotNil(t, env.Pagination.Prev)
	assert.Equal(t, 3, env.Pagination.Next.Page)
	assert.Equal(t, 1, env.Pagination.Prev.Page)
	rooms := decode[[]models.Room](t, env)
	assert.Equal(t, "R011", rooms[0].RoomNumber)

	w, env = app.do(t, http.MethodGet, "/api/v1/rooms?page=3&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, env.Count)
	assert.Nil(t, env.Pagination.Next)
}

func TestRoomListFiltersAndSelect(t *testing.T) {
	app := newTestApp(t)
	matron := app.register(t, "Mary", "mary@hostel.test", "matron")
	for i := 1; i <= 5; i++ {
		createRoom(t, app, matron.Token, fmt.Sprintf("R%d", i), float64(i*100))
	}

	w, env := app.do(t, http.MethodGet, "/api/v1/rooms?price[gte]=300&select=roomNumber,price&sort=-price", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, env.Total)

	items := decode[[]map[string]interface{}](t, env)
	require.Len(t, items, 3)
	assert.Equal(t, "R5", items[0]["roomNumber"])
	assert.Len(t, items[0], 3)
	assert.Contains(t, items[0], "id")
	assert.NotContains(t, items[0], "status")

	w, env = app.do(t, http.MethodGet, "/api/v1/rooms?colour=red", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)

	w, env = app.do(t, http.MethodGet, "/api/v1/rooms?select=secret", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
}

func TestRoomMultipartImages(t *testing.T) {
	app := newTestApp(t)
	matron := app.register(t, "Mary", "mary@hostel.test", "matron")

	req := multipartRequest(t, http.MethodPost, "/api/v1/rooms", matron.Token, map[string]string{
		"roomNumber": "R201",
		"floor":      "2",
		"price":      "150",
		"amenities":  "wifi,desk",
	}, 2)
	w, env := app.serve(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	room := decode[models.Room](t, env)
	assert.Len(t, room.Images, 2)
	assert.NotContains(t, []string(room.Images), models.DefaultRoomImage)
	assert.Equal(t, []string{"wifi", "desk"}, []string(room.Amenities))

	req = multipartRequest(t, http.MethodPut, "/api/v1/rooms/"+room.ID, matron.Token, nil, 1)
	w, env = app.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[models.Room](t, env).Images, 3)

	req = multipartRequest(t, http.MethodPut, "/api/v1/rooms/"+room.ID, matron.Token, map[string]string{"keepExistingImages": "false"}, 1)
	w, env = app.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[models.Room](t, env).Images, 1)

	req = multipartRequest(t, http.MethodPost, "/api/v1/rooms", matron.Token, map[string]string{
		"roomNumber": "R202",
		"floor":      "2",
		"price":      "150",
	}, maxRoomImages+1)
	w, env = app.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
}

func TestRoomDeleteAndConflicts(t *testing.T) {
	app := newTestApp(t)
	matron := app.register(t, "Mary", "mary@hostel.test", "matron")
	alice := app.register(t, "Alice", "alice@hostel.test", "")
	booked := createRoom(t, app, matron.Token, "R101", 100)
	spare := createRoom(t, app, matron.Token, "R102", 100)

	w, env := app.do(t, http.MethodPost, "/api/v1/rooms", matron.Token, gin.H{"roomNumber": "R101", "floor": 1, "price": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", env.Code)

	w, _ = app.do(t, http.MethodPost, "/api/v1/bookings", alice.Token, gin.H{
		"room":        booked.ID,
		"checkInDate": "2026-11-01",
		"duration":    1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = app.do(t, http.MethodDelete, "/api/v1/rooms/"+booked.ID, matron.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Code)

	w, env = app.do(t, http.MethodPut, "/api/v1/rooms/"+spare.ID, matron.Token, gin.H{"status": "occupied"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)

	w, _ = app.do(t, http.MethodDelete, "/api/v1/rooms/"+spare.ID, matron.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodGet, "/api/v1/rooms/"+spare.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
