package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvertisementFlow(t *testing.T) {
	app := newTestApp(t)
	matron := app.register(t, "Mary", "mary@hostel.test", "matron")
	alice := app.register(t, "Alice", "alice@hostel.test", "")
	bob := app.register(t, "Bob", "bob@hostel.test", "")

	req := multipartRequest(t, http.MethodPost, "/api/v1/advertisements", alice.Token, map[string]string{
		"title":       "Desk lamp",
		"description": "Barely used",
		"price":       "25",
		"category":    "furniture",
		"contactInfo": "alice@hostel.test",
	}, 1)
	w, env := app.serve(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ad := decode[models.AdvertisementView](t, env)
	assert.Len(t, ad.Images, 1)
	require.NotNil(t, ad.User)
	assert.Equal(t, "Alice", ad.User.Name)
	assert.Empty(t, ad.User.Email)

	w, _ = app.do(t, http.MethodPost, "/api/v1/advertisements", bob.Token, gin.H{
		"title":       "Textbook",
		"description": "Calculus",
		"price":       60,
		"category":    "books",
		"contactInfo": "bob@hostel.test",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = app.do(t, http.MethodGet, "/api/v1/advertisements/"+ad.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = app.do(t, http.MethodGet, "/api/v1/advertisements", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = app.do(t, http.MethodGet, "/api/v1/advertisements?maxPrice=50", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Total)

	w, env = app.do(t, http.MethodGet, "/api/v1/advertisements?minPrice=100&maxPrice=10", bob.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)

	w, env = app.do(t, http.MethodGet, "/api/v1/advertisements?minPrice=cheap", bob.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, http.MethodGet, "/api/v1/advertisements/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Count)

	w, _ = app.do(t, http.MethodPut, "/api/v1/advertisements/"+ad.ID, bob.Token, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = app.do(t, http.MethodPut, "/api/v1/advertisements/"+ad.ID, alice.Token, gin.H{"title": "Desk lamp (LED)"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Desk lamp (LED)", decode[models.AdvertisementView](t, env).Title)

	w, _ = app.do(t, http.MethodDelete, "/api/v1/advertisements/"+ad.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodDelete, "/api/v1/advertisements/"+ad.ID, matron.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = app.do(t, http.MethodGet, "/api/v1/advertisements/"+ad.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}
