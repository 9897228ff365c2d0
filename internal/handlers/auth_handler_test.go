package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "Alice", "Alice@Hostel.test", "")
	require.NotEmpty(t, alice.Token)

	w, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@hostel.test",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.AuthResponse](t, env)
	assert.Equal(t, models.RoleTenant, resp.User.Role)
	assert.NotEmpty(t, resp.RefreshToken)

	w, env = app.do(t, http.MethodGet, "/api/v1/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.User](t, env)
	assert.Equal(t, alice.ID, me.ID)
	assert.Equal(t, "alice@hostel.test", me.Email)
	assert.NotContains(t, string(env.Data), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Alice", "alice@hostel.test", "")

	w, env := app.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Other Alice",
		"email":    "alice@hostel.test",
		"phone":    "0771234567",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestRegisterInvalidBody(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
}

func TestLoginRateLimit(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Alice", "alice@hostel.test", "")

	for i := 0; i < testMaxLoginFailures; i++ {
		w, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "alice@hostel.test",
			"password": "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHENTICATED", env.Code)
		assert.Equal(t, "invalid email or password", env.Error)
	}

	w, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@hostel.test",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", env.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRefreshToken(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "Alice", "alice@hostel.test", "")
	refresh, err := app.jwt.GenerateRefreshToken(alice.ID, "alice@hostel.test")
	require.NoError(t, err)

	w, env := app.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.AuthResponse](t, env)
	assert.NotEmpty(t, resp.Token)

	w, env = app.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refreshToken": alice.Token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Code)
}

func TestProfileEndpoints(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "Alice", "alice@hostel.test", "")

	t.Run("no token", func(t *testing.T) {
		w, env := app.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "MISSING_AUTH_HEADER", env.Reason)
	})

	t.Run("update profile", func(t *testing.T) {
		w, env := app.do(t, http.MethodPut, "/api/v1/auth/me", alice.Token, gin.H{"name": "Alice B"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Alice B", decode[models.User](t, env).Name)
	})

	t.Run("change password", func(t *testing.T) {
		w, env := app.do(t, http.MethodPut, "/api/v1/auth/password", alice.Token, gin.H{
			"currentPassword": "wrong-one",
			"newPassword":     "another123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", env.Code)

		w, _ = app.do(t, http.MethodPut, "/api/v1/auth/password", alice.Token, gin.H{
			"currentPassword": "secret123",
			"newPassword":     "another123",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w, _ = app.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "alice@hostel.test",
			"password": "another123",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("tenants listing is matron only", func(t *testing.T) {
		w, env := app.do(t, http.MethodGet, "/api/v1/auth/tenants", alice.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", env.Code)

		matron := app.register(t, "Mary", "mary@hostel.test", "matron")
		w, env = app.do(t, http.MethodGet, "/api/v1/auth/tenants", matron.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, env.Count)
	})
}
