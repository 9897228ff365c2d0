package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hostel?sslmode=disable")
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 24, cfg.Booking.MaxDurationMonths)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginFailureWindow)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Auth.AllowMatronRegistration)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOOKING_MAX_DURATION_MONTHS", "6")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://hostel.example.com,")
	t.Setenv("AUTH_ALLOW_MATRON_REGISTRATION", "false")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Booking.MaxDurationMonths)
	assert.Equal(t, []string{"http://localhost:3000", "https://hostel.example.com"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Auth.AllowMatronRegistration)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
}

func TestValidate(t *testing.T) {
	t.Run("postgres requires url", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		assert.EqualError(t, err, "DATABASE_URL is required")
	})

	t.Run("memory driver needs no url", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DATABASE_URL", "")
		t.Setenv("DATABASE_DRIVER", DriverMemory)

		_, err := Load()
		assert.NoError(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DATABASE_DRIVER", "mysql")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.EqualError(t, err, "JWT_SECRET is required")
	})
}
