package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Upload   UploadConfig
	Booking  BookingConfig
	Jobs     JobsConfig
	Security SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver             string // postgres or memory
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	AutoMigrate        bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// AuthConfig holds account and login policy
type AuthConfig struct {
	AllowMatronRegistration bool
	LoginMaxFailures        int
	LoginFailureWindow      time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// UploadConfig holds image upload configuration
type UploadConfig struct {
	Dir          string
	MaxFileBytes int64
}

// BookingConfig holds booking rules
type BookingConfig struct {
	MaxDurationMonths int
}

// JobsConfig holds scheduled job configuration
type JobsConfig struct {
	OverstayCheckSchedule string // cron expression, empty disables the job
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost     int
	EnableAuditLog bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:             getEnv("DATABASE_DRIVER", DriverPostgres),
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			AutoMigrate:        getEnvAsBool("DATABASE_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		Auth: AuthConfig{
			AllowMatronRegistration: getEnvAsBool("AUTH_ALLOW_MATRON_REGISTRATION", true),
			LoginMaxFailures:        getEnvAsInt("LOGIN_MAX_FAILURES", 5),
			LoginFailureWindow:      time.Duration(getEnvAsInt("LOGIN_FAILURE_WINDOW_MINUTES", 15)) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Upload: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxFileBytes: int64(getEnvAsInt("UPLOAD_MAX_FILE_BYTES", 5*1024*1024)),
		},
		Booking: BookingConfig{
			MaxDurationMonths: getEnvAsInt("BOOKING_MAX_DURATION_MONTHS", 24),
		},
		Jobs: JobsConfig{
			OverstayCheckSchedule: getEnv("OVERSTAY_CHECK_SCHEDULE", "*/15 * * * *"),
		},
		Security: SecurityConfig{
			BcryptCost:     getEnvAsInt("BCRYPT_COST", 12),
			EnableAuditLog: getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be 'postgres' or 'memory')", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Booking.MaxDurationMonths <= 0 {
		return fmt.Errorf("BOOKING_MAX_DURATION_MONTHS must be positive")
	}

	if c.Upload.MaxFileBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_BYTES must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logrus.Warnf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logrus.Warnf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
