package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/config"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/database/memstore"
	"github.com/hostelhub/hostel-backend/internal/handlers"
	"github.com/hostelhub/hostel-backend/internal/services"
	"github.com/hostelhub/hostel-backend/internal/storage"
	"github.com/hostelhub/hostel-backend/pkg/jwt"
	"github.com/hostelhub/hostel-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting hostel management backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warn("Invalid log level, using INFO")
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	files, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.MaxFileBytes, logger)
	if err != nil {
		logger.Fatalf("Failed to prepare upload directory: %v", err)
	}

	logger.Info("Initializing services...")

	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	phoneValidator := validator.NewPhoneValidator()

	auditService := services.NewAuditService(store.AuditLogs(), logger, cfg.Security.EnableAuditLog)
	if !cfg.Security.EnableAuditLog {
		logger.Warn("Audit logging disabled; only login failures and visitor overstays are recorded")
	}
	rateLimitService := services.NewRateLimitService(store.AuditLogs(), cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
	authService := services.NewAuthService(store, jwtService, phoneValidator, cfg.Auth, cfg.Security.BcryptCost, logger)
	roomService := services.NewRoomService(store, files, logger)
	bookingService := services.NewBookingService(store, cfg.Booking.MaxDurationMonths, logger)
	complaintService := services.NewComplaintService(store, logger)
	visitorService := services.NewVisitorService(store, phoneValidator, logger)
	adService := services.NewAdvertisementService(store, files, logger)

	cronService := services.NewCronService(cfg.Jobs.OverstayCheckSchedule, visitorService, auditService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("Services initialized")

	router := handlers.NewRouter(handlers.RouterDeps{
		Store:          store,
		Jobs:           cronService,
		JWTService:     jwtService,
		Logger:         logger,
		CORS:           cfg.CORS,
		UploadDir:      files.Dir(),
		Version:        version,
		Auth:           handlers.NewAuthHandler(authService, rateLimitService, auditService, logger),
		Rooms:          handlers.NewRoomHandler(roomService, auditService, files, logger),
		Bookings:       handlers.NewBookingHandler(bookingService, auditService, logger),
		Complaints:     handlers.NewComplaintHandler(complaintService, auditService, files, logger),
		Visitors:       handlers.NewVisitorHandler(visitorService, auditService, logger),
		Advertisements: handlers.NewAdvertisementHandler(adService, auditService, files, logger),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// openStore connects the configured backend. The memory driver keeps all data
// in process and is meant for local runs and demos.
func openStore(cfg *config.Config, logger *logrus.Logger) (database.Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memstore.New(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		logger.Info("Database schema is up to date")
	}

	return database.NewPostgresStore(db), nil
}
