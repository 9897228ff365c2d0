package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/config"
	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/middleware"
	"github.com/hostelhub/hostel-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// JobStatusReporter exposes the state of scheduled background jobs
type JobStatusReporter interface {
	GetJobStatus() map[string]interface{}
}

// RouterDeps carries everything the HTTP surface needs
type RouterDeps struct {
	Store      database.Store
	Jobs       JobStatusReporter
	JWTService *jwt.Service
	Logger     *logrus.Logger
	CORS       config.CORSConfig
	UploadDir  string
	Version    string

	Auth           *AuthHandler
	Rooms          *RoomHandler
	Bookings       *BookingHandler
	Complaints     *ComplaintHandler
	Visitors       *VisitorHandler
	Advertisements *AdvertisementHandler
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	if len(deps.CORS.AllowedOrigins) > 0 {
		corsConfig := cors.Config{
			AllowMethods:  deps.CORS.AllowedMethods,
			AllowHeaders:  deps.CORS.AllowedHeaders,
			ExposeHeaders: []string{"Content-Length", "Retry-After"},
			MaxAge:        12 * time.Hour,
		}
		if len(deps.CORS.AllowedOrigins) == 1 && deps.CORS.AllowedOrigins[0] == "*" {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = deps.CORS.AllowedOrigins
			corsConfig.AllowCredentials = true
		}
		router.Use(cors.New(corsConfig))
	}

	router.GET("/health", healthCheckHandler(deps.Store, deps.Jobs, deps.Version, deps.Logger))
	if deps.UploadDir != "" {
		router.Static("/uploads", deps.UploadDir)
	}

	requireAuth := middleware.AuthMiddleware(deps.JWTService, deps.Logger)
	optionalAuth := middleware.OptionalAuth(deps.JWTService)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", deps.Auth.Register)
			auth.POST("/login", deps.Auth.Login)
			auth.POST("/refresh", deps.Auth.Refresh)

			authProtected := auth.Group("")
			authProtected.Use(requireAuth)
			{
				authProtected.GET("/me", deps.Auth.Me)
				authProtected.PUT("/me", deps.Auth.UpdateProfile)
				authProtected.PUT("/password", deps.Auth.ChangePassword)
				authProtected.GET("/tenants", deps.Auth.ListTenants)
			}
		}

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", optionalAuth, deps.Rooms.ListRooms)
			rooms.GET("/:id", optionalAuth, deps.Rooms.GetRoom)
			rooms.POST("", requireAuth, deps.Rooms.CreateRoom)
			rooms.PUT("/:id", requireAuth, deps.Rooms.UpdateRoom)
			rooms.DELETE("/:id", requireAuth, deps.Rooms.DeleteRoom)
		}

		bookings := v1.Group("/bookings")
		bookings.Use(requireAuth)
		{
			bookings.POST("", deps.Bookings.CreateBooking)
			bookings.GET("", deps.Bookings.ListBookings)
			bookings.GET("/me", deps.Bookings.ListMyBookings)
			bookings.GET("/:id", deps.Bookings.GetBooking)
			bookings.PUT("/:id", deps.Bookings.UpdateBooking)
			bookings.DELETE("/:id", deps.Bookings.DeleteBooking)
		}

		complaints := v1.Group("/complaints")
		complaints.Use(requireAuth)
		{
			complaints.POST("", deps.Complaints.CreateComplaint)
			complaints.GET("", deps.Complaints.ListComplaints)
			complaints.GET("/me", deps.Complaints.ListMyComplaints)
			complaints.GET("/:id", deps.Complaints.GetComplaint)
			complaints.PUT("/:id", deps.Complaints.UpdateComplaint)
		}

		visitors := v1.Group("/visitors")
		visitors.Use(requireAuth)
		{
			visitors.POST("", deps.Visitors.CreateVisitor)
			visitors.GET("", deps.Visitors.ListVisitors)
			visitors.GET("/overdue", deps.Visitors.ListOverdueVisitors)
			visitors.GET("/tenant/:tenantId", deps.Visitors.ListTenantVisitors)
			visitors.GET("/:id", deps.Visitors.GetVisitor)
			visitors.PUT("/:id/checkout", deps.Visitors.CheckoutVisitor)
		}

		ads := v1.Group("/advertisements")
		{
			ads.POST("", requireAuth, deps.Advertisements.CreateAdvertisement)
			ads.GET("", requireAuth, deps.Advertisements.ListAdvertisements)
			ads.GET("/me", requireAuth, deps.Advertisements.ListMyAdvertisements)
			ads.GET("/:id", optionalAuth, deps.Advertisements.GetAdvertisement)
			ads.PUT("/:id", requireAuth, deps.Advertisements.UpdateAdvertisement)
			ads.DELETE("/:id", requireAuth, deps.Advertisements.DeleteAdvertisement)
		}
	}

	return router
}

// healthCheckHandler reports whether the store is reachable and, when a
// scheduler is attached, the state of its jobs
func healthCheckHandler(store database.Store, jobs JobStatusReporter, version string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.WithError(err).Error("Health check: database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    "database unavailable",
			})
			return
		}

		body := gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		}
		if jobs != nil {
			body["jobs"] = jobs.GetJobStatus()
		}
		c.JSON(http.StatusOK, body)
	}
}
