package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/access"
	"github.com/hostelhub/hostel-backend/internal/apperror"
	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/hostelhub/hostel-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// Caller converts the user context into the identity passed to services
func (u UserContext) Caller() access.Caller {
	return access.Caller{ID: u.UserID, Role: u.Role}
}

// AuthMiddleware creates a middleware that requires a valid access token
func AuthMiddleware(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, reason, message := authenticate(c, jwtService)
		if reason != "" {
			logger.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"ip":     c.ClientIP(),
				"reason": reason,
			}).Warn("Authentication failed")

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   message,
				"code":    apperror.KindUnauthenticated,
				"reason":  reason,
			})
			return
		}

		c.Set(UserContextKey, userCtx)
		c.Next()
	}
}

// OptionalAuth attaches the user context when a valid access token is sent and
// otherwise lets the request through anonymously
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if userCtx, reason, _ := authenticate(c, jwtService); reason == "" {
				c.Set(UserContextKey, userCtx)
			}
		}
		c.Next()
	}
}

// authenticate validates the bearer token. reason is empty on success.
func authenticate(c *gin.Context, jwtService *jwt.Service) (userCtx UserContext, reason, message string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return UserContext{}, "MISSING_AUTH_HEADER", "Authorization header is required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return UserContext{}, "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return UserContext{}, "INVALID_AUTH_FORMAT", "Token cannot be empty"
	}

	claims, err := jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		if jwt.IsExpired(err) {
			return UserContext{}, "TOKEN_EXPIRED", "Access token has expired. Please refresh your token."
		}
		return UserContext{}, "INVALID_TOKEN", "Invalid access token"
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return UserContext{}, "INVALID_TOKEN", "Invalid access token"
	}

	return UserContext{UserID: claims.UserID, Email: claims.Email, Role: role}, "", ""
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// CallerFrom returns the caller of the request, anonymous when no user context is set
func CallerFrom(c *gin.Context) access.Caller {
	userCtx, _ := GetUserContext(c)
	return userCtx.Caller()
}
