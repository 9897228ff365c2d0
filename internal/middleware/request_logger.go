package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request with its status and latency. 4xx responses
// log at warn and 5xx at error.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         utils.GetRealIP(c),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}
