package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hostelhub/hostel-backend/internal/database"
	"github.com/hostelhub/hostel-backend/internal/models"
)

// RateLimitService limits login attempts using the failures recorded in the audit log
type RateLimitService struct {
	logs        database.AuditLogRepository
	maxFailures int
	window      time.Duration
	now         func() time.Time
}

// NewRateLimitService creates a new rate limit service. maxFailures <= 0 disables the limit.
func NewRateLimitService(logs database.AuditLogRepository, maxFailures int, window time.Duration) *RateLimitService {
	return &RateLimitService{
		logs:        logs,
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckLogin reports a *RateLimitError when the email or the IP address has
// reached the failure limit within the window
func (s *RateLimitService) CheckLogin(ctx context.Context, email, ip string) error {
	if s.maxFailures <= 0 {
		return nil
	}

	since := s.now().Add(-s.window)
	retryAfter := s.now().Add(s.window)

	if email != "" {
		n, err := s.logs.Count(ctx, models.AuditLogFilter{Action: ActionLoginFailed, EntityID: email, Since: since})
		if err != nil {
			return fmt.Errorf("failed to check email rate limit: %w", err)
		}
		if n >= s.maxFailures {
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "email",
			}
		}
	}

	// the per-IP limit is three times the per-account limit
	if ip != "" {
		n, err := s.logs.Count(ctx, models.AuditLogFilter{Action: ActionLoginFailed, IPAddress: ip, Since: since})
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}
		if n >= s.maxFailures*3 {
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}
