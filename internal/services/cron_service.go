package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const overstayJobTimeout = 2 * time.Minute

// CronService manages scheduled background jobs
type CronService struct {
	cron             *cron.Cron
	overstaySchedule string
	visitorService   *VisitorService
	auditService     *AuditService
	logger           *logrus.Logger
}

// NewCronService creates a new CronService. overstaySchedule is a standard
// five field cron expression.
func NewCronService(overstaySchedule string, visitorService *VisitorService, auditService *AuditService, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:             cron.New(),
		overstaySchedule: overstaySchedule,
		visitorService:   visitorService,
		auditService:     auditService,
		logger:           logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	if s.overstaySchedule == "" {
		s.logger.Info("Visitor overstay check disabled")
	} else {
		if _, err := s.cron.AddFunc(s.overstaySchedule, s.overstayJob); err != nil {
			return fmt.Errorf("failed to schedule overstay check: %w", err)
		}
		s.logger.WithField("schedule", s.overstaySchedule).Info("Scheduled: visitor overstay check")
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) overstayJob() {
	ctx, cancel := context.WithTimeout(context.Background(), overstayJobTimeout)
	defer cancel()

	startTime := time.Now()
	flagged, err := s.CheckOverstays(ctx, startTime)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Overstay check failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"flagged":  flagged,
		"duration": time.Since(startTime).String(),
	}).Info("[CRON] Overstay check finished")
}

// CheckOverstays records an audit event for every overdue visitor not flagged
// before and returns how many were newly flagged
func (s *CronService) CheckOverstays(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.visitorService.FindOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for _, v := range overdue {
		seen, err := s.auditService.HasEvent(ctx, ActionVisitorOverstay, v.ID)
		if err != nil {
			return flagged, err
		}
		if seen {
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"visitor_id":        v.ID,
			"tenant_id":         v.TenantID,
			"expected_checkout": v.ExpectedCheckOutTime,
		}).Warn("Visitor has overstayed")

		err = s.auditService.Log(ctx, RequestMeta{}, AuditEvent{
			Action:     ActionVisitorOverstay,
			EntityType: "visitor",
			EntityID:   v.ID,
			Details: map[string]interface{}{
				"tenantId":             v.TenantID,
				"expectedCheckOutTime": v.ExpectedCheckOutTime,
				"overdueBy":            now.Sub(v.ExpectedCheckOutTime).Round(time.Minute).String(),
			},
		})
		if err != nil {
			return flagged, err
		}
		flagged++
	}
	return flagged, nil
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":      entry.ID,
			"nextRun": entry.Next,
			"prevRun": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":  len(entries) > 0,
		"jobCount": len(entries),
		"jobs":     jobs,
	}
}
