package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	expirySvc *ExpiryService
	logger    *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(expirySvc *ExpiryService, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:      cron.New(),
		expirySvc: expirySvc,
		logger:    logger,
	}
}

// Start registers the scheduled jobs and starts the scheduler.
func (s *CronService) Start() error {
	// Permit expiry warnings daily at 8 AM
	_, err := s.cron.AddFunc("0 8 * * *", s.expirySweepJob)
	if err != nil {
		return fmt.Errorf("failed to schedule permit expiry job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Cron service started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) expirySweepJob() {
	start := time.Now()
	s.expirySvc.Sweep()
	s.logger.WithField("duration", time.Since(start).String()).Info("Permit expiry job finished")
}

// RunExpirySweepNow runs the expiry sweep immediately, outside the schedule.
func (s *CronService) RunExpirySweepNow() {
	s.expirySweepJob()
}
