// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SessionCleaner deletes sessions past their expiry and reports how many.
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	sessions SessionCleaner
	schedule string
}

// NewScheduler runs in UTC, the zone daily challenges roll over in.
func NewScheduler(sessions SessionCleaner, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		sessions: sessions,
		schedule: schedule,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.cleanupSessions(ctx) }); err != nil {
		return fmt.Errorf("schedule session cleanup %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.WithField("session_cleanup", s.schedule).Info("[CRON] scheduler started")
	return nil
}

func (s *Scheduler) cleanupSessions(ctx context.Context) {
	n, err := s.sessions.CleanupExpiredSessions(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] session cleanup failed")
		return
	}
	log.WithField("removed", n).Debug("[CRON] expired sessions removed")
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("[CRON] scheduler stopped")
}
