package jobs

import (
	"context"
	"errors"
	"testing"
)

type countingCleaner struct {
	calls int
	err   error
}

func (c *countingCleaner) CleanupExpiredSessions(context.Context) (int64, error) {
	c.calls++
	return 3, c.err
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingCleaner{}, "every now and then")
	if err := s.Start(context.Background()); err == nil {
		s.Stop()
		t.Fatal("Start accepted an invalid schedule")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&countingCleaner{}, "@hourly")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n := len(s.cron.Entries()); n != 1 {
		t.Errorf("scheduled %d jobs, want 1", n)
	}
	s.Stop()
}

func TestCleanupSessionsSurvivesErrors(t *testing.T) {
	c := &countingCleaner{err: errors.New("db down")}
	s := NewScheduler(c, "@hourly")

	s.cleanupSessions(context.Background())
	s.cleanupSessions(context.Background())
	if c.calls != 2 {
		t.Errorf("cleaner called %d times, want 2", c.calls)
	}
}
