package sweeper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neurovisa/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Interrupter closes sessions that have been open longer than maxAge
type Interrupter interface {
	InterruptStaleSessions(ctx context.Context, maxAge time.Duration) (int, error)
}

// Sweeper periodically interrupts abandoned interview sessions
type Sweeper struct {
	schedule cron.Schedule
	expr     string
	maxAge   time.Duration
	target   Interrupter
	now      func() time.Time
}

// New parses a standard 5-field cron expression (minute hour day-of-month month day-of-week).
func New(expr string, maxAge time.Duration, target Interrupter) (*Sweeper, error) {
	expr = strings.TrimSpace(expr)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", expr, err)
	}
	return &Sweeper{schedule: sched, expr: expr, maxAge: maxAge, target: target, now: time.Now}, nil
}

// Next returns the first run time after t
func (s *Sweeper) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// RunOnce performs a single sweep
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.target.InterruptStaleSessions(ctx, s.maxAge)
	if err != nil {
		logger.Log.WithError(err).Error("Session sweep failed")
		return n, err
	}
	if n > 0 {
		logger.Log.WithField("interrupted", n).Info("Session sweep complete")
	}
	return n, nil
}

// Start runs sweeps on schedule in a goroutine until ctx is cancelled
func (s *Sweeper) Start(ctx context.Context) {
	logger.Log.WithFields(logrus.Fields{
		"cron":    s.expr,
		"max_age": s.maxAge.String(),
	}).Info("Session sweeper scheduled")

	go func() {
		for {
			now := s.now()
			next := s.schedule.Next(now)
			timer := time.NewTimer(next.Sub(now))

			select {
			case <-ctx.Done():
				timer.Stop()
				logger.Log.Info("Session sweeper stopped")
				return
			case <-timer.C:
				_, _ = s.RunOnce(ctx)
			}
		}
	}()
}
