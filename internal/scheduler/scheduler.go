package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// EveryMinute is the cron schedule the reminder sweep runs on.
const EveryMinute = "* * * * *"

// SweepFunc is called on every tick and reports how many reminders it sent.
type SweepFunc func(ctx context.Context) int

// Scheduler runs the reminder sweep on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
	sweep    SweepFunc
	schedule string
}

func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		schedule: EveryMinute,
	}
}

func (s *Scheduler) SetSweepFunction(f SweepFunc) {
	s.sweep = f
}

func (s *Scheduler) Start() error {
	if s.sweep == nil {
		s.logger.Warn("sweep function not set, reminder scheduler idle")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, s.tick)
	if err != nil {
		return fmt.Errorf("schedule reminder sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("reminder scheduler started", zap.String("schedule", s.schedule))
	return nil
}

func (s *Scheduler) tick() {
	if n := s.sweep(s.ctx); n > 0 {
		s.logger.Info("reminders sent", zap.Int("count", n))
	}
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
