package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestStartWithoutSweepIsIdle(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(time.UTC, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.IsRunning() {
		t.Fatalf("scheduler without sweep must not register entries")
	}
	s.Stop()
}

func TestStartRegistersSweepAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(time.UTC, nil)
	s.SetSweepFunction(func(ctx context.Context) int { return 0 })
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatalf("expected a registered entry")
	}
	s.Stop()
}

func TestTickPassesSchedulerContext(t *testing.T) {
	s := New(time.UTC, nil)
	var got context.Context
	s.SetSweepFunction(func(ctx context.Context) int {
		got = ctx
		return 2
	})
	s.tick()
	if got == nil || got.Err() != nil {
		t.Fatalf("sweep must receive a live context")
	}
	s.Stop()
	if got.Err() == nil {
		t.Fatalf("Stop must cancel the sweep context")
	}
}

func TestInvalidSchedule(t *testing.T) {
	s := New(time.UTC, nil)
	s.schedule = "not a cron expression"
	s.SetSweepFunction(func(ctx context.Context) int { return 0 })
	if err := s.Start(); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
	s.Stop()
}
