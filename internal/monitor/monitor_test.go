package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/senzing-garage/stream-producer/internal/metrics"
)

func TestMonitorHaltsWhenNoWorkersAreLive(t *testing.T) {
	m := metrics.New()
	m.SetWorkersStarted(1)
	m.WorkerExited()

	mon := &Monitor{Metrics: m, Period: time.Second}

	done := make(chan struct{})
	go func() {
		mon.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(7 * time.Second):
		t.Fatalf("expected monitor to halt once workers_live reached 0")
	}
}

func TestMonitorStopsOnContextCancel(t *testing.T) {
	m := metrics.New()
	m.SetWorkersStarted(1)

	mon := &Monitor{Metrics: m, Period: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		mon.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected monitor to return promptly after context cancellation")
	}
}

func TestRatePerSecond(t *testing.T) {
	if got := ratePerSecond(100, 10*time.Second); got != 10 {
		t.Fatalf("expected rate 10, got %v", got)
	}
	if got := ratePerSecond(100, 0); got != 0 {
		t.Fatalf("expected rate 0 for non-positive duration, got %v", got)
	}
}
