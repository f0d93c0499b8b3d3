// Package monitor implements the single monitor worker: periodic
// counter stats lines and worker-loss detection.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/senzing-garage/stream-producer/internal/metrics"
)

// pollSlice is the monitor's polling granularity: it wakes every 5
// seconds regardless of the configured reporting period so it can
// notice zero live workers promptly, per spec §4.4 ("the monitor's
// liveness check is polling-based; it does not synchronize with worker
// exit").
const pollSlice = 5 * time.Second

// Monitor periodically logs a structured stats line and halts as soon
// as it observes zero live sink workers.
type Monitor struct {
	Metrics *metrics.Metrics
	Period  time.Duration
}

// statsLine is the JSON payload of one periodic monitor log line.
type statsLine struct {
	UptimeSeconds       float64 `json:"uptime_seconds"`
	WorkersStarted      int64   `json:"workers_started"`
	WorkersLive         int64   `json:"workers_live"`
	InputTotal          int64   `json:"input_total"`
	OutputTotal         int64   `json:"output_total"`
	InputIntervalDelta  int64   `json:"input_interval_delta"`
	OutputIntervalDelta int64   `json:"output_interval_delta"`
	InputIntervalRate   float64 `json:"input_interval_rate_per_sec"`
	OutputIntervalRate  float64 `json:"output_interval_rate_per_sec"`
	InputLifetimeRate   float64 `json:"input_lifetime_rate_per_sec"`
	OutputLifetimeRate  float64 `json:"output_lifetime_rate_per_sec"`
}

// Run blocks until the monitor observes zero live workers or ctx is
// cancelled.
func (m *Monitor) Run(ctx context.Context) {
	period := m.Period
	if period <= 0 {
		period = 600 * time.Second
	}

	start := time.Now()
	ticker := time.NewTicker(pollSlice)
	defer ticker.Stop()

	var lastInput, lastOutput int64
	var elapsedInPeriod time.Duration
	loggedLowWorkers := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsedInPeriod += pollSlice

			snap := m.Metrics.Snapshot()
			if snap.WorkersLive <= 0 {
				log.Printf("[monitor] all sink workers have exited, halting")
				return
			}
			if snap.WorkersStarted > 0 && !loggedLowWorkers &&
				float64(snap.WorkersLive) < float64(snap.WorkersStarted)*0.5 {
				log.Printf("[monitor] warning: running low on workers (%d/%d live)", snap.WorkersLive, snap.WorkersStarted)
				loggedLowWorkers = true
			}

			if elapsedInPeriod < period {
				continue
			}
			elapsedInPeriod = 0

			uptime := time.Since(start)
			line := statsLine{
				UptimeSeconds:       uptime.Seconds(),
				WorkersStarted:      snap.WorkersStarted,
				WorkersLive:         snap.WorkersLive,
				InputTotal:          snap.InputCounter,
				OutputTotal:         snap.OutputCounter,
				InputIntervalDelta:  snap.InputCounter - lastInput,
				OutputIntervalDelta: snap.OutputCounter - lastOutput,
				InputIntervalRate:   ratePerSecond(snap.InputCounter-lastInput, period),
				OutputIntervalRate:  ratePerSecond(snap.OutputCounter-lastOutput, period),
				InputLifetimeRate:   ratePerSecond(snap.InputCounter, uptime),
				OutputLifetimeRate:  ratePerSecond(snap.OutputCounter, uptime),
			}
			lastInput, lastOutput = snap.InputCounter, snap.OutputCounter

			payload, err := json.Marshal(line)
			if err != nil {
				log.Printf("[monitor] marshal stats line: %v", err)
				continue
			}
			log.Printf("[monitor] %s", payload)
		}
	}
}

func ratePerSecond(count int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(count) / d.Seconds()
}
