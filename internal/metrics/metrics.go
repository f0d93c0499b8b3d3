// Package metrics holds the pipeline's shared counters. The teacher's
// module-level mutable counters (audit event totals logged ad hoc in
// internal/audit) become a single aggregate passed to every worker here,
// with atomic increments and a point-in-time snapshot for the monitor.
package metrics

import "sync/atomic"

// Metrics aggregates the two monotonically increasing pipeline counters.
// A single instance is shared across the source, every sink worker, and
// the monitor; all mutation goes through atomic operations.
type Metrics struct {
	inputCounter  int64
	outputCounter int64
	droppedOversize int64
	workersStarted  int64
	workersLive     int64
}

// New returns a zeroed Metrics aggregate.
func New() *Metrics {
	return &Metrics{}
}

// IncrementInput records one record emitted by the source past the
// record-window filter.
func (m *Metrics) IncrementInput() {
	atomic.AddInt64(&m.inputCounter, 1)
}

// IncrementOutput records one record accepted by a sink.
func (m *Metrics) IncrementOutput() {
	atomic.AddInt64(&m.outputCounter, 1)
}

// IncrementDroppedOversize records one record dropped for exceeding
// record_size_max.
func (m *Metrics) IncrementDroppedOversize() {
	atomic.AddInt64(&m.droppedOversize, 1)
}

// SetWorkersStarted records the initial sink worker count. Called once
// at pipeline start.
func (m *Metrics) SetWorkersStarted(n int) {
	atomic.StoreInt64(&m.workersStarted, int64(n))
	atomic.StoreInt64(&m.workersLive, int64(n))
}

// WorkerExited decrements the live worker count and returns the new
// value.
func (m *Metrics) WorkerExited() int64 {
	return atomic.AddInt64(&m.workersLive, -1)
}

// Snapshot is a point-in-time, allocation-free copy of the counters,
// safe to read concurrently with further mutation.
type Snapshot struct {
	InputCounter    int64
	OutputCounter   int64
	DroppedOversize int64
	WorkersStarted  int64
	WorkersLive     int64
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		InputCounter:    atomic.LoadInt64(&m.inputCounter),
		OutputCounter:   atomic.LoadInt64(&m.outputCounter),
		DroppedOversize: atomic.LoadInt64(&m.droppedOversize),
		WorkersStarted:  atomic.LoadInt64(&m.workersStarted),
		WorkersLive:     atomic.LoadInt64(&m.workersLive),
	}
}
