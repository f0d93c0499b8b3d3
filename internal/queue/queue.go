// Package queue implements the bounded, blocking hand-off FIFO between
// the source stage and the sink worker pool.
package queue

import (
	"errors"
	"time"

	"github.com/senzing-garage/stream-producer/internal/model"
)

// ErrNoConsumers is returned by PutTimeout when the queue is full and no
// consumer drained it before the deadline. It lets the last surviving
// sink worker give up on EndOfStream re-enqueue instead of blocking
// forever (see design note on the re-enqueue-with-timeout fix).
var ErrNoConsumers = errors.New("queue: put timed out, no consumer available")

// Queue is a single-producer, multi-consumer bounded FIFO of
// model.Envelope values. Capacity is fixed at construction
// (read_queue_maxsize). Put blocks while the queue is full; Get blocks
// while it is empty.
type Queue struct {
	ch chan model.Envelope
}

// New returns a Queue with room for capacity envelopes in flight.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan model.Envelope, capacity)}
}

// Put enqueues env, blocking while the queue is at capacity.
func (q *Queue) Put(env model.Envelope) {
	q.ch <- env
}

// Get dequeues the next envelope, blocking while the queue is empty.
func (q *Queue) Get() model.Envelope {
	return <-q.ch
}

// PutTimeout enqueues env, blocking for at most timeout before giving up.
// Sink workers use this to re-enqueue EndOfStream: if the queue is full
// and every other worker has already exited and stopped draining it, a
// plain blocking Put would hang forever. Returning ErrNoConsumers lets
// the caller exit instead.
func (q *Queue) PutTimeout(env model.Envelope, timeout time.Duration) error {
	select {
	case q.ch <- env:
		return nil
	case <-time.After(timeout):
		return ErrNoConsumers
	}
}

// Len reports the number of envelopes currently buffered. It is
// advisory only — concurrent Put/Get calls may change it immediately
// after the call returns.
func (q *Queue) Len() int {
	return len(q.ch)
}
