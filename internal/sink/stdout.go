package sink

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// StdoutPublisher writes each message as one line to the given writer
// (the process's standard output in production, an arbitrary io.Writer
// in tests). Batched messages are still written as a single line — the
// JSON array is not pretty-printed across lines.
//
// Unlike Kafka/RabbitMQ/SQS, stdout is one resource genuinely shared by
// every sink worker (they all write to the same fd), so pipeline.Run
// calls Build once and hands every worker the same *StdoutPublisher
// instance rather than one per worker. mu serializes each Publish call's write+newline and each
// Close's flush so one worker's buffer flush can never land mid-line
// between another worker's write and its trailing newline.
type StdoutPublisher struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewStdoutPublisher wraps w in a buffered writer so high-throughput
// load-test runs don't pay a syscall per message.
func NewStdoutPublisher(w io.Writer) *StdoutPublisher {
	return &StdoutPublisher{w: bufio.NewWriter(w)}
}

// Publish implements Publisher.
func (p *StdoutPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.w.Write(payload); err != nil {
		return err
	}
	return p.w.WriteByte('\n')
}

// Close implements Publisher, flushing any buffered output. Every sink
// worker calls Close once at shutdown; since they share one instance,
// each call simply flushes whatever the others have not yet forced out.
func (p *StdoutPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.Flush()
}
