// Package sink implements the sink stage: the N-worker pool that pulls
// records off the hand-off queue, applies the governor and the oversize
// gate, serializes to JSON, batches if configured, and publishes to
// exactly one configured downstream. Each worker owns its own
// network Publisher (Kafka, RabbitMQ, SQS); the stdout Publisher is the
// one instance shared by every worker.
package sink

import "context"

// Publisher is the contract a sink-specific client must satisfy. A
// network Publisher instance is owned by exactly one Worker; the stdout
// Publisher is shared by all of them. Publish is called with one
// fully-formed message body (a single JSON object or a JSON array of up
// to K objects); it never sees a Record directly. Close flushes pending
// callbacks and releases the underlying connection; each worker calls
// it once, when it observes EndOfStream, so a shared stdout Publisher
// is closed once per worker.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}
