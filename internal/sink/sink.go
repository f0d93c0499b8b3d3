package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/governor"
	"github.com/senzing-garage/stream-producer/internal/metrics"
	"github.com/senzing-garage/stream-producer/internal/model"
	"github.com/senzing-garage/stream-producer/internal/queue"
)

// reenqueueTimeout bounds how long a worker will block re-enqueuing
// EndOfStream for its siblings. Per the design note in SPEC_FULL.md §9,
// a plain blocking Put here can hang forever if the queue is full and
// every other worker has already exited and stopped draining it.
const reenqueueTimeout = 30 * time.Second

// Worker is one sink-stage worker: IDLE -> PUBLISHING -> (BUFFERED) ->
// FLUSHING -> CLOSED. It owns one Publisher and one Queue consumer
// loop.
type Worker struct {
	Name      string // sink kind, for log tags: "stdout", "kafka", "rabbitmq", "sqs"
	ID        int
	Queue     *queue.Queue
	Metrics   *metrics.Metrics
	Config    *config.Snapshot
	Governor  governor.Governor
	Publisher Publisher
}

// Run drives the worker loop described in spec §4.3 until it observes
// EndOfStream, flushes any partial batch, and closes its publisher and
// governor handle.
func (w *Worker) Run(ctx context.Context) {
	defer func() {
		if err := w.Publisher.Close(); err != nil {
			log.Printf("[sink:%s] worker %d close publisher: %v", w.Name, w.ID, err)
		}
		if err := w.Governor.Close(); err != nil {
			log.Printf("[sink:%s] worker %d close governor: %v", w.Name, w.ID, err)
		}
	}()

	recordsPerMessage := w.Config.RecordsPerMessage
	if recordsPerMessage <= 0 {
		recordsPerMessage = 1
	}
	buffer := make([][]byte, 0, recordsPerMessage)
	processed := 0

	for {
		env := w.Queue.Get()
		if model.IsEndOfStream(env) {
			if err := w.Queue.PutTimeout(model.EndOfStream, reenqueueTimeout); err != nil {
				log.Printf("[sink:%s] worker %d: %v, proceeding to shutdown without re-enqueue", w.Name, w.ID, err)
			}
			if len(buffer) > 0 {
				if err := w.flush(ctx, buffer); err != nil {
					log.Printf("[sink:%s] worker %d final flush failed: %v", w.Name, w.ID, err)
				}
			}
			log.Printf("[sink:%s] worker %d observed EndOfStream, exiting", w.Name, w.ID)
			return
		}

		rec, ok := env.(model.Record)
		if !ok {
			continue
		}

		if err := w.Governor.Govern(); err != nil {
			log.Printf("[sink:%s] worker %d governor denied publish: %v", w.Name, w.ID, err)
			continue
		}

		payload, identifier, err := w.evaluate(rec)
		if err != nil {
			log.Printf("[sink:%s] worker %d serialize record: %v", w.Name, w.ID, err)
			continue
		}

		if w.Config.RecordSizeMax > 0 && len(payload) > w.Config.RecordSizeMax {
			log.Printf("[sink:%s] worker %d dropping oversize record %s=%v (%d bytes exceeds record_size_max=%d)",
				w.Name, w.ID, w.Config.RecordIdentifier, identifier, len(payload), w.Config.RecordSizeMax)
			w.Metrics.IncrementDroppedOversize()
			continue
		}

		if recordsPerMessage <= 1 {
			if err := w.Publisher.Publish(ctx, payload); err != nil {
				log.Printf("[sink:%s] worker %d publish failed, dropping record: %v", w.Name, w.ID, err)
				continue
			}
		} else {
			buffer = append(buffer, payload)
			if len(buffer) >= recordsPerMessage {
				if err := w.flush(ctx, buffer); err != nil {
					log.Printf("[sink:%s] worker %d publish batch failed: %v", w.Name, w.ID, err)
				}
				buffer = buffer[:0]
			}
		}

		w.Metrics.IncrementOutput()
		processed++
		if w.Config.RecordMonitor > 0 && processed%w.Config.RecordMonitor == 0 {
			log.Printf("[sink:%s] worker %d published %d records", w.Name, w.ID, processed)
		}
	}
}

// flush wraps buffer's already-serialized record payloads into a single
// JSON array message and publishes it, resetting the caller's slice is
// the caller's responsibility.
func (w *Worker) flush(ctx context.Context, buffer [][]byte) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, payload := range buffer {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(payload)
	}
	buf.WriteByte(']')
	return w.Publisher.Publish(ctx, buf.Bytes())
}

// evaluate clones rec, injects DATA_SOURCE/ENTITY_TYPE defaults when
// configured and not already present, and serializes it to JSON. It
// returns the record's identifier field value alongside the payload so
// callers can cite it in an oversize-drop warning without re-parsing.
func (w *Worker) evaluate(rec model.Record) (payload []byte, identifier interface{}, err error) {
	out := rec.Clone()
	if w.Config.DefaultDataSource != "" {
		if _, present := out["DATA_SOURCE"]; !present {
			out["DATA_SOURCE"] = w.Config.DefaultDataSource
		}
	}
	if w.Config.DefaultEntityType != "" {
		if _, present := out["ENTITY_TYPE"]; !present {
			out["ENTITY_TYPE"] = w.Config.DefaultEntityType
		}
	}
	identifier = out[w.Config.RecordIdentifier]
	payload, err = json.Marshal(out)
	if err != nil {
		return nil, identifier, fmt.Errorf("marshal record: %w", err)
	}
	return payload, identifier, nil
}
