// Package source implements the source stage: open the configured input,
// decode it into records, apply the record-window filter, and enqueue
// onto the hand-off queue. The filter class the teacher's ancestor
// composed via mixins is re-architected here as explicit composition —
// a Source embeds a Transport and a Decoder, each a small interface
// swapped in at start-up based on the subcommand (see design note in
// SPEC_FULL.md §9).
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/metrics"
	"github.com/senzing-garage/stream-producer/internal/model"
	"github.com/senzing-garage/stream-producer/internal/queue"
)

// errWindowClosed is returned internally by the emit callback once the
// record-window's upper bound has been reached, telling the active
// Decoder to stop reading cleanly. It is never returned to callers of
// Run.
var errWindowClosed = errors.New("source: record window closed")

// Transport opens the configured input URL and returns a readable
// stream. Implementations are chosen by URL scheme at start-up.
type Transport interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Decoder reads a decoded stream of records from r, invoking emit for
// each one in order. emit returns errWindowClosed to signal the decoder
// should stop reading (the record-window's upper bound was reached);
// a Decoder must treat that as a clean stop, not an error to propagate
// further than returning it verbatim.
type Decoder interface {
	Decode(ctx context.Context, r io.ReadCloser, cfg *config.Snapshot, emit func(model.Record) error) error
}

// Source is the one source-stage worker. It owns a Transport and a
// Decoder, pulled in by format and URL scheme at construction, and
// drives the record-window filter and EndOfStream termination.
type Source struct {
	Transport Transport
	Decoder   Decoder
	Queue     *queue.Queue
	Metrics   *metrics.Metrics
	Config    *config.Snapshot
}

// Run opens the input, decodes it, and enqueues every record that
// survives the record-window filter, followed by exactly one
// model.EndOfStream. It returns a non-nil error only for a fatal
// SourceError (I/O failure or decoder error); the caller must treat
// that as fatal to the whole pipeline per spec.
func (s *Source) Run(ctx context.Context) error {
	rc, err := s.Transport.Open(ctx, s.Config.InputURL)
	if err != nil {
		return fmt.Errorf("SourceError: open %s: %w", s.Config.InputURL, err)
	}
	defer rc.Close()

	ordinal := 0
	emit := func(rec model.Record) error {
		ordinal++
		if s.Config.RecordMin > 0 && ordinal < s.Config.RecordMin {
			return nil
		}
		s.Queue.Put(rec)
		s.Metrics.IncrementInput()
		if s.Config.RecordMax > 0 && ordinal >= s.Config.RecordMax {
			return errWindowClosed
		}
		return nil
	}

	decodeErr := s.Decoder.Decode(ctx, rc, s.Config, emit)
	if decodeErr != nil && !errors.Is(decodeErr, errWindowClosed) {
		return fmt.Errorf("SourceError: decode %s: %w", s.Config.InputURL, decodeErr)
	}

	log.Printf("[source] end of input reached, ordinal=%d", ordinal)
	s.Queue.Put(model.EndOfStream)
	return nil
}
