// Package pipeline wires the source stage, the hand-off queue, the
// sink worker pool, and the monitor into the concurrent
// pipes-and-filters pipeline, and drives its INIT -> RUNNING ->
// DRAINING -> STOPPED lifecycle.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/governor"
	"github.com/senzing-garage/stream-producer/internal/metrics"
	"github.com/senzing-garage/stream-producer/internal/monitor"
	"github.com/senzing-garage/stream-producer/internal/queue"
	"github.com/senzing-garage/stream-producer/internal/sink"
	"github.com/senzing-garage/stream-producer/internal/source"
)

// handicap is the fixed pause between spawning the source and spawning
// the sink workers, letting the source prime the queue first, per
// spec §4.6.
const handicap = 5 * time.Second

// sourceRunner is satisfied by both source.Source (file/http/s3) and
// source.WebsocketSource (the server-initiated push variant); the
// pipeline is blind to which one it was handed.
type sourceRunner interface {
	Run(ctx context.Context) error
}

// State is one of the four pipeline lifecycle states from spec §4.6.
type State int

const (
	StateInit State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Pipeline is one run of the producer: one source, one hand-off queue,
// N sink workers, one monitor, one shared governor.
type Pipeline struct {
	Config *config.Snapshot
	Format source.Format
	Sink   sink.Kind

	Metrics *metrics.Metrics
	Queue   *queue.Queue

	mu    sync.Mutex
	state State
}

// New constructs a Pipeline ready to Run.
func New(cfg *config.Snapshot, format source.Format, sinkKind sink.Kind) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Format:  format,
		Sink:    sinkKind,
		Metrics: metrics.New(),
		Queue:   queue.New(cfg.ReadQueueMaxSize),
	}
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	log.Printf("[pipeline] state -> %s", s)
}

// State reports the pipeline's current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run builds the source and sink-worker pool for the configured format
// and sink, spawns them with the handicap described in spec §4.6, and
// blocks until every sink worker has observed EndOfStream and exited
// (STOPPED). A fatal source error is returned once the source goroutine
// reports it; sink-worker errors are never fatal and are only logged.
func (p *Pipeline) Run(ctx context.Context) error {
	p.setState(StateInit)

	runner, err := p.buildSource(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: build source: %w", err)
	}

	gov, err := governor.Load(p.Config.GovernorPluginPath)
	if err != nil {
		return fmt.Errorf("pipeline: load governor: %w", err)
	}

	sourceErrCh := make(chan error, 1)
	go func() {
		sourceErrCh <- runner.Run(ctx)
	}()

	select {
	case <-time.After(handicap):
	case err := <-sourceErrCh:
		// The source finished (or failed) before the handicap elapsed —
		// still spin up workers so they can drain whatever made it onto
		// the queue, including a very small or empty input.
		if err != nil {
			p.setState(StateStopped)
			return err
		}
		sourceErrCh <- nil
	}

	p.setState(StateRunning)

	// Stdout is one process-level resource shared by every worker (they
	// all write to the same fd), so it is built once and handed to every
	// worker; every other sink gets its own client per worker, per spec
	// §5.
	var sharedPublisher sink.Publisher
	if p.Sink == sink.KindStdout {
		var err error
		sharedPublisher, err = sink.Build(ctx, p.Sink, p.Config)
		if err != nil {
			return fmt.Errorf("pipeline: build shared stdout publisher: %w", err)
		}
	}

	p.Metrics.SetWorkersStarted(p.Config.ThreadsPerPrint)
	var wg sync.WaitGroup
	for i := 0; i < p.Config.ThreadsPerPrint; i++ {
		publisher := sharedPublisher
		if publisher == nil {
			var err error
			publisher, err = sink.Build(ctx, p.Sink, p.Config)
			if err != nil {
				return fmt.Errorf("pipeline: build sink worker %d: %w", i, err)
			}
		}
		w := &sink.Worker{
			Name:      string(p.Sink),
			ID:        i,
			Queue:     p.Queue,
			Metrics:   p.Metrics,
			Config:    p.Config,
			Governor:  gov,
			Publisher: publisher,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.Metrics.WorkerExited()
			w.Run(ctx)
		}()
	}

	monitorDone := make(chan struct{})
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	go func() {
		defer close(monitorDone)
		m := &monitor.Monitor{
			Metrics: p.Metrics,
			Period:  time.Duration(p.Config.MonitoringPeriodInSeconds) * time.Second,
		}
		m.Run(monitorCtx)
	}()

	// DRAINING begins once the source has enqueued EndOfStream, which
	// happens strictly before it returns; we don't have a separate
	// signal for it, so we transition here as the representative point
	// between "source done producing" and "sinks done consuming".
	p.setState(StateDraining)

	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	// A source that fails never enqueues EndOfStream, so the workers would
	// never exit; its error is returned as soon as it arrives.
	var sourceErr error
	select {
	case <-workersDone:
		sourceErr = <-sourceErrCh
	case sourceErr = <-sourceErrCh:
		if sourceErr == nil {
			<-workersDone
		}
	}
	cancelMonitor()
	<-monitorDone

	p.setState(StateStopped)
	return sourceErr
}

// buildSource constructs the sourceRunner for p.Format: the websocket
// format is driven by source.WebsocketSource directly (it is a
// server-initiated push channel, not a bounded readable stream); every
// other format is driven by a source.Source pairing a Transport chosen
// by the input URL's scheme with the Decoder chosen by format.
func (p *Pipeline) buildSource(ctx context.Context) (sourceRunner, error) {
	if p.Format == source.FormatWebsocket {
		return &source.WebsocketSource{
			Queue:   p.Queue,
			Metrics: p.Metrics,
			Config:  p.Config,
		}, nil
	}

	transport, err := source.TransportFor(ctx, p.Config.InputURL)
	if err != nil {
		return nil, err
	}
	decoder, err := source.DecoderFor(p.Format)
	if err != nil {
		return nil, err
	}
	return &source.Source{
		Transport: transport,
		Decoder:   decoder,
		Queue:     p.Queue,
		Metrics:   p.Metrics,
		Config:    p.Config,
	}, nil
}
