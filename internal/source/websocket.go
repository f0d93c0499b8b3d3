package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/metrics"
	"github.com/senzing-garage/stream-producer/internal/model"
	"github.com/senzing-garage/stream-producer/internal/queue"
)

// WebsocketSource is the source variant for a server-initiated push
// channel: it runs an HTTP server that upgrades connections to
// websockets and treats every inbound text frame as one JSON record.
// Internally it is an async server; from the pipeline's perspective it
// is still a blocking producer, since Run does not return until the
// server is shut down, matching every other Source implementation.
type WebsocketSource struct {
	Queue   *queue.Queue
	Metrics *metrics.Metrics
	Config  *config.Snapshot

	mu      sync.Mutex
	ordinal int
	closed  bool
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Run starts the websocket server and blocks until ctx is cancelled
// (process-level SIGINT/SIGTERM, per spec §5 — there is no cooperative
// cancellation otherwise) or the record window's upper bound closes the
// stream. Exactly one model.EndOfStream is enqueued before it returns.
func (s *WebsocketSource) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConn)

	addr := fmt.Sprintf("%s:%d", s.Config.WebsocketHost, s.Config.WebsocketPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[source:websocket] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case <-ctx.Done():
			break wait
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("SourceError: websocket server: %w", err)
			}
			break wait
		case <-ticker.C:
			s.mu.Lock()
			windowClosed := s.closed
			s.mu.Unlock()
			if windowClosed {
				break wait
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	s.mu.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	if !alreadyClosed {
		s.Queue.Put(model.EndOfStream)
	}
	return nil
}

func (s *WebsocketSource) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[source:websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var rec model.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			log.Printf("[source:websocket] dropping unparseable frame: %v", err)
			continue
		}
		if s.emit(rec) {
			return
		}
	}
}

// emit applies the record-window filter under the source's shared
// ordinal counter (websocket connections run concurrently, unlike every
// other Decoder which is single-threaded) and reports whether the
// window's upper bound was just reached.
func (s *WebsocketSource) emit(rec model.Record) (windowClosed bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return true
	}
	s.ordinal++
	ordinal := s.ordinal
	s.mu.Unlock()

	if s.Config.RecordMin > 0 && ordinal < s.Config.RecordMin {
		return false
	}
	s.Queue.Put(rec)
	s.Metrics.IncrementInput()

	if s.Config.RecordMax > 0 && ordinal >= s.Config.RecordMax {
		s.mu.Lock()
		already := s.closed
		s.closed = true
		s.mu.Unlock()
		if !already {
			s.Queue.Put(model.EndOfStream)
		}
		return true
	}
	return false
}
