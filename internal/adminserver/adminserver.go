// Package adminserver is the small diagnostics HTTP server backing the
// docker-acceptance-test subcommand: a health probe and a JSON metrics
// snapshot, grounded on the teacher's kernel/cmd/kernel/main.go router
// wiring and its /kernel/security/status endpoint.
package adminserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/senzing-garage/stream-producer/internal/metrics"
)

// New builds the chi router for the admin server. It never touches the
// pipeline's hand-off queue or sink workers directly — only the shared
// Metrics aggregate — so it carries no risk of becoming a second
// consumer of the queue.
func New(m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", healthzHandler)
	r.Get("/metrics", metricsHandler(m))
	return r
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func metricsHandler(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := m.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
