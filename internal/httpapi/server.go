// Package httpapi exposes a small introspection surface over HTTP: the
// list of live workers and the Prometheus metrics endpoint.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerInfo is the wire representation of one live worker.
type WorkerInfo struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Transport string `json:"transport"`
}

// Lister supplies the current worker snapshot.
type Lister interface {
	List() []WorkerInfo
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func() []WorkerInfo

func (f ListerFunc) List() []WorkerInfo { return f() }

// NewHandler creates the introspection HTTP handler.
func NewHandler(lister Lister, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/workers", func(w http.ResponseWriter, req *http.Request) {
		workers := lister.List()
		if workers == nil {
			workers = []WorkerInfo{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(workers); err != nil {
			http.Error(w, "encode workers", http.StatusInternalServerError)
		}
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
