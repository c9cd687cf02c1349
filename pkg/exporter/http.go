package exporter

import (
	"net/http"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

func (e *Exporter) registerRoutes() {
	e.router.Handle("/metrics", e.registry.Handler()).Methods(http.MethodGet)
	e.router.HandleFunc("/health", e.health).Methods(http.MethodGet)
	e.router.HandleFunc("/ready", e.readyHandler).Methods(http.MethodGet)
	e.router.HandleFunc("/snapshot", e.snapshot).Methods(http.MethodGet)
}

func (e *Exporter) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready once at least one window has been published.
func (e *Exporter) readyHandler(w http.ResponseWriter, r *http.Request) {
	if !e.ready.Load() {
		log.Debug("no window flushed yet")
		w.WriteHeader(http.StatusExpectationFailed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (e *Exporter) snapshot(w http.ResponseWriter, r *http.Request) {
	last := e.aggregator.Last()
	if last == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	b, err := json.Marshal(last)
	if err != nil {
		log.Errorf("error encoding snapshot to json: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
