package exporter

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"emperror.dev/errors"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/tegrastats-exporter/pkg/aggregator"
	"github.com/voluzi/tegrastats-exporter/pkg/metrics"
	"github.com/voluzi/tegrastats-exporter/pkg/source"
	"github.com/voluzi/tegrastats-exporter/pkg/tegrastats"
)

// Exporter reads tegrastats lines from a source, aggregates them into
// windows and serves the results over HTTP.
type Exporter struct {
	server     *http.Server
	router     *mux.Router
	cfg        *Options
	source     source.Source
	registry   *metrics.Registry
	aggregator *aggregator.Aggregator
	ready      atomic.Bool
	consumed   chan struct{}
	stopOnce   sync.Once
}

func New(src source.Source, opts ...Option) (*Exporter, error) {
	if src == nil {
		return nil, errors.New("a line source is required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	registry := metrics.NewRegistry(options.Hostname)
	aggOpts := append([]aggregator.Option{aggregator.WithObserver(registry)}, options.Aggregator...)

	e := &Exporter{
		cfg:        options,
		router:     mux.NewRouter(),
		source:     src,
		registry:   registry,
		aggregator: aggregator.New(registry, aggOpts...),
		consumed:   make(chan struct{}),
	}
	e.registerRoutes()
	e.server = &http.Server{Addr: fmt.Sprintf("%s:%d", options.Host, options.Port), Handler: e.router}
	return e, nil
}

// Start consumes the source in the background and serves HTTP until Stop is
// called or the source reaches end of stream.
func (e *Exporter) Start() error {
	go e.consume()

	log.WithFields(log.Fields{
		"source":   e.source.Name(),
		"hostname": e.cfg.Hostname,
		"interval": e.aggregator.Interval(),
	}).Infof("server started listening on %s ...", e.server.Addr)
	err := e.server.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the source and gracefully shuts the HTTP server down. Samples of
// the open window are discarded.
func (e *Exporter) Stop() error {
	var err error
	e.stopOnce.Do(func() {
		log.Info("stopping exporter")
		if serr := e.source.Stop(); serr != nil {
			log.Errorf("failed to stop %s source: %v", e.source.Name(), serr)
		}

		log.WithField("pending-samples", e.aggregator.SampleCount()).Debug("shutting down http server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = e.server.Shutdown(ctx)
	})
	return err
}

// Done is closed once the source has been drained.
func (e *Exporter) Done() <-chan struct{} {
	return e.consumed
}

func (e *Exporter) consume() {
	defer close(e.consumed)

	for line := range e.source.Lines() {
		if line.Err != nil {
			e.registry.IncCounter(metrics.SourceErrorsTotal, 1)
			log.Errorf("error reading from %s source: %v", e.source.Name(), line.Err)
			continue
		}
		e.ProcessLine(line.Text)
	}

	log.WithField("source", e.source.Name()).Info("end of stream")
	if err := e.Stop(); err != nil {
		log.Errorf("failed to stop exporter: %v", err)
	}
}

// ProcessLine parses one line into the open window and flushes the window
// when its interval has elapsed. It returns the flushed snapshot, if any.
func (e *Exporter) ProcessLine(text string) *aggregator.Snapshot {
	reading := tegrastats.Parse(text)
	e.registry.IncCounter(metrics.LinesTotal, 1)

	if n := e.aggregator.Add(reading); n > 0 {
		e.registry.IncCounter(metrics.SamplesTotal, float64(n))
	} else {
		log.WithField("line", text).Trace("no samples in line")
	}

	if !e.aggregator.Due() {
		return nil
	}
	snapshot := e.aggregator.Flush()
	e.ready.Store(true)
	return snapshot
}

// Handler returns the exporter's HTTP routes.
func (e *Exporter) Handler() http.Handler {
	return e.router
}

// Registry exposes the metrics registry backing /metrics.
func (e *Exporter) Registry() *metrics.Registry {
	return e.registry
}

// ResolveHostname picks the host identity: an explicit value, then the
// HOSTNAME variable, then the kernel hostname.
func ResolveHostname(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return DefaultHostname
}
