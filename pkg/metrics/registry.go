package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Registry holds every series the exporter publishes. All series carry the
// host identity as a constant label.
type Registry struct {
	registry *prometheus.Registry
	gauges   map[string]*prometheus.GaugeVec
	counters map[string]prometheus.Counter
	stats    map[string]prometheus.Gauge
}

// NewRegistry creates a registry for the given host identity.
func NewRegistry(hostname string) *Registry {
	constLabels := prometheus.Labels{HostnameLabel: hostname}
	r := &Registry{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]*prometheus.GaugeVec, len(gaugeDefs)),
		counters: make(map[string]prometheus.Counter, len(counterDefs)),
		stats:    make(map[string]prometheus.Gauge, 1),
	}

	for _, def := range gaugeDefs {
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        def.name,
			Help:        def.help,
			ConstLabels: constLabels,
		}, def.labels)
		r.gauges[def.name] = vec
		r.registry.MustRegister(vec)
		initSeries(vec, def)
	}

	for name, help := range counterDefs {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
		r.counters[name] = c
		r.registry.MustRegister(c)
	}

	lastFlush := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        LastFlushTimestamp,
		Help:        "Unix time of the last window flush.",
		ConstLabels: constLabels,
	})
	r.stats[LastFlushTimestamp] = lastFlush
	r.registry.MustRegister(lastFlush)

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// initSeries exposes a series at 0 until the first flush publishes it.
// Disk series are left out since their mount point label is set at flush.
func initSeries(vec *prometheus.GaugeVec, def gaugeDef) {
	switch {
	case len(def.labels) == 0:
		vec.WithLabelValues().Set(0)
	case len(def.labels) == 1:
		for _, value := range def.initial {
			vec.WithLabelValues(value).Set(0)
		}
	}
}

// Publish sets one labeled value. Unknown series and label sets that do not
// match the series are logged and dropped.
func (r *Registry) Publish(series string, labels map[string]string, value float64) {
	vec, ok := r.gauges[series]
	if !ok {
		log.WithField("series", series).Error("publish to unknown series")
		return
	}
	g, err := vec.GetMetricWith(labels)
	if err != nil {
		log.WithField("series", series).Errorf("invalid labels: %v", err)
		return
	}
	g.Set(value)
}

func (r *Registry) IncCounter(name string, v float64) {
	if c, ok := r.counters[name]; ok {
		c.Add(v)
	}
}

func (r *Registry) SetGauge(name string, v float64) {
	if g, ok := r.stats[name]; ok {
		g.Set(v)
	}
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry:      r.registry,
		ErrorHandling: promhttp.ContinueOnError,
	})
}
