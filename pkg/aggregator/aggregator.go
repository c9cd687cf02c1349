package aggregator

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/voluzi/tegrastats-exporter/pkg/metrics"
)

// Publisher receives reduced values at flush. Each call must be atomic for its series.
type Publisher interface {
	Publish(series string, labels map[string]string, value float64)
}

// Observer receives the aggregator's own bookkeeping counters.
type Observer interface {
	IncCounter(name string, v float64)
	SetGauge(name string, v float64)
}

type noopObserver struct{}

func (noopObserver) IncCounter(string, float64) {}
func (noopObserver) SetGauge(string, float64)   {}

// Aggregator buffers samples for the open window and reduces them into the
// publisher when the window is flushed.
type Aggregator struct {
	lock   sync.Mutex
	window *Window

	// cores is the highest core count seen since start, expectedCores the
	// count reported by the most recent line with a CPU block.
	cores         int
	expectedCores int

	// flushLock keeps publishes of consecutive flushes in order.
	flushLock sync.Mutex
	last      atomic.Pointer[Snapshot]

	publisher Publisher
	cfg       *Options
	warnings  *throttle
}

// New creates an Aggregator with an open window starting now.
func New(publisher Publisher, opts ...Option) *Aggregator {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Aggregator{
		window:    newWindow(options.Clock()),
		publisher: publisher,
		cfg:       options,
		warnings:  newThrottle(options.WarnInterval),
	}
}

// Interval returns the configured window length.
func (a *Aggregator) Interval() time.Duration {
	return a.cfg.Interval
}

// Due reports whether the open window has reached the flush interval.
func (a *Aggregator) Due() bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.cfg.Clock().Sub(a.window.Start) >= a.cfg.Interval
}

// WindowStart returns the start time of the open window.
func (a *Aggregator) WindowStart() time.Time {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.window.Start
}

// SampleCount returns the number of samples buffered in the open window.
func (a *Aggregator) SampleCount() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.window.Len()
}

// Last returns the snapshot of the most recent flush, nil before the first one.
func (a *Aggregator) Last() *Snapshot {
	return a.last.Load()
}

func (a *Aggregator) trackCores(count int) {
	if count <= 0 {
		return
	}
	if a.expectedCores != 0 && count != a.expectedCores {
		a.cfg.Observer.IncCounter(metrics.CoreCountChangesTotal, 1)
		a.warn("cores", "cpu core count changed", log.Fields{
			"previous": a.expectedCores,
			"current":  count,
		})
	}
	a.expectedCores = count
	if count > a.cores {
		a.cores = count
	}
}

func (a *Aggregator) warn(key, msg string, fields log.Fields) {
	entry := log.WithFields(fields)
	if !a.warnings.allow(key) {
		entry.Debug(msg)
		return
	}
	entry.Warn(msg)
}

var _ Publisher = (*metrics.Registry)(nil)
var _ Observer = (*metrics.Registry)(nil)
