package aggregator

import (
	"time"

	"github.com/voluzi/tegrastats-exporter/pkg/tegrastats"
)

type bufferKey struct {
	field tegrastats.Field
	label string
}

// Window is the accumulation state of one flush interval.
type Window struct {
	Start   time.Time
	buffers map[bufferKey][]float64
	count   int
}

func newWindow(start time.Time) *Window {
	return &Window{
		Start:   start,
		buffers: make(map[bufferKey][]float64),
	}
}

func (w *Window) record(field tegrastats.Field, label string, value float64) {
	key := bufferKey{field: field, label: label}
	w.buffers[key] = append(w.buffers[key], value)
	w.count++
}

// Len returns the number of samples in the window.
func (w *Window) Len() int {
	return w.count
}

func (w *Window) values(field tegrastats.Field, label string) []float64 {
	return w.buffers[bufferKey{field: field, label: label}]
}

// labels returns the labels recorded for a field, in no particular order.
func (w *Window) labels(field tegrastats.Field) []string {
	var out []string
	for key := range w.buffers {
		if key.field == field {
			out = append(out, key.label)
		}
	}
	return out
}

// Record appends one sample to the open window.
func (a *Aggregator) Record(field tegrastats.Field, label string, value float64) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.window.record(field, label, value)
}

// Add records every sample of a parsed line into the open window and returns
// how many were recorded.
func (a *Aggregator) Add(r *tegrastats.Reading) int {
	if r == nil {
		return 0
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	a.trackCores(r.CoreCount)
	for _, s := range r.Samples {
		a.window.record(s.Field, s.Label, s.Value)
	}
	return len(r.Samples)
}
