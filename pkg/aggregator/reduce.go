package aggregator

import (
	"sort"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/voluzi/tegrastats-exporter/pkg/metrics"
	"github.com/voluzi/tegrastats-exporter/pkg/tegrastats"
)

var fieldSeries = map[tegrastats.Field]string{
	tegrastats.CPUUsage:    metrics.CPUUsageSeries,
	tegrastats.GPUUsage:    metrics.GPUUsageSeries,
	tegrastats.GPUFreq:     metrics.GPUFreqSeries,
	tegrastats.RAMUsed:     metrics.RAMUsedSeries,
	tegrastats.RAMTotal:    metrics.RAMTotalSeries,
	tegrastats.SwapUsed:    metrics.SwapUsedSeries,
	tegrastats.SwapTotal:   metrics.SwapTotalSeries,
	tegrastats.Temperature: metrics.TemperatureSeries,
	tegrastats.Power:       metrics.PowerSeries,
}

// Value is one reduced value as published at flush.
type Value struct {
	Series string            `json:"series"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
	Count  int               `json:"count"`
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maximum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return slices.Max(values)
}

func reduceWith(r tegrastats.Reduction, values []float64) float64 {
	if r == tegrastats.Max {
		return maximum(values)
	}
	return mean(values)
}

// reduce collapses every buffer of the window. Fields without samples still
// produce a zero value so stale readings are overwritten.
func reduce(w *Window, cores int) []Value {
	var out []Value
	for _, field := range tegrastats.Fields {
		switch {
		case field == tegrastats.CPUUsage:
			out = append(out, reduceCores(w, cores)...)
		case field.Labeled():
			for _, label := range fieldLabels(w, field) {
				values := w.values(field, label)
				out = append(out, Value{
					Series: fieldSeries[field],
					Labels: map[string]string{field.LabelKey: label},
					Value:  reduceWith(field.Reduction, values),
					Count:  len(values),
				})
			}
		default:
			values := w.values(field, "")
			out = append(out, Value{
				Series: fieldSeries[field],
				Value:  reduceWith(field.Reduction, values),
				Count:  len(values),
			})
		}
	}
	return out
}

// reduceCores publishes every core seen since start plus the overall usage,
// which averages all per-core samples of the window as one flat list.
func reduceCores(w *Window, cores int) []Value {
	field := tegrastats.CPUUsage
	series := fieldSeries[field]

	var all []float64
	out := make([]Value, 0, cores+1)
	for _, label := range coreLabels(w, cores) {
		values := w.values(field, label)
		all = append(all, values...)
		out = append(out, Value{
			Series: series,
			Labels: map[string]string{field.LabelKey: label},
			Value:  mean(values),
			Count:  len(values),
		})
	}

	return append(out, Value{
		Series: series,
		Labels: map[string]string{field.LabelKey: tegrastats.CPUTotalLabel},
		Value:  mean(all),
		Count:  len(all),
	})
}

func coreLabels(w *Window, cores int) []string {
	indexes := make(map[int]struct{}, cores)
	for i := 0; i < cores; i++ {
		indexes[i] = struct{}{}
	}
	for _, label := range w.labels(tegrastats.CPUUsage) {
		if i, err := strconv.Atoi(label); err == nil && i >= 0 {
			indexes[i] = struct{}{}
		}
	}

	sorted := make([]int, 0, len(indexes))
	for i := range indexes {
		sorted = append(sorted, i)
	}
	sort.Ints(sorted)

	labels := make([]string, len(sorted))
	for i, idx := range sorted {
		labels[i] = strconv.Itoa(idx)
	}
	return labels
}

// fieldLabels returns the fixed labels of a field followed by any other label
// recorded in the window.
func fieldLabels(w *Window, field tegrastats.Field) []string {
	fixed := field.FixedLabels()
	labels := append([]string{}, fixed...)

	var extra []string
	for _, label := range w.labels(field) {
		if !slices.Contains(fixed, label) {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(labels, extra...)
}
