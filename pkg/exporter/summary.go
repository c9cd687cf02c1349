package exporter

import (
	"fmt"

	prom "github.com/prometheus/client_model/go"

	"github.com/voluzi/tegrastats-exporter/pkg/metrics"
	"github.com/voluzi/tegrastats-exporter/pkg/tegrastats"
)

// Summary is the handful of values shown by the stats command.
type Summary struct {
	Hostname    string
	CPUTotal    float64
	GPUMax      float64
	RAMUsedMB   float64
	RAMTotalMB  float64
	DiskPercent float64
}

// Summarize extracts a Summary from scraped metric families. Missing series
// leave their value at zero.
func Summarize(fams map[string]*prom.MetricFamily) Summary {
	var s Summary

	if m := findMetric(fams[metrics.CPUUsageSeries], metrics.CoreLabel, tegrastats.CPUTotalLabel); m != nil {
		s.CPUTotal = m.GetGauge().GetValue()
		s.Hostname = labelValue(m, metrics.HostnameLabel)
	}
	if m := findMetric(fams[metrics.GPUUsageSeries], "", ""); m != nil {
		s.GPUMax = m.GetGauge().GetValue()
	}
	if m := findMetric(fams[metrics.RAMUsedSeries], "", ""); m != nil {
		s.RAMUsedMB = m.GetGauge().GetValue()
		if s.Hostname == "" {
			s.Hostname = labelValue(m, metrics.HostnameLabel)
		}
	}
	if m := findMetric(fams[metrics.RAMTotalSeries], "", ""); m != nil {
		s.RAMTotalMB = m.GetGauge().GetValue()
	}
	if m := findMetric(fams[metrics.DiskUsagePercentSeries], "", ""); m != nil {
		s.DiskPercent = m.GetGauge().GetValue()
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%s cpu=%.1f%% gpu(max)=%.1f%% ram=%.0f/%.0fMB disk=%.1f%%",
		s.Hostname, s.CPUTotal, s.GPUMax, s.RAMUsedMB, s.RAMTotalMB, s.DiskPercent)
}

// findMetric returns the first metric of mf, or the first one carrying
// label=value when label is set.
func findMetric(mf *prom.MetricFamily, label, value string) *prom.Metric {
	if mf == nil {
		return nil
	}
	for _, m := range mf.Metric {
		if label == "" || labelValue(m, label) == value {
			return m
		}
	}
	return nil
}

func labelValue(m *prom.Metric, name string) string {
	for _, lp := range m.Label {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
