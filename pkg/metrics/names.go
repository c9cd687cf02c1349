package metrics

import "github.com/voluzi/tegrastats-exporter/pkg/tegrastats"

const (
	HostnameLabel   = "Hostname"
	CoreLabel       = "core"
	SensorLabel     = "sensor"
	RailLabel       = "rail"
	MountpointLabel = "mountpoint"
)

// Series published from the aggregation window.
const (
	CPUUsageSeries    = "jetson_cpu_usage_percent"
	GPUUsageSeries    = "jetson_gpu_usage_percent_max"
	GPUFreqSeries     = "jetson_gpu_freq_mhz_avg"
	RAMUsedSeries     = "jetson_ram_used_mb_avg"
	RAMTotalSeries    = "jetson_ram_total_mb_avg"
	SwapUsedSeries    = "jetson_swap_used_mb_avg"
	SwapTotalSeries   = "jetson_swap_total_mb_avg"
	TemperatureSeries = "jetson_temperature_celsius_avg"
	PowerSeries       = "jetson_power_watts_avg"

	DiskUsagePercentSeries = "jetson_disk_usage_percent"
	DiskUsedBytesSeries    = "jetson_disk_used_bytes"
	DiskTotalBytesSeries   = "jetson_disk_total_bytes"
)

// Exporter bookkeeping.
const (
	LinesTotal            = "tegra_exporter_lines_total"
	SamplesTotal          = "tegra_exporter_samples_total"
	FlushesTotal          = "tegra_exporter_flushes_total"
	DiskErrorsTotal       = "tegra_exporter_disk_errors_total"
	CoreCountChangesTotal = "tegra_exporter_core_count_changes_total"
	SourceErrorsTotal     = "tegra_exporter_source_errors_total"
	LastFlushTimestamp    = "tegra_exporter_last_flush_timestamp_seconds"
)

type gaugeDef struct {
	name   string
	help   string
	labels []string

	// initial label values exposed at 0 before the first flush.
	initial []string
}

var gaugeDefs = []gaugeDef{
	{CPUUsageSeries, "Average CPU usage in percent over interval", []string{CoreLabel}, []string{tegrastats.CPUTotalLabel}},
	{GPUUsageSeries, "Max GPU usage in percent over interval", nil, nil},
	{GPUFreqSeries, "Average GPU frequency in MHz over interval", nil, nil},
	{RAMUsedSeries, "Average used RAM in MB over interval", nil, nil},
	{RAMTotalSeries, "Average total RAM in MB over interval", nil, nil},
	{SwapUsedSeries, "Average used SWAP in MB over interval", nil, nil},
	{SwapTotalSeries, "Average total SWAP in MB over interval", nil, nil},
	{TemperatureSeries, "Average temperature in degrees Celsius over interval", []string{SensorLabel}, tegrastats.TemperatureSensors},
	{PowerSeries, "Average instantaneous power draw in watts over interval", []string{RailLabel}, tegrastats.PowerRails},
	{DiskUsagePercentSeries, "Disk usage in percent at flush time", []string{MountpointLabel}, nil},
	{DiskUsedBytesSeries, "Used disk space in bytes at flush time", []string{MountpointLabel}, nil},
	{DiskTotalBytesSeries, "Total disk space in bytes at flush time", []string{MountpointLabel}, nil},
}

var counterDefs = map[string]string{
	LinesTotal:            "Lines read from the tegrastats source.",
	SamplesTotal:          "Samples extracted from tegrastats lines.",
	FlushesTotal:          "Aggregation windows flushed.",
	DiskErrorsTotal:       "Failed disk usage reads.",
	CoreCountChangesTotal: "Times the reported CPU core count changed.",
	SourceErrorsTotal:     "Errors reported by the line source.",
}
