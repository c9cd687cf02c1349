package aggregator

import (
	"time"

	"github.com/c2h5oh/datasize"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/tegrastats-exporter/pkg/metrics"
)

// Snapshot describes one completed flush.
type Snapshot struct {
	WindowStart time.Time  `json:"window_start"`
	WindowEnd   time.Time  `json:"window_end"`
	Samples     int        `json:"samples"`
	Values      []Value    `json:"values"`
	Disk        *DiskUsage `json:"disk,omitempty"`
}

// DiskUsage is the filesystem reading taken at flush time.
type DiskUsage struct {
	Mountpoint  string  `json:"mountpoint"`
	UsedPercent float64 `json:"used_percent"`
	UsedBytes   uint64  `json:"used_bytes"`
	TotalBytes  uint64  `json:"total_bytes"`
}

// Flush closes the open window, publishes its reduced values and the current
// disk usage, and returns what was published. Samples recorded while a flush
// is in progress belong to the next window.
func (a *Aggregator) Flush() *Snapshot {
	a.flushLock.Lock()
	defer a.flushLock.Unlock()

	a.lock.Lock()
	closed := a.window
	end := a.cfg.Clock()
	a.window = newWindow(end)
	cores := a.cores
	a.lock.Unlock()

	values := reduce(closed, cores)
	for _, v := range values {
		a.publisher.Publish(v.Series, v.Labels, v.Value)
	}

	snapshot := &Snapshot{
		WindowStart: closed.Start,
		WindowEnd:   end,
		Samples:     closed.Len(),
		Values:      values,
		Disk:        a.publishDisk(),
	}

	a.cfg.Observer.IncCounter(metrics.FlushesTotal, 1)
	a.cfg.Observer.SetGauge(metrics.LastFlushTimestamp, float64(end.Unix()))
	a.last.Store(snapshot)

	log.WithFields(log.Fields{
		"samples":  snapshot.Samples,
		"window":   end.Sub(closed.Start).Round(time.Millisecond),
		"series":   len(values),
		"disk-set": snapshot.Disk != nil,
	}).Debug("flushed window")

	return snapshot
}

// publishDisk reads the configured mount point. A failed read leaves the disk
// series untouched for this cycle.
func (a *Aggregator) publishDisk() *DiskUsage {
	if a.cfg.Mountpoint == "" || a.cfg.DiskUsage == nil {
		return nil
	}

	stat, err := a.cfg.DiskUsage(a.cfg.Mountpoint)
	if err != nil {
		a.cfg.Observer.IncCounter(metrics.DiskErrorsTotal, 1)
		a.warn("disk", "failed to read disk usage", log.Fields{
			"mountpoint": a.cfg.Mountpoint,
			"error":      err,
		})
		return nil
	}

	labels := map[string]string{metrics.MountpointLabel: a.cfg.Mountpoint}
	a.publisher.Publish(metrics.DiskUsagePercentSeries, labels, stat.UsedPercent)
	a.publisher.Publish(metrics.DiskUsedBytesSeries, labels, float64(stat.Used))
	a.publisher.Publish(metrics.DiskTotalBytesSeries, labels, float64(stat.Total))

	log.WithFields(log.Fields{
		"mountpoint": a.cfg.Mountpoint,
		"used":       datasize.ByteSize(stat.Used).HumanReadable(),
		"total":      datasize.ByteSize(stat.Total).HumanReadable(),
	}).Trace("read disk usage")

	return &DiskUsage{
		Mountpoint:  a.cfg.Mountpoint,
		UsedPercent: stat.UsedPercent,
		UsedBytes:   stat.Used,
		TotalBytes:  stat.Total,
	}
}
