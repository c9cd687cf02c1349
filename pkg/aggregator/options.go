package aggregator

import (
	"time"

	"github.com/shirou/gopsutil/disk"
)

const (
	DefaultInterval     = 10 * time.Second
	DefaultMountpoint   = "/"
	DefaultWarnInterval = time.Minute
)

// DiskUsageFunc reads filesystem usage of a mount point.
type DiskUsageFunc func(path string) (*disk.UsageStat, error)

func defaultOptions() *Options {
	return &Options{
		Interval:     DefaultInterval,
		Mountpoint:   DefaultMountpoint,
		WarnInterval: DefaultWarnInterval,
		DiskUsage:    disk.Usage,
		Clock:        time.Now,
		Observer:     noopObserver{},
	}
}

type Options struct {
	Interval     time.Duration
	Mountpoint   string
	WarnInterval time.Duration
	DiskUsage    DiskUsageFunc
	Clock        func() time.Time
	Observer     Observer
}

type Option func(*Options)

func WithInterval(d time.Duration) Option {
	return func(opts *Options) {
		if d > 0 {
			opts.Interval = d
		}
	}
}

func WithMountpoint(path string) Option {
	return func(opts *Options) {
		opts.Mountpoint = path
	}
}

// WithWarnInterval sets how long a repeated warning stays suppressed.
func WithWarnInterval(d time.Duration) Option {
	return func(opts *Options) {
		opts.WarnInterval = d
	}
}

func WithDiskUsage(fn DiskUsageFunc) Option {
	return func(opts *Options) {
		opts.DiskUsage = fn
	}
}

func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}

func WithObserver(o Observer) Option {
	return func(opts *Options) {
		if o != nil {
			opts.Observer = o
		}
	}
}
