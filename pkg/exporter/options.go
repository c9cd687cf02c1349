package exporter

import (
	"time"

	"github.com/voluzi/tegrastats-exporter/pkg/aggregator"
)

const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 8000
	DefaultHostname = "unknown"

	shutdownTimeout = 5 * time.Second
)

func defaultOptions() *Options {
	return &Options{
		Host:     DefaultHost,
		Port:     DefaultPort,
		Hostname: DefaultHostname,
	}
}

type Options struct {
	Host     string
	Port     int
	Hostname string

	// Forwarded to the aggregator as is.
	Aggregator []aggregator.Option
}

type Option func(*Options)

func WithHost(s string) Option {
	return func(opts *Options) {
		opts.Host = s
	}
}

func WithPort(v int) Option {
	return func(opts *Options) {
		opts.Port = v
	}
}

// WithHostname sets the value of the Hostname label carried by every series.
func WithHostname(s string) Option {
	return func(opts *Options) {
		if s != "" {
			opts.Hostname = s
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(opts *Options) {
		opts.Aggregator = append(opts.Aggregator, aggregator.WithInterval(d))
	}
}

func WithMountpoint(path string) Option {
	return func(opts *Options) {
		opts.Aggregator = append(opts.Aggregator, aggregator.WithMountpoint(path))
	}
}

func WithAggregatorOptions(o ...aggregator.Option) Option {
	return func(opts *Options) {
		opts.Aggregator = append(opts.Aggregator, o...)
	}
}
