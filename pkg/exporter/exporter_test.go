package exporter_test

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	prom "github.com/prometheus/client_model/go"
	"github.com/shirou/gopsutil/disk"

	"github.com/voluzi/tegrastats-exporter/pkg/aggregator"
	"github.com/voluzi/tegrastats-exporter/pkg/exporter"
	"github.com/voluzi/tegrastats-exporter/pkg/source"
)

const (
	firstLine  = "RAM 3000/7620MB (lfb 2x4MB) SWAP 0/3810MB (cached 0MB) CPU [10%@1190,30%@1190] GR3D_FREQ 20%@[305] cpu@40C gpu@38.5C VDD_IN 5000mW/5000mW"
	secondLine = "RAM 4000/7620MB (lfb 2x4MB) SWAP 0/3810MB (cached 0MB) CPU [20%@1190,40%@1190] GR3D_FREQ 60% cpu@50C gpu@39.5C VDD_IN 7000mW/6000mW"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fakeDisk(path string) (*disk.UsageStat, error) {
	return &disk.UsageStat{Path: path, Total: 200, Used: 85, UsedPercent: 42.5}, nil
}

func gauge(fams map[string]*prom.MetricFamily, name string, labels map[string]string) (float64, bool) {
	mf, ok := fams[name]
	if !ok {
		return 0, false
	}
next:
	for _, m := range mf.Metric {
		for k, v := range labels {
			found := false
			for _, lp := range m.Label {
				if lp.GetName() == k && lp.GetValue() == v {
					found = true
				}
			}
			if !found {
				continue next
			}
		}
		if m.GetGauge() != nil {
			return m.GetGauge().GetValue(), true
		}
		return m.GetCounter().GetValue(), true
	}
	return 0, false
}

var _ = Describe("Exporter", func() {
	var (
		clk    *clock
		writer *io.PipeWriter
		e      *exporter.Exporter
		server *httptest.Server
		client *exporter.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		clk = &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

		var reader *io.PipeReader
		reader, writer = io.Pipe()

		var err error
		e, err = exporter.New(
			source.NewReaderSource("test", reader, 0),
			exporter.WithHost("127.0.0.1"),
			exporter.WithPort(0),
			exporter.WithHostname("jetson-test"),
			exporter.WithFlushInterval(10*time.Second),
			exporter.WithMountpoint("/data"),
			exporter.WithAggregatorOptions(
				aggregator.WithClock(clk.Now),
				aggregator.WithDiskUsage(fakeDisk),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		server = httptest.NewServer(e.Handler())
		client = exporter.NewClientForURL(server.URL)
	})

	AfterEach(func() {
		server.Close()
		_ = writer.Close()
	})

	It("requires a source", func() {
		_, err := exporter.New(nil)
		Expect(err).To(HaveOccurred())
	})

	Context("before the first flush", func() {
		It("reports healthy but not ready", func() {
			ready, err := client.IsReady(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ready).To(BeFalse())

			snapshot, err := client.GetSnapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot).To(BeNil())
		})

		It("serves every window series at zero", func() {
			fams, err := client.GetMetricFamilies(ctx)
			Expect(err).NotTo(HaveOccurred())

			host := map[string]string{"Hostname": "jetson-test"}
			for _, series := range []string{"jetson_gpu_usage_percent_max", "jetson_ram_used_mb_avg", "jetson_swap_total_mb_avg"} {
				v, ok := gauge(fams, series, host)
				Expect(ok).To(BeTrue(), "missing %s", series)
				Expect(v).To(BeZero())
			}
			v, ok := gauge(fams, "jetson_cpu_usage_percent", map[string]string{"core": "total"})
			Expect(ok).To(BeTrue())
			Expect(v).To(BeZero())
			_, ok = gauge(fams, "jetson_power_watts_avg", map[string]string{"rail": "VDD_SOC"})
			Expect(ok).To(BeTrue())
		})

		It("does not flush before the interval elapses", func() {
			Expect(e.ProcessLine(firstLine)).To(BeNil())
			clk.Advance(9 * time.Second)
			Expect(e.ProcessLine(secondLine)).To(BeNil())
		})
	})

	Context("after a window is flushed", func() {
		var snapshot *aggregator.Snapshot

		BeforeEach(func() {
			Expect(e.ProcessLine(firstLine)).To(BeNil())
			clk.Advance(10 * time.Second)
			snapshot = e.ProcessLine(secondLine)
			Expect(snapshot).NotTo(BeNil())
		})

		It("becomes ready and serves the snapshot", func() {
			ready, err := client.IsReady(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ready).To(BeTrue())

			got, err := client.GetSnapshot(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.Samples).To(Equal(snapshot.Samples))
			Expect(got.Disk).NotTo(BeNil())
			Expect(got.Disk.Mountpoint).To(Equal("/data"))
		})

		It("publishes window aggregates with the host label", func() {
			fams, err := client.GetMetricFamilies(ctx)
			Expect(err).NotTo(HaveOccurred())

			expected := []struct {
				series string
				labels map[string]string
				value  float64
			}{
				{"jetson_ram_used_mb_avg", nil, 3500},
				{"jetson_ram_total_mb_avg", nil, 7620},
				{"jetson_cpu_usage_percent", map[string]string{"core": "0"}, 15},
				{"jetson_cpu_usage_percent", map[string]string{"core": "1"}, 35},
				{"jetson_cpu_usage_percent", map[string]string{"core": "total"}, 25},
				{"jetson_gpu_usage_percent_max", nil, 60},
				{"jetson_gpu_freq_mhz_avg", nil, 305},
				{"jetson_temperature_celsius_avg", map[string]string{"sensor": "cpu"}, 45},
				{"jetson_temperature_celsius_avg", map[string]string{"sensor": "gpu"}, 39},
				{"jetson_temperature_celsius_avg", map[string]string{"sensor": "tj"}, 0},
				{"jetson_power_watts_avg", map[string]string{"rail": "VDD_IN"}, 6},
				{"jetson_power_watts_avg", map[string]string{"rail": "VDD_SOC"}, 0},
				{"jetson_disk_usage_percent", map[string]string{"mountpoint": "/data"}, 42.5},
				{"jetson_disk_total_bytes", map[string]string{"mountpoint": "/data"}, 200},
				{"tegra_exporter_lines_total", nil, 2},
				{"tegra_exporter_flushes_total", nil, 1},
			}
			for _, exp := range expected {
				labels := map[string]string{"Hostname": "jetson-test"}
				for k, v := range exp.labels {
					labels[k] = v
				}
				v, ok := gauge(fams, exp.series, labels)
				Expect(ok).To(BeTrue(), "missing %s %v", exp.series, exp.labels)
				Expect(v).To(BeNumerically("~", exp.value, 1e-9), "%s %v", exp.series, exp.labels)
			}

			Expect(exporter.Summarize(fams).String()).To(Equal("jetson-test cpu=25.0% gpu(max)=60.0% ram=3500/7620MB disk=42.5%"))
		})

		It("zeroes series that received no samples in the next window", func() {
			clk.Advance(10 * time.Second)
			Expect(e.ProcessLine("RAM 1000/7620MB")).NotTo(BeNil())

			fams, err := client.GetMetricFamilies(ctx)
			Expect(err).NotTo(HaveOccurred())

			v, ok := gauge(fams, "jetson_gpu_usage_percent_max", nil)
			Expect(ok).To(BeTrue())
			Expect(v).To(BeZero())

			v, ok = gauge(fams, "jetson_cpu_usage_percent", map[string]string{"core": "1"})
			Expect(ok).To(BeTrue())
			Expect(v).To(BeZero())

			v, ok = gauge(fams, "jetson_ram_used_mb_avg", nil)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1000.0))
		})
	})

	Context("when serving", func() {
		It("stops at end of stream", func() {
			errCh := make(chan error, 1)
			go func() {
				errCh <- e.Start()
			}()

			_, err := io.WriteString(writer, firstLine+"\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())

			Eventually(e.Done()).Should(BeClosed())
			Eventually(errCh).Should(Receive(BeNil()))
		})

		It("stops on request", func() {
			errCh := make(chan error, 1)
			go func() {
				errCh <- e.Start()
			}()

			Eventually(func() error {
				_, err := client.IsReady(ctx)
				return err
			}).Should(Succeed())
			Expect(e.Stop()).To(Succeed())
			Eventually(errCh).Should(Receive(BeNil()))
		})
	})
})
