package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/tegrastats-exporter/internal/environ"
	"github.com/voluzi/tegrastats-exporter/pkg/aggregator"
	"github.com/voluzi/tegrastats-exporter/pkg/exporter"
	"github.com/voluzi/tegrastats-exporter/pkg/source"
)

var (
	host               string
	port               int
	hostname           string
	flushInterval      time.Duration
	mountpoint         string
	sourceMode         string
	tegrastatsBin      string
	tegrastatsInterval time.Duration
	inputFile          string
	createFifo         bool
	maxLineSize        string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the exporter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		src, err := source.New(ctx, source.Options{
			Mode:        sourceMode,
			Binary:      tegrastatsBin,
			Interval:    tegrastatsInterval,
			Path:        inputFile,
			CreateFifo:  createFifo,
			MaxLineSize: maxLineSize,
		})
		if err != nil {
			return err
		}

		e, err := exporter.New(src,
			exporter.WithHost(host),
			exporter.WithPort(port),
			exporter.WithHostname(exporter.ResolveHostname(hostname)),
			exporter.WithFlushInterval(flushInterval),
			exporter.WithMountpoint(mountpoint),
		)
		if err != nil {
			_ = src.Stop()
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			log.Infof("received signal: %v", sig)
			if err := e.Stop(); err != nil {
				log.Errorf("failed to stop exporter: %v", err)
			}
		}()

		return e.Start()
	},
}

func init() {
	runCmd.Flags().StringVar(&host, "host",
		environ.GetString("HOST", exporter.DefaultHost),
		"The host address to listen on",
	)
	runCmd.Flags().IntVar(&port, "port",
		environ.GetInt("PORT", exporter.DefaultPort),
		"The port to listen on",
	)
	runCmd.Flags().StringVar(&hostname, "hostname",
		environ.GetString("HOSTNAME", ""),
		"Value of the Hostname label. Defaults to the machine hostname",
	)
	runCmd.Flags().DurationVar(&flushInterval, "flush-interval",
		environ.GetDuration("FLUSH_INTERVAL", aggregator.DefaultInterval),
		"Length of each aggregation window",
	)
	runCmd.Flags().StringVar(&mountpoint, "disk-mountpoint",
		environ.GetString("DISK_MOUNTPOINT", aggregator.DefaultMountpoint),
		"Mount point whose disk usage is reported",
	)
	runCmd.Flags().StringVar(&sourceMode, "source",
		environ.GetString("SOURCE", source.ModeExec),
		"Where to read tegrastats lines from. One of exec, file, stdin",
	)
	runCmd.Flags().StringVar(&tegrastatsBin, "tegrastats-bin",
		environ.GetString("TEGRASTATS_BIN", source.DefaultBinary),
		"The tegrastats binary to run in exec mode",
	)
	runCmd.Flags().DurationVar(&tegrastatsInterval, "tegrastats-interval",
		environ.GetDuration("TEGRASTATS_INTERVAL", source.DefaultInterval),
		"Sampling interval passed to tegrastats in exec mode",
	)
	runCmd.Flags().StringVar(&inputFile, "input-file",
		environ.GetString("INPUT_FILE", ""),
		"File or named pipe to follow in file mode",
	)
	runCmd.Flags().BoolVar(&createFifo, "create-fifo",
		environ.GetBool("CREATE_FIFO", false),
		"Create the input file as a named pipe",
	)
	runCmd.Flags().StringVar(&maxLineSize, "max-line-size",
		environ.GetString("MAX_LINE_SIZE", source.DefaultMaxLineSize),
		"Maximum size of a single tegrastats line",
	)
}
