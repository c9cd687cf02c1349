package cmd

import (
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/tegrastats-exporter/internal/environ"
	"github.com/voluzi/tegrastats-exporter/pkg/exporter"
)

var (
	statsURL      string
	statsInterval time.Duration
	statsCount    int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints a live summary from a running exporter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsInterval <= 0 {
			return errors.Errorf("interval must be positive, got %s", statsInterval)
		}
		client := exporter.NewClientForURL(statsURL)
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()

		for i := 0; statsCount <= 0 || i < statsCount; i++ {
			if i > 0 {
				<-ticker.C
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), statsInterval)
			fams, err := client.GetMetricFamilies(ctx)
			cancel()
			if err != nil {
				log.Errorf("error scraping %s: %v", statsURL, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", time.Now().Format(time.TimeOnly), exporter.Summarize(fams))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsURL, "url",
		environ.GetString("EXPORTER_URL", fmt.Sprintf("http://localhost:%d", exporter.DefaultPort)),
		"Base URL of the exporter",
	)
	statsCmd.Flags().DurationVar(&statsInterval, "interval",
		environ.GetDuration("STATS_INTERVAL", 5*time.Second),
		"Polling interval",
	)
	statsCmd.Flags().IntVar(&statsCount, "count", 0,
		"Number of summaries to print. Zero polls until interrupted",
	)
}
