package cmd

import (
	"io"
	"os"

	"emperror.dev/errors"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/voluzi/tegrastats-exporter/internal/environ"
	"github.com/voluzi/tegrastats-exporter/pkg/source"
	"github.com/voluzi/tegrastats-exporter/pkg/tegrastats"
)

var (
	output           string
	parseMaxLineSize string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parses tegrastats lines and prints the extracted samples",
	Long: `Reads tegrastats lines from a file, or from stdin when no file is given,
and prints the samples found on each line. Nothing is aggregated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := source.ParseMaxLineSize(parseMaxLineSize)
		if err != nil {
			return err
		}

		in := io.Reader(os.Stdin)
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		return parseLines(in, cmd.OutOrStdout(), output, limit)
	},
}

func parseLines(in io.Reader, out io.Writer, format string, maxLineSize int) error {
	var encode func(*tegrastats.Reading) error
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		encode = func(r *tegrastats.Reading) error { return enc.Encode(r) }
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		encode = func(r *tegrastats.Reading) error { return enc.Encode(r) }
	default:
		return errors.Errorf("unknown output format %q", format)
	}

	src := source.NewReaderSource("parse", in, maxLineSize)
	defer func() { _ = src.Stop() }()

	for line := range src.Lines() {
		if line.Err != nil {
			return line.Err
		}
		reading := tegrastats.Parse(line.Text)
		if reading.Empty() {
			continue
		}
		if err := encode(reading); err != nil {
			return errors.Wrap(err, "encode reading")
		}
	}
	return nil
}

func init() {
	parseCmd.Flags().StringVarP(&output, "output", "o", "json", "Output format. One of json, yaml")
	parseCmd.Flags().StringVar(&parseMaxLineSize, "max-line-size",
		environ.GetString("MAX_LINE_SIZE", source.DefaultMaxLineSize),
		"Maximum size of a single tegrastats line",
	)
}
