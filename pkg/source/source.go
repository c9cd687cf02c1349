package source

import (
	"context"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/c2h5oh/datasize"
)

const (
	ModeExec  = "exec"
	ModeFile  = "file"
	ModeStdin = "stdin"

	DefaultBinary      = "tegrastats"
	DefaultInterval    = time.Second
	DefaultMaxLineSize = "1MB"
)

var errStopped = errors.New("source stopped")

// Line is one record delivered by a source. Err is set when the source failed
// to read; the channel is closed at end of stream.
type Line struct {
	Text string
	Err  error
}

// Source delivers tegrastats lines in order.
type Source interface {
	Lines() <-chan Line
	Stop() error
	Name() string
}

// Options selects and configures a source.
type Options struct {
	Mode        string
	Binary      string
	Interval    time.Duration
	Path        string
	CreateFifo  bool
	MaxLineSize string
}

func (o Options) maxLineSize() (int, error) {
	return ParseMaxLineSize(o.MaxLineSize)
}

// ParseMaxLineSize reads a size such as "1MB" or "64KB". Empty means
// DefaultMaxLineSize.
func ParseMaxLineSize(s string) (int, error) {
	if s == "" {
		s = DefaultMaxLineSize
	}
	size, err := datasize.ParseString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid max line size %q", s)
	}
	return int(size.Bytes()), nil
}

// New builds the source described by opts.
func New(ctx context.Context, opts Options) (Source, error) {
	maxLineSize, err := opts.maxLineSize()
	if err != nil {
		return nil, err
	}

	switch opts.Mode {
	case ModeExec, "":
		binary := opts.Binary
		if binary == "" {
			binary = DefaultBinary
		}
		return NewCommandSource(ctx, binary, opts.Interval, maxLineSize)
	case ModeFile:
		return NewFileSource(opts.Path, opts.CreateFifo)
	case ModeStdin:
		return NewReaderSource(ModeStdin, os.Stdin, maxLineSize), nil
	default:
		return nil, errors.Errorf("unknown source mode %q", opts.Mode)
	}
}
