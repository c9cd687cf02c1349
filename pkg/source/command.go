package source

import (
	"context"
	"io"
	"os/exec"
	"strconv"
	"time"

	"emperror.dev/errors"
	log "github.com/sirupsen/logrus"
)

// CommandSource runs tegrastats and reads its combined output.
type CommandSource struct {
	*ReaderSource
	cmd    *exec.Cmd
	cancel context.CancelFunc
	output *io.PipeReader
	exited chan struct{}
}

// NewCommandSource starts binary with the given sampling interval. The stream
// ends when the process exits.
func NewCommandSource(ctx context.Context, binary string, interval time.Duration, maxLineSize int) (*CommandSource, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, binary, "--interval", strconv.FormatInt(interval.Milliseconds(), 10))
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, errors.Wrapf(err, "start %s", binary)
	}
	log.WithFields(log.Fields{
		"binary":   binary,
		"pid":      cmd.Process.Pid,
		"interval": interval,
	}).Info("started tegrastats")

	exited := make(chan struct{})
	go func() {
		defer close(exited)
		// A kill from Stop is a normal end of stream.
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			_ = pw.CloseWithError(errors.Wrapf(err, "%s exited", binary))
			return
		}
		_ = pw.Close()
	}()

	return &CommandSource{
		ReaderSource: NewReaderSource(ModeExec, pr, maxLineSize),
		cmd:          cmd,
		cancel:       cancel,
		output:       pr,
		exited:       exited,
	}, nil
}

// waitDelay bounds how long Wait keeps copying output after the process was killed.
const waitDelay = time.Second

// Stop kills the process and stops delivering lines. Output still buffered
// in the pipe is discarded so the process can be reaped.
func (s *CommandSource) Stop() error {
	s.cancel()
	err := s.ReaderSource.Stop()
	_ = s.output.CloseWithError(errStopped)
	return err
}

// Exited is closed once the process has been reaped.
func (s *CommandSource) Exited() <-chan struct{} {
	return s.exited
}
