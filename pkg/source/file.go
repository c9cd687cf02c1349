package source

import (
	"context"
	"io"
	"os"
	"syscall"

	"emperror.dev/errors"
	"github.com/containerd/fifo"
	"github.com/nxadm/tail"
)

// FileSource follows a file or named pipe that tegrastats writes to, e.g.
// with `tegrastats --logfile`.
type FileSource struct {
	tail  *tail.Tail
	lines chan Line
}

// NewFileSource starts following path. When createFifo is set the path is
// created as a named pipe first. Regular files are followed from their end.
func NewFileSource(path string, createFifo bool) (*FileSource, error) {
	if createFifo {
		f, err := fifo.OpenFifo(context.Background(), path, syscall.O_CREAT|syscall.O_RDONLY|syscall.O_NONBLOCK, 0655)
		if err != nil {
			return nil, errors.Wrapf(err, "create fifo %s", path)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}

	pipe := createFifo || isNamedPipe(path)
	cfg := tail.Config{
		ReOpen: true,
		Pipe:   pipe,
		Follow: true,
		Logger: tail.DiscardingLogger,
	}
	if !pipe {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "tail %s", path)
	}

	s := &FileSource{
		tail:  t,
		lines: make(chan Line),
	}
	go s.forward()
	return s, nil
}

func isNamedPipe(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeNamedPipe != 0
}

func (s *FileSource) forward() {
	defer close(s.lines)
	for line := range s.tail.Lines {
		if line.Err != nil {
			s.lines <- Line{Err: line.Err}
			continue
		}
		if line.Text != "" {
			s.lines <- Line{Text: line.Text}
		}
	}
}

func (s *FileSource) Lines() <-chan Line { return s.lines }

func (s *FileSource) Name() string { return ModeFile }

func (s *FileSource) Stop() error {
	defer s.tail.Cleanup()
	return s.tail.Stop()
}
