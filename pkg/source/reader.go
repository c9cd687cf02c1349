package source

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"emperror.dev/errors"
)

// ReaderSource scans lines from an io.Reader.
type ReaderSource struct {
	name     string
	lines    chan Line
	done     chan struct{}
	stopOnce sync.Once
}

// NewReaderSource starts scanning r in the background. Lines longer than
// maxLineSize end the stream with an error.
func NewReaderSource(name string, r io.Reader, maxLineSize int) *ReaderSource {
	s := &ReaderSource{
		name:  name,
		lines: make(chan Line),
		done:  make(chan struct{}),
	}
	go s.read(r, maxLineSize)
	return s
}

func (s *ReaderSource) read(r io.Reader, maxLineSize int) {
	defer close(s.lines)

	scanner := bufio.NewScanner(r)
	if maxLineSize > 0 {
		// The token limit is the larger of maxLineSize and the initial capacity.
		scanner.Buffer(make([]byte, 0, min(maxLineSize, bufio.MaxScanTokenSize)), maxLineSize)
	}

	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		if !s.send(Line{Text: scanner.Text()}) {
			return
		}
	}
	if err := scanner.Err(); err != nil && !s.stopped() {
		s.send(Line{Err: errors.Wrapf(err, "%s: read line", s.name)})
	}
}

func (s *ReaderSource) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *ReaderSource) send(l Line) bool {
	select {
	case s.lines <- l:
		return true
	case <-s.done:
		return false
	}
}

func (s *ReaderSource) Lines() <-chan Line { return s.lines }

func (s *ReaderSource) Name() string { return s.name }

// Stop makes the source stop delivering. A read already blocked on the
// underlying reader returns once that reader does.
func (s *ReaderSource) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	return nil
}
