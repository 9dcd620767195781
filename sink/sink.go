// Package sink provides the report's output target: a buffered file opened
// for append or truncate-create, released exactly once.
package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrClosed is returned by writes after the sink has been closed.
var ErrClosed = errors.New("sink: closed")

// FileSink is a buffered character sink bound to a path.
// It is not safe for concurrent writes; the logger serializes access.
type FileSink struct {
	path   string
	out    io.WriteCloser
	buf    *bufio.Writer
	err    error // first write error, sticky
	closed bool
	once   sync.Once
	mu     sync.Mutex // guards closed for Close called from another goroutine
}

// Open opens path for writing. With appendMode the existing contents are
// kept and new output follows them; otherwise the file is truncated.
func Open(path string, appendMode bool) (*FileSink, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(f, path), nil
}

// New wraps an already opened writer.
func New(w io.WriteCloser, path string) *FileSink {
	return &FileSink{
		path: path,
		out:  w,
		buf:  bufio.NewWriter(w),
	}
}

// Path returns the path the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

// Write implements io.Writer.
func (s *FileSink) Write(p []byte) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.buf.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}

// Err returns the first write error, if any.
func (s *FileSink) Err() error {
	return s.err
}

// Close flushes and closes the file. Only the first call has any effect;
// later calls return nil.
func (s *FileSink) Close() error {
	var err error
	s.once.Do(func() {
		flushErr := s.buf.Flush()

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		closeErr := s.out.Close()
		err = errors.Join(flushErr, closeErr)
	})
	return err
}

func (s *FileSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
