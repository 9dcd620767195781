package engine

import (
	"bufio"
	"bytes"
	"io"
	"time"

	"github.com/ansel1/testlog/parser"
)

// ReplayReader re-emits a recorded `go test -json` stream, pausing between
// lines for the gap between their event timestamps scaled by rate.
// A rate of 0 replays instantly; 0.5 replays at twice the original speed.
// Lines without a timestamp are emitted immediately.
type ReplayReader struct {
	src   *bufio.Reader
	rate  float64
	sleep func(time.Duration)

	last    time.Time
	pending []byte
	err     error
}

// NewReplayReader wraps r. Lines are read lazily, so a recording can be
// replayed while it is still being written.
func NewReplayReader(r io.Reader, rate float64) *ReplayReader {
	return &ReplayReader{
		src:   bufio.NewReaderSize(r, 64*1024),
		rate:  rate,
		sleep: time.Sleep,
	}
}

// Read implements io.Reader, returning the stream one line at a time.
func (r *ReplayReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.next()
		if len(r.pending) == 0 {
			return 0, r.err
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// next loads the following line into pending, waiting first if its
// timestamp lies after the previous one.
func (r *ReplayReader) next() {
	line, err := r.src.ReadBytes('\n')
	if err != nil {
		r.err = err
	}
	if len(line) == 0 {
		return
	}

	if evt, perr := parser.ParseEvent(bytes.TrimSpace(line)); perr == nil && !evt.Time.IsZero() {
		if !r.last.IsZero() && r.rate > 0 {
			if gap := evt.Time.Sub(r.last); gap > 0 {
				r.sleep(time.Duration(float64(gap) * r.rate))
			}
		}
		r.last = evt.Time
	}
	r.pending = line
}
