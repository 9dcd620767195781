// Package engine drives a `go test -json` stream: it splits the input into
// parsed test events and raw lines, and publishes the run's lifecycle onto an
// events.Hub.
package engine

import (
	"bufio"
	"context"
	"io"

	"github.com/ansel1/testlog/parser"
	"github.com/ternarybob/arbor"
)

// maxLineSize bounds a single input line. Test output with long lines is
// common enough that bufio's 64KiB default is too small.
const maxLineSize = 4 * 1024 * 1024

// EventType identifies the type of event emitted by the engine
type EventType string

const (
	EventRawLine  EventType = "raw"      // Non-JSON line from input
	EventTest     EventType = "test"     // Parsed test event from go test -json
	EventError    EventType = "error"    // Error occurred during processing
	EventComplete EventType = "complete" // Input stream finished
)

// Event represents a single event emitted by the engine
type Event struct {
	Type      EventType
	RawLine   []byte           // Populated for EventRawLine
	TestEvent parser.TestEvent // Populated for EventTest
	Error     error            // Populated for EventError
}

// Engine processes raw input and publishes test lifecycle events.
type Engine struct {
	// Output writers for pass-through file writing
	rawWriter  io.Writer
	jsonWriter io.Writer

	sources  []string
	parallel int
	log      arbor.ILogger
}

// Option configures the engine
type Option func(*Engine)

// WithRawOutput configures engine to write all raw lines to a file
func WithRawOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.rawWriter = w
	}
}

// WithJSONOutput configures engine to write parsed JSON events to a file
func WithJSONOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.jsonWriter = w
	}
}

// WithSources sets the test sources announced in the run-start event.
func WithSources(sources ...string) Option {
	return func(e *Engine) {
		e.sources = append(e.sources, sources...)
	}
}

// WithParallel dispatches test events from n goroutines. Events of one
// package are always handled by the same goroutine, in stream order.
// Values below 2 handle every event on the reading goroutine.
func WithParallel(n int) Option {
	return func(e *Engine) {
		e.parallel = n
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log arbor.ILogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates a new event processing engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = arbor.NewLogger()
	}
	return e
}

// Stream reads from input, parses lines, and emits events via channel.
// The channel is closed when input is exhausted.
func (e *Engine) Stream(input io.Reader) <-chan Event {
	return e.StreamContext(context.Background(), input)
}

// StreamContext is Stream, but stops emitting once ctx is done. A read
// already blocked on input is not interrupted.
func (e *Engine) StreamContext(ctx context.Context, input io.Reader) <-chan Event {
	events := make(chan Event, 100)

	go func() {
		defer close(events)

		send := func(evt Event) bool {
			select {
			case events <- evt:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := scanner.Bytes()

			if e.rawWriter != nil {
				e.rawWriter.Write(line)
				e.rawWriter.Write([]byte("\n"))
			}

			testEvent, err := parser.ParseEvent(line)
			if err != nil {
				// scanner reuses its buffer
				lineCopy := make([]byte, len(line))
				copy(lineCopy, line)
				if !send(Event{Type: EventRawLine, RawLine: lineCopy}) {
					return
				}
				continue
			}

			if e.jsonWriter != nil {
				e.jsonWriter.Write(line)
				e.jsonWriter.Write([]byte("\n"))
			}

			if !send(Event{Type: EventTest, TestEvent: testEvent}) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if !send(Event{Type: EventError, Error: err}) {
				return
			}
		}

		send(Event{Type: EventComplete})
	}()

	return events
}
