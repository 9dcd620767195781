package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ansel1/testlog/events"
	"github.com/ansel1/testlog/parser"
	"github.com/ansel1/testlog/results"
)

// run holds the state of one Engine.Run call.
type run struct {
	hub     *events.Hub
	tracker *results.Tracker

	mu          sync.Mutex
	first, last time.Time
}

// Run reads a `go test -json` stream from input and publishes the run on
// hub: a run start, messages and results as they arrive, and exactly one
// run completion. A read error or cancellation of ctx aborts the run; the
// completion then carries the error, which is also returned.
func (e *Engine) Run(ctx context.Context, input io.Reader, hub *events.Hub) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{hub: hub, tracker: results.NewTracker()}
	d := newDispatcher(e.parallel, r.handle)

	e.log.Debug().
		Int("sources", len(e.sources)).
		Int("parallel", e.parallel).
		Msg("Run starting")
	hub.PublishRunStart(e.sources)

	runErr := e.consume(ctx, e.StreamContext(ctx, input), r, d)
	d.close()

	for _, test := range r.tracker.Interrupted() {
		hub.PublishRunMessage(events.Warning, fmt.Sprintf("Test did not complete: %s", test.TestCase.FullyQualifiedName))
	}

	stats := r.tracker.Statistics()
	hub.PublishRunComplete(events.RunComplete{
		Statistics: stats,
		IsAborted:  runErr != nil,
		Error:      runErr,
		Elapsed:    r.elapsed(),
	})

	logEvent := e.log.Info()
	if runErr != nil {
		logEvent = e.log.Warn().Err(runErr)
	}
	logEvent.
		Int64("executed", stats.ExecutedTests).
		Int("unfinished", r.tracker.Running()).
		Int64("failed", stats.Count(events.OutcomeFailed)).
		Msg("Run complete")
	return runErr
}

// consume reads the stream until it completes, fails or ctx is done.
func (e *Engine) consume(ctx context.Context, stream <-chan Event, r *run, d *dispatcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case evt, ok := <-stream:
			if !ok {
				// the stream only closes early when ctx is done
				return ctx.Err()
			}
			switch evt.Type {
			case EventRawLine:
				if line := strings.TrimRight(string(evt.RawLine), "\r"); strings.TrimSpace(line) != "" {
					r.hub.PublishRunMessage(events.Informational, line)
				}
			case EventTest:
				r.observeTime(evt.TestEvent.Time)
				d.dispatch(evt.TestEvent)
			case EventError:
				return fmt.Errorf("reading test stream: %w", evt.Error)
			case EventComplete:
				return nil
			}
		}
	}
}

func (r *run) observeTime(t time.Time) {
	if t.IsZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.first.IsZero() || t.Before(r.first) {
		r.first = t
	}
	if t.After(r.last) {
		r.last = t
	}
}

// elapsed is the span between the earliest and latest event timestamps.
func (r *run) elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.first.IsZero() {
		return 0
	}
	return r.last.Sub(r.first)
}

// handle translates one test event into hub publications. It may run on
// several goroutines at once, but never concurrently for one package.
func (r *run) handle(evt parser.TestEvent) {
	switch {
	case evt.IsBuild():
		r.handleBuild(evt)

	case evt.IsPackageLevel():
		r.handlePackage(evt)

	default:
		if result, ok := r.tracker.Observe(evt); ok {
			r.hub.PublishResult(result)
		}
	}
}

func (r *run) handleBuild(evt parser.TestEvent) {
	if evt.Action == parser.ActionBuildFail {
		r.hub.PublishRunMessage(events.Error, fmt.Sprintf("Build failed: %s", evt.ImportPath))
		return
	}
	if out := evt.TrimmedOutput(); strings.TrimSpace(out) != "" {
		r.hub.PublishRunMessage(events.Error, out)
	}
}

func (r *run) handlePackage(evt parser.TestEvent) {
	switch evt.Action {
	case parser.ActionOutput:
		if out := evt.TrimmedOutput(); strings.TrimSpace(out) != "" {
			r.hub.PublishRunMessage(events.Informational, out)
		}

	case parser.ActionFail:
		if r.tracker.Tests(evt.Package) == 0 {
			msg := fmt.Sprintf("Package failed without running tests: %s", evt.Package)
			if evt.FailedBuild != "" {
				msg = fmt.Sprintf("Package failed to build: %s", evt.FailedBuild)
			}
			r.hub.PublishRunMessage(events.Error, msg)
		}
	}
}
