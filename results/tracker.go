// Package results turns `go test -json` events into completed test results.
package results

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ansel1/testlog/events"
	"github.com/ansel1/testlog/parser"
)

// frameworkPrefixes mark output lines written by the test framework itself
// rather than by the test.
var frameworkPrefixes = []string{
	"=== RUN", "=== PAUSE", "=== CONT", "=== NAME",
	"--- PASS", "--- FAIL", "--- SKIP",
}

// isFrameworkLine reports whether line was produced by the testing package.
func isFrameworkLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range frameworkPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// inflight is a test that has started but not finished.
type inflight struct {
	pkg    string
	name   string
	seq    int
	start  time.Time
	output []string
}

// Tracker follows tests from their first event to their terminal action.
//
// Tracker is safe for concurrent use; events for one test must still be
// observed in stream order.
type Tracker struct {
	mu       sync.Mutex
	running  map[string]*inflight // "package/test" -> inflight
	seq      int
	tests    map[string]int // package -> completed tests
	executed int64
	stats    map[events.Outcome]int64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		running: make(map[string]*inflight),
		tests:   make(map[string]int),
		stats:   make(map[events.Outcome]int64),
	}
}

func testKey(pkg, test string) string {
	return pkg + "/" + test
}

// Observe records evt. When evt completes a test, the finished result is
// returned with ok set. Package-level and build events are ignored.
func (t *Tracker) Observe(evt parser.TestEvent) (result events.TestResult, ok bool) {
	if evt.IsPackageLevel() || evt.IsBuild() {
		return result, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := testKey(evt.Package, evt.Test)
	test, exists := t.running[key]
	if !exists {
		t.seq++
		test = &inflight{pkg: evt.Package, name: evt.Test, seq: t.seq}
		t.running[key] = test
	}

	switch {
	case evt.Action == parser.ActionRun:
		test.start = evt.Time

	case evt.Action == parser.ActionOutput:
		if evt.Output != "" && !isFrameworkLine(evt.Output) {
			test.output = append(test.output, evt.TrimmedOutput())
		}

	case evt.IsTerminal():
		delete(t.running, key)
		result = t.finish(test, evt)
		return result, true
	}

	return result, false
}

// finish converts a terminated test into a result and counts it.
func (t *Tracker) finish(test *inflight, evt parser.TestEvent) events.TestResult {
	outcome := events.OutcomePassed
	switch evt.Action {
	case parser.ActionFail:
		outcome = events.OutcomeFailed
	case parser.ActionSkip:
		outcome = events.OutcomeSkipped
	}

	t.executed++
	t.stats[outcome]++
	t.tests[test.pkg]++

	r := newResult(test, outcome)
	r.EndTime = evt.Time
	r.Duration = evt.ElapsedDuration()
	if r.StartTime.IsZero() && !r.EndTime.IsZero() {
		r.StartTime = r.EndTime.Add(-r.Duration)
	}
	if outcome == events.OutcomeFailed {
		r.ErrorMessage = lastLine(test.output)
	}
	return r
}

func newResult(test *inflight, outcome events.Outcome) events.TestResult {
	r := events.TestResult{
		TestCase: events.TestCase{
			FullyQualifiedName: test.pkg + "." + test.name,
			DisplayName:        test.name,
			Source:             test.pkg,
		},
		Outcome:   outcome,
		StartTime: test.start,
	}
	for _, line := range test.output {
		r.Messages = append(r.Messages, events.ResultMessage{
			Category: events.StandardOutCategory,
			Text:     line,
		})
	}
	return r
}

// lastLine returns the last non-blank output line, trimmed.
func lastLine(output []string) string {
	for i := len(output) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(output[i]); line != "" {
			return line
		}
	}
	return ""
}

// Tests returns how many tests of pkg have finished.
func (t *Tracker) Tests(pkg string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tests[pkg]
}

// Running returns the number of started tests that have not finished.
func (t *Tracker) Running() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.running)
}

// Statistics returns the counts of every finished test.
func (t *Tracker) Statistics() *events.RunStatistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := &events.RunStatistics{
		ExecutedTests: t.executed,
		Stats:         make(map[events.Outcome]int64, len(t.stats)),
	}
	for outcome, n := range t.stats {
		stats.Stats[outcome] = n
	}
	return stats
}

// Interrupted returns every test that started but never finished, in start
// order, with OutcomeNone. They are not counted in Statistics.
func (t *Tracker) Interrupted() []events.TestResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := make([]*inflight, 0, len(t.running))
	for _, test := range t.running {
		pending = append(pending, test)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].seq < pending[j].seq
	})

	interrupted := make([]events.TestResult, 0, len(pending))
	for _, test := range pending {
		interrupted = append(interrupted, newResult(test, events.OutcomeNone))
	}
	return interrupted
}
