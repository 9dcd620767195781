package results

import (
	"sync"
	"testing"
	"time"

	"github.com/ansel1/testlog/events"
	"github.com/ansel1/testlog/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pkg = "github.com/test/pkg1"

func observeAll(t *testing.T, tracker *Tracker, evts []parser.TestEvent) []events.TestResult {
	t.Helper()
	var completed []events.TestResult
	for _, evt := range evts {
		if r, ok := tracker.Observe(evt); ok {
			completed = append(completed, r)
		}
	}
	return completed
}

func TestTracker_PassedTest(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := NewTracker()

	completed := observeAll(t, tracker, []parser.TestEvent{
		{Time: start, Action: "start", Package: pkg},
		{Time: start, Action: "run", Package: pkg, Test: "TestOne"},
		{Time: start.Add(100 * time.Millisecond), Action: "output", Package: pkg, Test: "TestOne", Output: "=== RUN   TestOne\n"},
		{Time: start.Add(200 * time.Millisecond), Action: "output", Package: pkg, Test: "TestOne", Output: "    one_test.go:10: hello\n"},
		{Time: start.Add(300 * time.Millisecond), Action: "output", Package: pkg, Test: "TestOne", Output: "--- PASS: TestOne (0.50s)\n"},
		{Time: start.Add(500 * time.Millisecond), Action: "pass", Package: pkg, Test: "TestOne", Elapsed: 0.5},
	})

	require.Len(t, completed, 1)
	r := completed[0]
	assert.Equal(t, events.OutcomePassed, r.Outcome)
	assert.Equal(t, "TestOne", r.Name())
	assert.Equal(t, pkg+".TestOne", r.TestCase.FullyQualifiedName)
	assert.Equal(t, pkg, r.TestCase.Source)
	assert.Equal(t, start, r.StartTime)
	assert.Equal(t, start.Add(500*time.Millisecond), r.EndTime)
	assert.Equal(t, 500*time.Millisecond, r.Duration)
	assert.Empty(t, r.ErrorMessage)
	assert.Equal(t, []events.ResultMessage{
		{Category: events.StandardOutCategory, Text: "    one_test.go:10: hello"},
	}, r.Messages)

	assert.Equal(t, 1, tracker.Tests(pkg))
	assert.Equal(t, 0, tracker.Running())
}

func TestTracker_FailedTestErrorMessage(t *testing.T) {
	tracker := NewTracker()

	completed := observeAll(t, tracker, []parser.TestEvent{
		{Action: "run", Package: pkg, Test: "TestFail"},
		{Action: "output", Package: pkg, Test: "TestFail", Output: "    fail_test.go:12: first\n"},
		{Action: "output", Package: pkg, Test: "TestFail", Output: "    fail_test.go:13: expected 1, got 2\n"},
		{Action: "output", Package: pkg, Test: "TestFail", Output: "\n"},
		{Action: "output", Package: pkg, Test: "TestFail", Output: "--- FAIL: TestFail (0.01s)\n"},
		{Action: "fail", Package: pkg, Test: "TestFail", Elapsed: 0.01},
	})

	require.Len(t, completed, 1)
	assert.Equal(t, events.OutcomeFailed, completed[0].Outcome)
	assert.Equal(t, "fail_test.go:13: expected 1, got 2", completed[0].ErrorMessage)
	assert.Len(t, completed[0].Messages, 3)
}

func TestTracker_SkippedWithoutRunEvent(t *testing.T) {
	end := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	tracker := NewTracker()

	r, ok := tracker.Observe(parser.TestEvent{Time: end, Action: "skip", Package: pkg, Test: "TestSkip", Elapsed: 0.25})

	require.True(t, ok)
	assert.Equal(t, events.OutcomeSkipped, r.Outcome)
	assert.Equal(t, end.Add(-250*time.Millisecond), r.StartTime)
	assert.Empty(t, r.ErrorMessage)
}

func TestTracker_IgnoresPackageAndBuildEvents(t *testing.T) {
	tracker := NewTracker()

	completed := observeAll(t, tracker, []parser.TestEvent{
		{Action: "build-output", ImportPath: pkg, Output: "# " + pkg + "\n"},
		{Action: "build-fail", ImportPath: pkg},
		{Action: "output", Package: pkg, Output: "FAIL\t" + pkg + " [build failed]\n"},
		{Action: "fail", Package: pkg, Elapsed: 0.1},
	})

	assert.Empty(t, completed)
	assert.Equal(t, 0, tracker.Tests(pkg))
	assert.Equal(t, int64(0), tracker.Statistics().ExecutedTests)
}

func TestTracker_Statistics(t *testing.T) {
	tracker := NewTracker()

	observeAll(t, tracker, []parser.TestEvent{
		{Action: "pass", Package: pkg, Test: "A"},
		{Action: "pass", Package: pkg, Test: "B"},
		{Action: "fail", Package: pkg, Test: "C"},
		{Action: "skip", Package: "other", Test: "D"},
		{Action: "run", Package: "other", Test: "E"},
	})

	stats := tracker.Statistics()
	assert.Equal(t, int64(4), stats.ExecutedTests)
	assert.Equal(t, int64(2), stats.Count(events.OutcomePassed))
	assert.Equal(t, int64(1), stats.Count(events.OutcomeFailed))
	assert.Equal(t, int64(1), stats.Count(events.OutcomeSkipped))
	assert.Equal(t, int64(0), stats.Count(events.OutcomeNone))

	// the snapshot is detached from the tracker
	stats.Stats[events.OutcomePassed] = 100
	assert.Equal(t, int64(2), tracker.Statistics().Count(events.OutcomePassed))
}

func TestTracker_Interrupted(t *testing.T) {
	tracker := NewTracker()

	observeAll(t, tracker, []parser.TestEvent{
		{Action: "run", Package: pkg, Test: "TestOne"},
		{Action: "run", Package: pkg, Test: "TestTwo"},
		{Action: "output", Package: pkg, Test: "TestTwo", Output: "working\n"},
		{Action: "pass", Package: pkg, Test: "TestOne"},
		{Action: "run", Package: "other", Test: "TestThree"},
	})

	interrupted := tracker.Interrupted()
	require.Len(t, interrupted, 2)
	assert.Equal(t, "TestTwo", interrupted[0].Name())
	assert.Equal(t, events.OutcomeNone, interrupted[0].Outcome)
	assert.Equal(t, "working", interrupted[0].Messages[0].Text)
	assert.Equal(t, "TestThree", interrupted[1].Name())
	assert.Equal(t, "other", interrupted[1].TestCase.Source)

	assert.Equal(t, int64(1), tracker.Statistics().ExecutedTests)
	assert.Equal(t, 2, tracker.Running())
}

func TestTracker_Subtests(t *testing.T) {
	tracker := NewTracker()

	completed := observeAll(t, tracker, []parser.TestEvent{
		{Action: "run", Package: pkg, Test: "TestParent"},
		{Action: "run", Package: pkg, Test: "TestParent/child"},
		{Action: "fail", Package: pkg, Test: "TestParent/child"},
		{Action: "fail", Package: pkg, Test: "TestParent"},
	})

	require.Len(t, completed, 2)
	assert.Equal(t, "TestParent/child", completed[0].Name())
	assert.Equal(t, "TestParent", completed[1].Name())
}

func TestTracker_ConcurrentPackages(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for _, p := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				name := "Test" + string(rune('A'+i%26))
				tracker.Observe(parser.TestEvent{Action: "run", Package: p, Test: name})
				tracker.Observe(parser.TestEvent{Action: "pass", Package: p, Test: name})
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, int64(400), tracker.Statistics().ExecutedTests)
	assert.Equal(t, 100, tracker.Tests("a"))
	assert.Equal(t, 0, tracker.Running())
}

func TestIsFrameworkLine(t *testing.T) {
	assert.True(t, isFrameworkLine("=== RUN   TestOne\n"))
	assert.True(t, isFrameworkLine("    --- FAIL: TestParent/child (0.00s)\n"))
	assert.True(t, isFrameworkLine("=== NAME  TestOne\n"))
	assert.False(t, isFrameworkLine("    one_test.go:10: --- not a marker\n"))
	assert.False(t, isFrameworkLine("panic: boom\n"))
}
