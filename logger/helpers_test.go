package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ansel1/testlog/config"
	"github.com/ansel1/testlog/env"
	"github.com/ansel1/testlog/events"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2024, 10, 17, 15, 13, 34, 841_000_000, time.FixedZone("AEST", 10*3600))
	testClock = env.FixedClock(testNow)
)

const (
	sourceOne = "One.UnitTests.dll"
	sourceTwo = "Two.UnitTests.dll"
)

type harness struct {
	t      *testing.T
	dir    string
	hub    *events.Hub
	logger *FileLogger
	status *bytes.Buffer
}

// newHarness creates a logger writing into a temp directory and attaches it
// to a fresh hub.
func newHarness(t *testing.T, params map[string]string) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{
		t:      t,
		dir:    dir,
		hub:    events.NewHub(),
		status: &bytes.Buffer{},
	}
	h.logger = New(
		WithEnvironment(env.Static{Directory: dir, Machine: "build01", User: "ci"}),
		WithClock(testClock),
		WithDebugger(env.NoDebugger{}),
		WithStatusOutput(h.status),
	)

	p := config.NewParameters(params)
	if _, ok := p.Lookup(config.ParamLogFileName); !ok {
		p.Set(config.ParamLogFileName, "report.log")
	}
	require.NoError(t, h.logger.Initialize(h.hub, p))
	return h
}

func (h *harness) path() string {
	return filepath.Join(h.dir, "report.log")
}

func (h *harness) report() string {
	h.t.Helper()
	content, err := os.ReadFile(h.logger.LogFile())
	require.NoError(h.t, err)
	return string(content)
}

// result builds a result whose 10ms execution starts slot*10ms after testNow.
func result(source, name string, outcome events.Outcome, slot int) events.TestResult {
	start := testNow.Add(time.Duration(slot) * 10 * time.Millisecond)
	return events.TestResult{
		TestCase: events.TestCase{
			FullyQualifiedName: source + "." + name,
			DisplayName:        name,
			Source:             source,
		},
		Outcome:   outcome,
		StartTime: start,
		EndTime:   start.Add(10 * time.Millisecond),
		Duration:  10 * time.Millisecond,
	}
}

// publishScenario replays the reference run: three discovery messages,
// then 5 passed on One, 5 passed on Two, 3 failed and 2 skipped on One,
// and a completion reporting 15 executed tests over 3 seconds.
func publishScenario(hub *events.Hub) {
	hub.PublishDiscoveryMessage(events.Informational, "Info message")
	hub.PublishDiscoveryMessage(events.Error, "Error message")
	hub.PublishDiscoveryMessage(events.Warning, "Warning message")

	slot := 0
	for i := 1; i <= 5; i++ {
		hub.PublishResult(result(sourceOne, fmt.Sprintf("Passed%d", i), events.OutcomePassed, slot))
		slot++
	}
	for i := 1; i <= 5; i++ {
		hub.PublishResult(result(sourceTwo, fmt.Sprintf("Passed%d", i), events.OutcomePassed, slot))
		slot++
	}
	for i := 1; i <= 3; i++ {
		r := result(sourceOne, fmt.Sprintf("Failed%d", i), events.OutcomeFailed, slot)
		r.ErrorMessage = fmt.Sprintf("Assert.Fail failed. Failure %d", i)
		r.ErrorStackTrace = fmt.Sprintf("at One.Tests.Failed%d() in Tests.cs:line %d", i, 40+i)
		r.Messages = []events.ResultMessage{
			{Category: events.AdditionalInfoCategory, Text: "retry 1 of 1"},
			{Category: events.StandardOutCategory, Text: fmt.Sprintf("output from Failed%d\n", i)},
		}
		hub.PublishResult(r)
		slot++
	}
	for i := 1; i <= 2; i++ {
		hub.PublishResult(result(sourceOne, fmt.Sprintf("Skipped%d", i), events.OutcomeSkipped, slot))
		slot++
	}

	hub.PublishRunComplete(events.RunComplete{
		Statistics: &events.RunStatistics{
			ExecutedTests: 15,
			Stats: map[events.Outcome]int64{
				events.OutcomePassed:  10,
				events.OutcomeFailed:  3,
				events.OutcomeSkipped: 2,
			},
		},
		Elapsed: 3 * time.Second,
	})
}
