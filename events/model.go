package events

import (
	"strings"
	"time"
)

// Outcome is the computed result of a single test.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePassed
	OutcomeFailed
	OutcomeSkipped
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "Passed"
	case OutcomeFailed:
		return "Failed"
	case OutcomeSkipped:
		return "Skipped"
	case OutcomeNotFound:
		return "NotFound"
	default:
		return "None"
	}
}

// MessageLevel is the severity of a discovery or run message.
type MessageLevel int

const (
	Informational MessageLevel = iota
	Warning
	Error
)

func (l MessageLevel) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Informational"
	}
}

// Diagnostic message categories attached to a TestResult.
const (
	StandardOutCategory    = "StdOutMsgs"
	StandardErrorCategory  = "StdErrMsgs"
	DebugTraceCategory     = "DbgTrcMsgs"
	AdditionalInfoCategory = "AdditionalInfo"
)

// TestCase identifies a test independently of any one execution.
type TestCase struct {
	FullyQualifiedName string
	DisplayName        string
	Source             string // originating binary or package
}

// ResultMessage is one diagnostic message captured while a test ran.
type ResultMessage struct {
	Category string
	Text     string
}

// HasCategory reports whether the message belongs to category, ignoring case.
func (m ResultMessage) HasCategory(category string) bool {
	return strings.EqualFold(m.Category, category)
}

// TestResult is one observed test outcome, as produced by the execution engine.
type TestResult struct {
	TestCase        TestCase
	DisplayName     string // optional override of TestCase.DisplayName
	Outcome         Outcome
	ErrorMessage    string
	ErrorStackTrace string
	Messages        []ResultMessage
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// Name returns the display name, falling back to the test case's name.
func (r *TestResult) Name() string {
	if strings.TrimSpace(r.DisplayName) != "" {
		return r.DisplayName
	}
	return r.TestCase.DisplayName
}

// RunStatistics are the authoritative totals reported at run completion.
type RunStatistics struct {
	ExecutedTests int64
	Stats         map[Outcome]int64
}

// Count returns the number of tests recorded for outcome.
func (s *RunStatistics) Count(outcome Outcome) int64 {
	if s == nil || s.Stats == nil {
		return 0
	}
	return s.Stats[outcome]
}

// RunStart is the payload of KindRunStart.
type RunStart struct {
	Sources []string
}

// Message is the payload of KindDiscoveryMessage and KindRunMessage.
type Message struct {
	Level MessageLevel
	Text  string
}

// RunComplete is the payload of KindRunComplete.
type RunComplete struct {
	Statistics *RunStatistics // nil when the engine supplied none
	IsCanceled bool
	IsAborted  bool
	Error      error
	Elapsed    time.Duration
}
