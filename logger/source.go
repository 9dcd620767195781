package logger

import (
	"strings"
	"time"

	"github.com/ansel1/testlog/events"
)

// sourceResult is the running tally for one test source. Counts only grow
// and the time bounds only widen.
type sourceResult struct {
	Name    string
	Passed  int
	Failed  int
	Skipped int
	Total   int

	StartTime time.Time // earliest start seen, zero until set
	EndTime   time.Time // latest end seen, zero until set
}

// observe widens the time bounds to cover r. Zero timestamps are ignored.
func (s *sourceResult) observe(r *events.TestResult) {
	if !r.StartTime.IsZero() && (s.StartTime.IsZero() || r.StartTime.Before(s.StartTime)) {
		s.StartTime = r.StartTime
	}
	if !r.EndTime.IsZero() && (s.EndTime.IsZero() || r.EndTime.After(s.EndTime)) {
		s.EndTime = r.EndTime
	}
}

// Elapsed returns the wall time covered by the source's results, or zero
// when no result carried timestamps.
func (s *sourceResult) Elapsed() time.Duration {
	if s.StartTime.IsZero() || s.EndTime.IsZero() || s.EndTime.Before(s.StartTime) {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Label picks the summary label: any failure wins, then any pass.
func (s *sourceResult) Label() string {
	switch {
	case s.Failed > 0:
		return labelSourceFailed
	case s.Passed > 0:
		return labelSourcePassed
	default:
		return labelSourceSkipped
	}
}

// sourceResults keeps one sourceResult per source in first-seen order.
type sourceResults struct {
	bySource map[string]*sourceResult
	order    []string
}

func newSourceResults() *sourceResults {
	return &sourceResults{
		bySource: make(map[string]*sourceResult),
	}
}

// get returns the tally for source, creating it on first use.
func (s *sourceResults) get(source string) *sourceResult {
	if r, ok := s.bySource[source]; ok {
		return r
	}
	r := &sourceResult{Name: source}
	s.bySource[source] = r
	s.order = append(s.order, source)
	return r
}

// All returns every tally in first-seen order.
func (s *sourceResults) All() []*sourceResult {
	all := make([]*sourceResult, 0, len(s.order))
	for _, name := range s.order {
		all = append(all, s.bySource[name])
	}
	return all
}

func (s *sourceResults) Len() int {
	return len(s.order)
}

// fileName returns the last element of a path using either separator.
func fileName(source string) string {
	if i := strings.LastIndexAny(source, `/\`); i >= 0 {
		return source[i+1:]
	}
	return source
}
