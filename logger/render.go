package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/ansel1/testlog/config"
	"github.com/ansel1/testlog/events"
)

// detailSections lists the diagnostic message categories in report order.
var detailSections = []struct {
	category string
	header   string
}{
	{events.StandardOutCategory, headerStandardOutput},
	{events.StandardErrorCategory, headerStandardError},
	{events.DebugTraceCategory, headerDebugTraces},
	{events.AdditionalInfoCategory, headerAdditionalInfo},
}

// renderer formats lifecycle events into report lines. It is not safe for
// concurrent use: the FileLogger feeds it one event at a time.
type renderer struct {
	w                io.Writer
	verbosity        config.Verbosity
	targetFramework  string
	legacySkipCounts bool

	sources       *sourceResults // nil until the first aggregated result
	failedResults int            // Failed outcomes seen, whatever the verbosity
	failed        bool           // run completion reported failures or an abort
}

func newRenderer(w io.Writer, settings config.Settings) *renderer {
	return &renderer{
		w:                w,
		verbosity:        settings.Verbosity,
		targetFramework:  settings.TargetFramework,
		legacySkipCounts: settings.LegacySkipCounts,
	}
}

// render dispatches every non-terminal event kind.
func (r *renderer) render(evt events.Event) {
	switch evt.Kind {
	case events.KindRunStart:
		r.runStart(evt.RunStart.Sources)
	case events.KindDiscoveryMessage, events.KindRunMessage:
		r.message(evt.Message)
	case events.KindResult:
		r.result(&evt.Result)
	case events.KindRunComplete:
		r.runComplete(evt.RunComplete)
	}
}

func (r *renderer) line(s string) {
	io.WriteString(r.w, s+"\n")
}

func (r *renderer) linef(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *renderer) runStart(sources []string) {
	r.line(msgStartingExecution)

	if len(sources) == 0 {
		return
	}
	r.linef(msgSourcesToRun, len(sources))
	if r.verbosity >= config.Detailed {
		for _, source := range sources {
			r.line(source)
		}
	}
}

// message applies the single filtering rule shared by discovery and run
// messages.
func (r *renderer) message(m events.Message) {
	switch m.Level {
	case events.Informational:
		if r.verbosity >= config.Normal {
			r.line(m.Text)
		}
	case events.Warning:
		if r.verbosity >= config.Minimal {
			r.line(m.Text)
		}
	case events.Error:
		r.line(m.Text)
	}
}

func (r *renderer) result(res *events.TestResult) {
	var tally *sourceResult
	if r.verbosity <= config.Minimal {
		if r.sources == nil {
			r.sources = newSourceResults()
		}
		tally = r.sources.get(res.TestCase.Source)
		tally.Total++
		tally.observe(res)
	}

	switch res.Outcome {
	case events.OutcomePassed:
		if tally != nil {
			tally.Passed++
		}
		if r.verbosity >= config.Normal {
			r.writeResult(res, labelPassed)
		}

	case events.OutcomeFailed:
		r.failedResults++
		if tally != nil {
			tally.Failed++
		}
		if r.verbosity >= config.Minimal {
			r.writeResult(res, labelFailed)
		}

	case events.OutcomeSkipped:
		if tally != nil {
			// skipped results have always landed in the failed column of
			// the per-source summary; LegacySkipCounts=false corrects it
			if r.legacySkipCounts {
				tally.Failed++
			} else {
				tally.Skipped++
			}
		}
		if r.verbosity >= config.Minimal {
			r.writeResult(res, labelSkipped)
		}

	case events.OutcomeNone, events.OutcomeNotFound:
	}
}

func (r *renderer) writeResult(res *events.TestResult, label string) {
	var b strings.Builder
	b.WriteString(resultIndent)
	b.WriteString(label)
	b.WriteString(" ")
	b.WriteString(res.Name())

	if res.Outcome == events.OutcomePassed || res.Outcome == events.OutcomeFailed {
		if d := formatDuration(res.Duration); d != "" {
			b.WriteString(" [")
			b.WriteString(d)
			b.WriteString("]")
		}
	}
	r.line(b.String())

	if r.verbosity >= config.Detailed {
		r.writeDetails(res)
	}
}

func (r *renderer) writeDetails(res *events.TestResult) {
	r.writeSection(headerErrorMessage, []string{res.ErrorMessage})
	r.writeSection(headerStackTrace, []string{res.ErrorStackTrace})

	for _, section := range detailSections {
		var texts []string
		for _, m := range res.Messages {
			if m.HasCategory(section.category) {
				texts = append(texts, m.Text)
			}
		}
		r.writeSection(section.header, texts)
	}
}

// writeSection writes header followed by every non-blank text, one output
// line per text line. Nothing is written when every text is blank.
func (r *renderer) writeSection(header string, texts []string) {
	wroteHeader := false
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !wroteHeader {
			r.line(resultIndent + header)
			wroteHeader = true
		}
		for _, l := range strings.Split(strings.TrimRight(text, "\r\n"), "\n") {
			r.line(resultIndent + messageMarker + strings.TrimRight(l, "\r"))
		}
	}
}

func (r *renderer) runComplete(c events.RunComplete) {
	if c.IsCanceled {
		// TODO: decide what a canceled run should report once the engine's
		// trigger for IsCanceled is known; nothing is written for now.
	} else if c.IsAborted {
		r.failed = true
		if c.Error == nil {
			r.line(msgRunAborted)
		} else {
			r.linef(msgRunAbortedWithError, c.Error)
		}
	}

	if r.hasFailures(c.Statistics) {
		r.failed = true
	}

	if r.verbosity <= config.Minimal && r.sources != nil && r.sources.Len() > 0 {
		for _, tally := range r.sources.All() {
			r.writeSourceSummary(tally)
		}
		return
	}

	if c.Statistics.Count(events.OutcomeFailed) > 0 {
		r.line(msgRunFailed)
	} else {
		r.line(msgRunSuccessful)
	}
	r.line("")

	if c.Statistics != nil {
		r.linef(msgTotalTests, c.Statistics.ExecutedTests)
		r.writeOutcomeCount(c.Statistics, events.OutcomePassed, labelPassed)
		r.writeOutcomeCount(c.Statistics, events.OutcomeFailed, labelFailed)
		r.writeOutcomeCount(c.Statistics, events.OutcomeSkipped, labelSkipped)
	}

	r.line(msgTotalTime + formatRunDuration(c.Elapsed))
}

// hasFailures prefers the supplied statistics and falls back to the Failed
// results seen. Skipped results never count, whatever the summary columns say.
func (r *renderer) hasFailures(stats *events.RunStatistics) bool {
	if stats != nil {
		return stats.Count(events.OutcomeFailed) > 0
	}
	return r.failedResults > 0
}

func (r *renderer) writeSourceSummary(tally *sourceResult) {
	var b strings.Builder
	b.WriteString(tally.Label())
	fmt.Fprintf(&b, msgSourceCounts, tally.Failed, tally.Passed, tally.Skipped, tally.Total)
	b.WriteString(formatDuration(tally.Elapsed()))
	b.WriteString(" - ")
	b.WriteString(fileName(tally.Name))
	if r.targetFramework != "" {
		b.WriteString(" (")
		b.WriteString(r.targetFramework)
		b.WriteString(")")
	}
	r.line(b.String())
}

func (r *renderer) writeOutcomeCount(stats *events.RunStatistics, outcome events.Outcome, label string) {
	if n := stats.Count(outcome); n > 0 {
		r.linef(msgOutcomeCount, label, n)
	}
}
