// Package tui renders live progress of a test run while the file logger
// writes the report.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ansel1/testlog/events"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxFailures is how many of the most recent failures stay on screen.
const maxFailures = 5

// EventMsg wraps a hub event for bubbletea.
type EventMsg events.Event

// Attach forwards every event published on hub to send, typically
// (*tea.Program).Send. Close the subscription to stop forwarding.
func Attach(hub *events.Hub, send func(tea.Msg)) *events.Subscription {
	return hub.Subscribe(func(evt events.Event) {
		send(EventMsg(evt))
	})
}

// SourceState tracks the results of one test source.
type SourceState struct {
	Name    string
	Passed  int
	Failed  int
	Skipped int
	Last    string // most recent result name
}

// Total returns the number of results seen for the source.
func (s *SourceState) Total() int {
	return s.Passed + s.Failed + s.Skipped
}

// Model is the bubbletea model for the progress view.
//
// It keeps counters only; the report itself is the file logger's job.
type Model struct {
	Sources     map[string]*SourceState
	SourceOrder []string // first-seen order
	Failures    []string // most recent failed test names, oldest first
	Errors      []string // error messages published during the run

	Passed  int
	Failed  int
	Skipped int

	Finished bool
	Aborted  bool
	Elapsed  time.Duration // final run time, set when finished

	TerminalWidth  int
	TerminalHeight int

	StartTime time.Time
	now       func() time.Time

	passStyle    lipgloss.Style
	failStyle    lipgloss.Style
	skipStyle    lipgloss.Style
	neutralStyle lipgloss.Style
	spinner      spinner.Model
}

// NewModel creates a new TUI model
func NewModel() *Model {
	s := spinner.New()
	s.Spinner = spinner.Jump

	return &Model{
		Sources:        make(map[string]*SourceState),
		TerminalWidth:  80,
		TerminalHeight: 24,
		StartTime:      time.Now(),
		now:            time.Now,
		passStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		failStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		skipStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
		neutralStyle:   lipgloss.NewStyle(),
		spinner:        s,
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		if m.handleEvent(events.Event(msg)) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.TerminalWidth = msg.Width
		m.TerminalHeight = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.finish(m.now().Sub(m.StartTime))
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleEvent applies evt and reports whether the run is over.
func (m *Model) handleEvent(evt events.Event) bool {
	switch evt.Kind {
	case events.KindRunStart:
		for _, source := range evt.RunStart.Sources {
			m.source(source)
		}

	case events.KindDiscoveryMessage, events.KindRunMessage:
		if evt.Message.Level == events.Error {
			m.Errors = append(m.Errors, evt.Message.Text)
		}

	case events.KindResult:
		m.handleResult(&evt.Result)

	case events.KindRunComplete:
		m.Aborted = evt.RunComplete.IsAborted
		m.finish(evt.RunComplete.Elapsed)
		return true
	}
	return false
}

func (m *Model) handleResult(r *events.TestResult) {
	s := m.source(r.TestCase.Source)
	switch r.Outcome {
	case events.OutcomePassed:
		s.Passed++
		m.Passed++
	case events.OutcomeFailed:
		s.Failed++
		m.Failed++
		m.Failures = append(m.Failures, r.Name())
		if len(m.Failures) > maxFailures {
			m.Failures = m.Failures[len(m.Failures)-maxFailures:]
		}
	case events.OutcomeSkipped:
		s.Skipped++
		m.Skipped++
	default:
		return
	}
	s.Last = r.Name()
}

// source returns the state for name, creating it on first use.
func (m *Model) source(name string) *SourceState {
	s, ok := m.Sources[name]
	if !ok {
		s = &SourceState{Name: name}
		m.Sources[name] = s
		m.SourceOrder = append(m.SourceOrder, name)
	}
	return s
}

func (m *Model) finish(elapsed time.Duration) {
	if m.Finished {
		return
	}
	m.Finished = true
	m.Elapsed = elapsed
}

// HasFailures returns true if any tests failed or the run aborted.
func (m *Model) HasFailures() bool {
	return m.Failed > 0 || m.Aborted
}

// View renders the TUI
func (m *Model) View() string {
	var b strings.Builder

	// leave room for the failures block and the summary line
	rows := m.TerminalHeight - len(m.Failures) - 2
	order := m.SourceOrder
	if rows > 0 && len(order) > rows {
		order = order[len(order)-rows:]
	}
	for _, name := range order {
		m.renderSource(&b, m.Sources[name])
	}

	for _, name := range m.Failures {
		name = truncateLine(expandTabs(name, 8), m.TerminalWidth-4)
		b.WriteString(ensureReset("  " + m.failStyle.Render("✗") + " " + name))
		b.WriteString("\n")
	}

	m.renderSummaryLine(&b)
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderSource(b *strings.Builder, s *SourceState) {
	right := fmt.Sprintf("%s  %s  %s",
		m.count("✓", s.Passed, m.passStyle),
		m.count("✗", s.Failed, m.failStyle),
		m.count("∅", s.Skipped, m.skipStyle))

	left := s.Name
	if s.Last != "" && !m.Finished {
		left += "  " + s.Last
	}

	prefix := "  "
	if !m.Finished {
		prefix = m.getSpinnerPrefix(s.Failed > 0)
	}
	m.renderAlignedLine(b, expandTabs(left, 8), right, prefix)
}

// count renders one counter column, styled only when non-zero.
func (m *Model) count(symbol string, n int, style lipgloss.Style) string {
	s := fmt.Sprintf("%s %3d", symbol, n)
	if n > 0 {
		return style.Render(s)
	}
	return m.neutralStyle.Render(s)
}

func (m *Model) renderSummaryLine(b *strings.Builder) {
	elapsed := m.Elapsed
	if !m.Finished {
		elapsed = m.now().Sub(m.StartTime)
	}

	status := "RUNNING"
	switch {
	case !m.Finished:
	case m.Aborted:
		status = "ABORTED"
	case m.Failed > 0:
		status = "FAILED"
	default:
		status = "PASSED"
	}
	left := fmt.Sprintf("%s: %d passed, %d failed, %d skipped, %d total",
		status, m.Passed, m.Failed, m.Skipped, m.Passed+m.Failed+m.Skipped)
	if len(m.Errors) > 0 {
		left += fmt.Sprintf(", %d errors", len(m.Errors))
	}

	prefix := "  "
	if !m.Finished {
		prefix = m.getSpinnerPrefix(m.Failed > 0)
	}
	m.renderAlignedLine(b, left, formatElapsedTime(elapsed.Seconds()), prefix)
}

// formatElapsedTime formats elapsed time as X.Xs below a minute and X.Xm
// from then on.
func formatElapsedTime(seconds float64) string {
	if seconds < 0.05 {
		return "0.0s"
	}
	if seconds >= 60 {
		return fmt.Sprintf("%.1fm", seconds/60)
	}
	return fmt.Sprintf("%.1fs", seconds)
}

// getSpinnerPrefix returns the spinner string with appropriate color
func (m *Model) getSpinnerPrefix(failed bool) string {
	spinnerView := m.spinner.View()
	if failed {
		return m.failStyle.Render(spinnerView) + " "
	}
	return m.passStyle.Render(spinnerView) + " "
}

// renderAlignedLine renders a line with left-aligned and right-aligned content
func (m *Model) renderAlignedLine(b *strings.Builder, left, right, prefix string) {
	fullLeft := prefix + left

	rightWidth := lipgloss.Width(right)
	leftWidth := lipgloss.Width(fullLeft)

	availableWidth := m.TerminalWidth - rightWidth - 2
	if availableWidth < 0 {
		availableWidth = 0
	}

	if leftWidth >= availableWidth {
		// prefix may carry escape codes, so cut the plain part only
		plainRoom := availableWidth - lipgloss.Width(prefix)
		fullLeft = prefix + truncateLine(left, plainRoom)
		leftWidth = lipgloss.Width(fullLeft)
	}
	padding := availableWidth - leftWidth
	if padding < 0 {
		padding = 0
	}

	b.WriteString(fullLeft)
	b.WriteString("\033[0m")
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString("  ")
	b.WriteString(right)
	b.WriteString("\n")
}
