// Package output writes operator-facing status lines, separate from the
// report file itself.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Status writes single status lines to a console stream.
// Styling is applied only when the stream is a terminal.
type Status struct {
	mu        sync.Mutex
	w         io.Writer
	useColors bool
	pathStyle lipgloss.Style
	failStyle lipgloss.Style
}

// NewStatus creates a status writer for w.
func NewStatus(w io.Writer) *Status {
	useColors := false
	if f, ok := w.(*os.File); ok {
		useColors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &Status{
		w:         w,
		useColors: useColors,
		pathStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("6")), // cyan
		failStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
	}
}

// LogFile reports where the report was written.
func (s *Status) LogFile(path string) {
	if s.useColors {
		path = s.pathStyle.Render(path)
	}
	s.println(fmt.Sprintf("Log file: %s", path))
}

// RunResult reports the overall outcome in one line.
func (s *Status) RunResult(failed bool) {
	msg := "Test run successful."
	if failed {
		msg = "Test run failed."
		if s.useColors {
			msg = s.failStyle.Render(msg)
		}
	}
	s.println(msg)
}

func (s *Status) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}
