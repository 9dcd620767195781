package env

import (
	"os"
	"time"

	"github.com/ternarybob/arbor"
)

// Debugger is invoked when the Debug parameter is set, before the logger
// opens its report file.
type Debugger interface {
	Launch()
}

// WaitForAttach pauses the process so a debugger can attach to it.
type WaitForAttach struct {
	Logger arbor.ILogger
	Wait   time.Duration
}

// DefaultDebugWait is how long WaitForAttach pauses when Wait is unset.
const DefaultDebugWait = 30 * time.Second

func (w WaitForAttach) Launch() {
	wait := w.Wait
	if wait <= 0 {
		wait = DefaultDebugWait
	}
	if w.Logger != nil {
		w.Logger.Warn().
			Int("pid", os.Getpid()).
			Str("wait", wait.String()).
			Msg("Debug requested, waiting for debugger to attach")
	}
	time.Sleep(wait)
}

// NoDebugger ignores debug requests.
type NoDebugger struct{}

func (NoDebugger) Launch() {}
