// Package logger implements the file logger: a single-report event sink that
// renders test lifecycle events from an events.Hub into a text file.
//
// Lifecycle: Initialize resolves settings, opens the report and subscribes to
// the hub. Events published from any goroutine are queued and rendered one at
// a time in arrival order. The run-complete event detaches the logger,
// drains the queue, writes the summary and releases the file, all before the
// publisher regains control.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ansel1/testlog/config"
	"github.com/ansel1/testlog/env"
	"github.com/ansel1/testlog/events"
	"github.com/ansel1/testlog/output"
	"github.com/ansel1/testlog/queue"
	"github.com/ansel1/testlog/sink"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

// ErrAlreadyInitialized is returned when Initialize is called twice.
var ErrAlreadyInitialized = errors.New("logger: already initialized")

// FileLogger writes a human-readable report of one test run to a file.
type FileLogger struct {
	id       string
	env      env.Environment
	clock    env.Clock
	debugger env.Debugger
	log      arbor.ILogger
	status   *output.Status
	capacity int

	settings config.Settings
	sink     *sink.FileSink
	render   *renderer
	queue    *queue.Queue[events.Event]
	sub      *events.Subscription

	mu          sync.Mutex
	initialized bool
	released    bool
	completed   bool
	err         error
}

// Option configures a FileLogger.
type Option func(*FileLogger)

// WithEnvironment replaces the process environment used to resolve defaults.
func WithEnvironment(e env.Environment) Option {
	return func(l *FileLogger) {
		l.env = e
	}
}

// WithClock replaces the clock used to name default report files.
func WithClock(c env.Clock) Option {
	return func(l *FileLogger) {
		l.clock = c
	}
}

// WithDebugger replaces the hook run when the Debug parameter is true.
func WithDebugger(d env.Debugger) Option {
	return func(l *FileLogger) {
		l.debugger = d
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log arbor.ILogger) Option {
	return func(l *FileLogger) {
		l.log = log
	}
}

// WithStatusOutput sets where the "Log file:" line is written once the
// report is released. Defaults to stdout.
func WithStatusOutput(w io.Writer) Option {
	return func(l *FileLogger) {
		l.status = output.NewStatus(w)
	}
}

// WithQueueCapacity sets how many events may wait to be rendered before
// publishers block.
func WithQueueCapacity(n int) Option {
	return func(l *FileLogger) {
		l.capacity = n
	}
}

// New creates a FileLogger. It does nothing until Initialize is called.
func New(opts ...Option) *FileLogger {
	l := &FileLogger{
		id:       uuid.NewString(),
		env:      env.System{},
		clock:    env.SystemClock{},
		capacity: queue.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = arbor.NewLogger()
	}
	if l.debugger == nil {
		l.debugger = env.WaitForAttach{Logger: l.log}
	}
	if l.status == nil {
		l.status = output.NewStatus(os.Stdout)
	}
	return l
}

// InitializeWithDirectory is Initialize with only TestRunDirectory set.
func (l *FileLogger) InitializeWithDirectory(hub *events.Hub, testRunDirectory string) error {
	return l.Initialize(hub, config.NewParameters(map[string]string{
		config.ParamTestRunDirectory: testRunDirectory,
	}))
}

// Initialize resolves params, opens the report file and subscribes to hub.
// Malformed parameter values fall back to defaults; only file system
// failures are returned.
func (l *FileLogger) Initialize(hub *events.Hub, params config.Parameters) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return ErrAlreadyInitialized
	}

	settings := config.Resolve(params, l.env, l.clock)
	if settings.Debug {
		l.debugger.Launch()
	}

	if err := settings.EnsureLogDirectory(); err != nil {
		return err
	}
	out, err := sink.Open(settings.LogFilePath, settings.AppendEnabled())
	if err != nil {
		return err
	}

	l.settings = settings
	l.sink = out
	l.render = newRenderer(out, settings)
	l.queue = queue.New(l.render.render, queue.WithCapacity(l.capacity))
	l.sub = hub.Subscribe(l.onEvent)
	l.initialized = true

	l.log.Info().
		Str("logger_id", l.id).
		Str("path", settings.LogFilePath).
		Str("verbosity", settings.Verbosity.String()).
		Bool("append", settings.AppendEnabled()).
		Strs("parameters", params.Names()).
		Msg("File logger attached")
	return nil
}

// onEvent runs on the publisher's goroutine.
func (l *FileLogger) onEvent(evt events.Event) {
	if evt.Kind == events.KindRunComplete {
		l.complete(evt.RunComplete)
		return
	}
	if err := l.queue.Enqueue(evt); err != nil {
		l.log.Debug().
			Str("logger_id", l.id).
			Str("kind", string(evt.Kind)).
			Msg("Event arrived after completion, dropped")
	}
}

// complete detaches from the hub, waits for every queued event to be
// rendered, then writes the summary and releases the report.
func (l *FileLogger) complete(c events.RunComplete) {
	l.sub.Close()

	l.queue.CloseWith(func() {
		func() {
			defer l.release()
			l.render.runComplete(c)
		}()

		l.mu.Lock()
		l.completed = true
		l.mu.Unlock()

		l.status.LogFile(l.settings.LogFilePath)
		l.log.Info().
			Str("logger_id", l.id).
			Bool("failed", l.render.failed).
			Msg("Test run complete")
	})
}

// release flushes and closes the report exactly once.
func (l *FileLogger) release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return
	}
	l.released = true

	err := l.sink.Err()
	if closeErr := l.sink.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		l.err = fmt.Errorf("writing %s: %w", l.sink.Path(), err)
		l.log.Error().Err(err).Str("path", l.sink.Path()).Msg("Failed to write log file")
	}
}

// Close detaches the logger and releases the report without writing a
// summary. It is safe to call at any time, any number of times.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	initialized := l.initialized
	l.mu.Unlock()
	if !initialized {
		return nil
	}

	l.sub.Close()
	l.queue.CloseWith(l.release)
	return l.Err()
}

// Err returns the first error encountered writing the report.
func (l *FileLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Settings returns the resolved configuration.
func (l *FileLogger) Settings() config.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings
}

// LogFile returns the absolute path of the report, or "" before Initialize.
func (l *FileLogger) LogFile() string {
	return l.Settings().LogFilePath
}

// Completed reports whether the run-complete event has been rendered.
func (l *FileLogger) Completed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.completed
}

// Failed reports whether the completed run recorded failures or aborted.
func (l *FileLogger) Failed() bool {
	if !l.Completed() {
		return false
	}
	return l.render.failed
}
