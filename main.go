// Command testlog reads `go test -json` output and writes a plain-text test
// report file, optionally showing live progress in the terminal.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ansel1/testlog/config"
	"github.com/ansel1/testlog/engine"
	"github.com/ansel1/testlog/events"
	"github.com/ansel1/testlog/logger"
	"github.com/ansel1/testlog/logging"
	"github.com/ansel1/testlog/output"
	"github.com/ansel1/testlog/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
)

// Exit codes
const (
	exitSuccess     = 0 // all tests passed
	exitTestFailure = 1 // a test failed or the run aborted
	exitError       = 2 // bad usage, configuration or I/O
)

type options struct {
	infile   string
	outfile  string
	jsonfile string
	replay   bool
	rate     float64

	configFile      string
	params          []string
	verbosity       string
	logFile         string
	appendReport    bool
	resultsDir      string
	targetFramework string

	sources     []string
	parallel    int
	tui         bool
	logLevel    string
	diagnostics string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command and returns the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := exitSuccess
	cmd := newRootCmd(stdin, stdout, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return code
}

func newRootCmd(stdin io.Reader, stdout io.Writer, code *int) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "testlog",
		Short: "Write a test report file from go test -json output",
		Long: `testlog reads the JSON event stream written by "go test -json" and
writes a human-readable report of the run to a log file.

Examples:
  go test -json ./... | testlog
  go test -json ./... | testlog --verbosity detailed --log-file results.log
  testlog -f run.json --param Verbosity=minimal --param Append=true
  testlog -f run.json --replay --rate 0.5 --tui`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := run(cmd, opts, stdin, stdout)
			*code = c
			return err
		},
	}

	f := cmd.Flags()

	// Input flags
	f.StringVarP(&opts.infile, "file", "f", "", "Read from file instead of stdin")
	f.StringVar(&opts.outfile, "outfile", "", "Save all input to the specified file")
	f.StringVar(&opts.jsonfile, "jsonfile", "", "Save JSON events to the specified file")
	f.BoolVar(&opts.replay, "replay", false, "Replay events with timing from the original run (requires -f)")
	f.Float64Var(&opts.rate, "rate", 1.0, "Replay rate multiplier (0=instant, 1=original speed, 0.5=2x speed)")

	// Report flags
	f.StringVar(&opts.configFile, "config", "", "Load logger parameters from a YAML or TOML file")
	f.StringArrayVarP(&opts.params, "param", "p", nil, "Logger parameter as name=value (repeatable)")
	f.StringVar(&opts.verbosity, "verbosity", "", "Report verbosity: quiet, minimal, normal, detailed")
	f.StringVar(&opts.logFile, "log-file", "", "Report file name, relative to the results directory")
	f.BoolVar(&opts.appendReport, "append", false, "Append to an existing report instead of overwriting it")
	f.StringVar(&opts.resultsDir, "results-directory", "", "Directory for the report (default: current directory)")
	f.StringVar(&opts.targetFramework, "target-framework", "", "Target framework shown in per-source summaries")

	// Run flags
	f.StringArrayVar(&opts.sources, "source", nil, "Test source announced at run start (repeatable)")
	f.IntVar(&opts.parallel, "parallel", 0, "Dispatch events of different packages from this many goroutines")
	f.BoolVar(&opts.tui, "tui", isTerminal(stdout), "Show live progress (default when stdout is a terminal)")
	f.StringVar(&opts.logLevel, "log-level", logging.DefaultLevel, "Diagnostic log level: trace, debug, info, warn, error")
	f.StringVar(&opts.diagnostics, "diagnostics", "", "Write diagnostic logs to this file")

	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// buildParameters layers logger parameters: the config file first, then
// --param assignments, then the explicit flags.
func buildParameters(cmd *cobra.Command, opts *options) (config.Parameters, error) {
	params := config.NewParameters(nil)

	if opts.configFile != "" {
		fromFile, err := config.LoadFile(opts.configFile)
		if err != nil {
			return params, fmt.Errorf("loading config: %w", err)
		}
		params.Merge(fromFile)
	}

	assigned, err := config.ParseAssignments(opts.params)
	if err != nil {
		return params, err
	}
	params.Merge(assigned)

	flags := cmd.Flags()
	set := func(flag, name, value string) {
		if flags.Changed(flag) {
			params.Set(name, value)
		}
	}
	set("verbosity", config.ParamVerbosity, opts.verbosity)
	set("log-file", config.ParamLogFileName, opts.logFile)
	set("append", config.ParamAppend, strconv.FormatBool(opts.appendReport))
	set("results-directory", config.ParamTestRunDirectory, opts.resultsDir)
	set("target-framework", config.ParamTargetFramework, opts.targetFramework)

	return params, nil
}

func run(cmd *cobra.Command, opts *options, stdin io.Reader, stdout io.Writer) (int, error) {
	if opts.replay && opts.infile == "" {
		return exitError, errors.New("--replay requires -f <filename>")
	}
	if opts.rate < 0 {
		return exitError, errors.New("--rate must be >= 0")
	}

	params, err := buildParameters(cmd, opts)
	if err != nil {
		return exitError, err
	}

	log := logging.New(logging.Config{
		Level:   opts.logLevel,
		File:    opts.diagnostics,
		Console: !opts.tui,
	})

	input := stdin
	if opts.infile != "" {
		f, err := os.Open(opts.infile)
		if err != nil {
			return exitError, fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		input = f
		if opts.replay {
			input = engine.NewReplayReader(f, opts.rate)
		}
	}

	engineOpts := []engine.Option{
		engine.WithSources(opts.sources...),
		engine.WithParallel(opts.parallel),
		engine.WithLogger(log),
	}
	for _, pass := range []struct {
		path string
		with func(io.Writer) engine.Option
	}{
		{opts.outfile, engine.WithRawOutput},
		{opts.jsonfile, engine.WithJSONOutput},
	} {
		if pass.path == "" {
			continue
		}
		f, err := os.Create(pass.path)
		if err != nil {
			return exitError, fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		engineOpts = append(engineOpts, pass.with(f))
	}

	// the progress view owns the terminal until it exits
	var deferred bytes.Buffer
	statusOut := stdout
	if opts.tui {
		statusOut = &deferred
	}

	hub := events.NewHub()
	report := logger.New(logger.WithLogger(log), logger.WithStatusOutput(statusOut))
	if err := report.Initialize(hub, params); err != nil {
		return exitError, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.NewEngine(engineOpts...)
	var runErr error
	if opts.tui {
		runErr, err = runWithProgress(ctx, eng, input, hub, stdout, log)
	} else {
		runErr = eng.Run(ctx, input, hub)
	}

	closeErr := report.Close()
	io.Copy(stdout, &deferred)
	if err != nil {
		return exitError, err
	}
	if closeErr != nil {
		return exitError, closeErr
	}

	failed := report.Failed() || runErr != nil
	output.NewStatus(stdout).RunResult(failed)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return exitError, runErr
	}
	if failed {
		return exitTestFailure, nil
	}
	return exitSuccess, nil
}

// runWithProgress runs the engine behind the progress view. Quitting the
// view before the run completes cancels the run.
func runWithProgress(ctx context.Context, eng *engine.Engine, input io.Reader, hub *events.Hub, stdout io.Writer, log arbor.ILogger) (runErr, viewErr error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewModel(), tea.WithOutput(stdout), tea.WithContext(ctx))
	sub := tui.Attach(hub, p.Send)
	defer sub.Close()

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(ctx, input, hub)
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		viewErr = fmt.Errorf("running progress view: %w", err)
	}
	cancel()
	runErr = <-done

	log.Debug().Bool("aborted", runErr != nil).Msg("Progress view closed")
	return runErr, viewErr
}
