package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ansel1/testlog/env"
)

// Settings is the resolved, immutable configuration of one file logger.
type Settings struct {
	LogFilePath      string    // absolute path of the report
	Append           *bool     // nil means unset: create, overwriting any existing file
	Verbosity        Verbosity // defaults to Normal
	RunDirectory     string    // defaults to the current directory
	TargetFramework  string    // short moniker, "" when absent
	Debug            bool
	LegacySkipCounts bool // count Skipped results in the Failed bucket of per-source summaries
}

// AppendEnabled reports whether the report should be appended to.
func (s Settings) AppendEnabled() bool {
	return s.Append != nil && *s.Append
}

// DefaultLogFileName synthesizes the report name used when LogFileName is absent.
func DefaultLogFileName(e env.Environment, clock env.Clock) string {
	now := clock.Now()
	return fmt.Sprintf("vstest.console.%s_%s_%s_%s%03d.log",
		e.UserName(),
		e.MachineName(),
		now.Format("20060102"),
		now.Format("150405"),
		now.Nanosecond()/1_000_000)
}

// Resolve translates parameters into Settings. Unparsable values are
// ignored in favor of defaults; Resolve performs no I/O.
func Resolve(params Parameters, e env.Environment, clock env.Clock) Settings {
	s := Settings{
		Verbosity:        Normal,
		LegacySkipCounts: true,
	}

	if v, ok := params.Lookup(ParamDebug); ok {
		if debug, ok := parseBool(v); ok {
			s.Debug = debug
		}
	}

	s.RunDirectory = e.CurrentDirectory()
	if v, ok := params.Lookup(ParamTestRunDirectory); ok && strings.TrimSpace(v) != "" {
		s.RunDirectory = v
	}

	if v, ok := params.Lookup(ParamAppend); ok {
		if appendFlag, ok := parseBool(v); ok {
			s.Append = &appendFlag
		}
	}

	if v, ok := params.Lookup(ParamVerbosity); ok {
		if verbosity, ok := ParseVerbosity(v); ok {
			s.Verbosity = verbosity
		}
	}

	if v, ok := params.Lookup(ParamLegacySkipCounts); ok {
		if legacy, ok := parseBool(v); ok {
			s.LegacySkipCounts = legacy
		}
	}

	logFileName, ok := params.Lookup(ParamLogFileName)
	if !ok || strings.TrimSpace(logFileName) == "" {
		logFileName = DefaultLogFileName(e, clock)
	}
	path := logFileName
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.RunDirectory, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.LogFilePath = path

	if v, ok := params.Lookup(ParamTargetFramework); ok {
		s.TargetFramework = ShortFrameworkName(v)
	}

	return s
}

// EnsureLogDirectory creates the parent directory of the report if needed.
func (s Settings) EnsureLogDirectory() error {
	dir := filepath.Dir(s.LogFilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory %s: %w", dir, err)
	}
	return nil
}
