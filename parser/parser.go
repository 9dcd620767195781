// Package parser decodes the line-oriented JSON stream written by
// `go test -json`.
package parser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Action values emitted by `go test -json` (see `go doc test2json`).
const (
	ActionStart       = "start"
	ActionRun         = "run"
	ActionPause       = "pause"
	ActionCont        = "cont"
	ActionPass        = "pass"
	ActionBench       = "bench"
	ActionFail        = "fail"
	ActionOutput      = "output"
	ActionSkip        = "skip"
	ActionBuildOutput = "build-output"
	ActionBuildFail   = "build-fail"
)

// TestEvent represents a single event from `go test -json` output
type TestEvent struct {
	Time        time.Time `json:"Time"`
	Action      string    `json:"Action"`
	Package     string    `json:"Package"`
	Test        string    `json:"Test,omitempty"`
	Output      string    `json:"Output,omitempty"`
	Elapsed     float64   `json:"Elapsed,omitempty"`
	Source      string    `json:"Source,omitempty"`
	ImportPath  string    `json:"ImportPath,omitempty"`
	FailedBuild string    `json:"FailedBuild,omitempty"`
}

// ParseEvent parses a single line of JSON from `go test -json` output.
// Lines that decode but carry no Action are rejected so that arbitrary JSON
// printed by a test binary is treated as plain output.
func ParseEvent(line []byte) (TestEvent, error) {
	var event TestEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return event, err
	}
	if event.Action == "" {
		return event, fmt.Errorf("parsing test event: missing Action")
	}
	return event, nil
}

// IsTerminal reports whether the event ends a test or package.
func (e TestEvent) IsTerminal() bool {
	switch e.Action {
	case ActionPass, ActionFail, ActionSkip:
		return true
	}
	return false
}

// IsPackageLevel reports whether the event belongs to a package rather than
// to one of its tests.
func (e TestEvent) IsPackageLevel() bool {
	return e.Test == ""
}

// IsBuild reports whether the event was emitted while building a package.
func (e TestEvent) IsBuild() bool {
	return e.Action == ActionBuildOutput || e.Action == ActionBuildFail
}

// ElapsedDuration converts Elapsed (seconds) to a time.Duration.
func (e TestEvent) ElapsedDuration() time.Duration {
	return time.Duration(e.Elapsed * float64(time.Second))
}

// TrimmedOutput returns Output without its trailing line terminator.
func (e TestEvent) TrimmedOutput() string {
	return strings.TrimRight(e.Output, "\r\n")
}
