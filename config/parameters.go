// Package config resolves the file logger's flat, string-keyed parameters
// into typed Settings.
//
// Resolution never fails on malformed values: every value that cannot be
// parsed falls back to its documented default.
package config

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Recognized parameter names. Lookups ignore case.
const (
	ParamAppend           = "Append"
	ParamDebug            = "Debug"
	ParamLogFileName      = "LogFileName"
	ParamTargetFramework  = "TargetFramework"
	ParamTestRunDirectory = "TestRunDirectory"
	ParamVerbosity        = "Verbosity"
	ParamLegacySkipCounts = "LegacySkipCounts"
)

type entry struct {
	name  string // as first supplied
	value string
}

// Parameters is a case-insensitive map of parameter name to value.
// The zero value is not usable; create one with NewParameters.
type Parameters struct {
	values map[string]entry
}

// NewParameters creates an empty parameter set, optionally seeded from m.
func NewParameters(m map[string]string) Parameters {
	p := Parameters{values: make(map[string]entry, len(m))}
	for k, v := range m {
		p.Set(k, v)
	}
	return p
}

func fold(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Set stores value under name, replacing any value stored under a name that
// differs only in case.
func (p Parameters) Set(name, value string) {
	key := fold(name)
	if existing, ok := p.values[key]; ok {
		existing.value = value
		p.values[key] = existing
		return
	}
	p.values[key] = entry{name: strings.TrimSpace(name), value: value}
}

// Lookup returns the value stored under name.
func (p Parameters) Lookup(name string) (string, bool) {
	e, ok := p.values[fold(name)]
	return e.value, ok
}

// Names returns the parameter names in sorted order.
func (p Parameters) Names() []string {
	names := make([]string, 0, len(p.values))
	for _, e := range p.values {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every parameter of other into p, overriding existing values.
func (p Parameters) Merge(other Parameters) {
	for _, e := range other.values {
		p.Set(e.name, e.value)
	}
}

// ParseAssignments builds parameters from "name=value" strings.
func ParseAssignments(assignments []string) (Parameters, error) {
	p := NewParameters(nil)
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return p, fmt.Errorf("invalid parameter %q: expected name=value", a)
		}
		p.Set(name, value)
	}
	return p, nil
}
