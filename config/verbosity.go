package config

import (
	"strconv"
	"strings"
)

// Verbosity gates which lines are written to the report.
// Levels are ordered: Quiet < Minimal < Normal < Detailed.
type Verbosity int

const (
	Quiet Verbosity = iota
	Minimal
	Normal
	Detailed
)

var verbosityNames = [...]string{"Quiet", "Minimal", "Normal", "Detailed"}

func (v Verbosity) String() string {
	if v < Quiet || v > Detailed {
		return "Verbosity(" + strconv.Itoa(int(v)) + ")"
	}
	return verbosityNames[v]
}

// ParseVerbosity parses a level name, ignoring case, or its ordinal ("0"-"3").
func ParseVerbosity(s string) (Verbosity, bool) {
	s = strings.TrimSpace(s)
	for i, name := range verbosityNames {
		if strings.EqualFold(s, name) {
			return Verbosity(i), true
		}
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '3' {
		return Verbosity(s[0] - '0'), true
	}
	return Normal, false
}

// parseBool accepts "true" or "false" in any case, surrounded by whitespace.
func parseBool(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}
