package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ansel1/testlog/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2024, 10, 17, 15, 13, 34, 841_000_000, time.FixedZone("AEST", 10*3600))
	testClock = env.FixedClock(testNow)
)

func testEnv(dir string) env.Static {
	return env.Static{Directory: dir, Machine: "build01", User: "ci"}
}

func TestParameters_CaseInsensitive(t *testing.T) {
	p := NewParameters(map[string]string{"testrundirectory": "/tmp/a"})

	v, ok := p.Lookup("TestRunDirectory")
	require.True(t, ok)
	assert.Equal(t, "/tmp/a", v)

	p.Set("TESTRUNDIRECTORY", "/tmp/b")
	v, _ = p.Lookup("TestRunDirectory")
	assert.Equal(t, "/tmp/b", v)
	assert.Equal(t, []string{"testrundirectory"}, p.Names())

	_, ok = p.Lookup("Verbosity")
	assert.False(t, ok)
}

func TestParameters_Merge(t *testing.T) {
	base := NewParameters(map[string]string{"Verbosity": "quiet", "Append": "true"})
	base.Merge(NewParameters(map[string]string{"verbosity": "detailed"}))

	v, _ := base.Lookup(ParamVerbosity)
	assert.Equal(t, "detailed", v)
	v, _ = base.Lookup(ParamAppend)
	assert.Equal(t, "true", v)
}

func TestParseAssignments(t *testing.T) {
	p, err := ParseAssignments([]string{"Verbosity=minimal", "LogFileName=a=b.log"})
	require.NoError(t, err)

	v, _ := p.Lookup(ParamVerbosity)
	assert.Equal(t, "minimal", v)
	v, _ = p.Lookup(ParamLogFileName)
	assert.Equal(t, "a=b.log", v)

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseAssignments([]string{"=value"})
	assert.Error(t, err)
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		input string
		want  Verbosity
		ok    bool
	}{
		{"Quiet", Quiet, true},
		{"minimal", Minimal, true},
		{"NORMAL", Normal, true},
		{" detailed ", Detailed, true},
		{"2", Normal, true},
		{"0", Quiet, true},
		{"Invalid", Normal, false},
		{"", Normal, false},
		{"4", Normal, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseVerbosity(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestVerbosity_Ordering(t *testing.T) {
	assert.True(t, Quiet < Minimal)
	assert.True(t, Minimal < Normal)
	assert.True(t, Normal < Detailed)
	assert.Equal(t, "Detailed", Detailed.String())
	assert.Equal(t, "Verbosity(7)", Verbosity(7).String())
}

func TestResolve_Defaults(t *testing.T) {
	dir := t.TempDir()
	s := Resolve(NewParameters(nil), testEnv(dir), testClock)

	assert.Equal(t, dir, s.RunDirectory)
	assert.Equal(t, Normal, s.Verbosity)
	assert.Nil(t, s.Append)
	assert.False(t, s.AppendEnabled())
	assert.False(t, s.Debug)
	assert.True(t, s.LegacySkipCounts)
	assert.Empty(t, s.TargetFramework)
	assert.Equal(t, filepath.Join(dir, "vstest.console.ci_build01_20241017_151334841.log"), s.LogFilePath)
}

func TestResolve_TestRunDirectory(t *testing.T) {
	cwd := t.TempDir()
	runDir := t.TempDir()

	s := Resolve(NewParameters(map[string]string{ParamTestRunDirectory: runDir}), testEnv(cwd), testClock)
	assert.Equal(t, runDir, s.RunDirectory)

	s = Resolve(NewParameters(map[string]string{ParamTestRunDirectory: "   "}), testEnv(cwd), testClock)
	assert.Equal(t, cwd, s.RunDirectory)
}

func TestResolve_Append(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		value string
		want  *bool
	}{
		{"true", boolPtr(true)},
		{"True", boolPtr(true)},
		{"FALSE", boolPtr(false)},
		{"Invalid", nil},
		{"", nil},
		{"1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := Resolve(NewParameters(map[string]string{ParamAppend: tt.value}), testEnv(dir), testClock)
			assert.Equal(t, tt.want, s.Append)
		})
	}
}

func TestResolve_AppendUnsetDistinctFromFalse(t *testing.T) {
	dir := t.TempDir()
	unset := Resolve(NewParameters(map[string]string{ParamAppend: "Invalid"}), testEnv(dir), testClock)
	explicit := Resolve(NewParameters(map[string]string{ParamAppend: "false"}), testEnv(dir), testClock)

	assert.Nil(t, unset.Append)
	require.NotNil(t, explicit.Append)
	assert.False(t, *explicit.Append)
	assert.Equal(t, unset.AppendEnabled(), explicit.AppendEnabled())
}

func TestResolve_Verbosity(t *testing.T) {
	dir := t.TempDir()
	for _, value := range []string{"Invalid", ""} {
		s := Resolve(NewParameters(map[string]string{ParamVerbosity: value}), testEnv(dir), testClock)
		assert.Equal(t, Normal, s.Verbosity, "value %q", value)
	}

	s := Resolve(NewParameters(map[string]string{"verbosity": "quiet"}), testEnv(dir), testClock)
	assert.Equal(t, Quiet, s.Verbosity)
}

func TestResolve_LogFileName(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	s := Resolve(NewParameters(map[string]string{ParamLogFileName: filepath.Join("logs", "run.log")}), testEnv(dir), testClock)
	assert.Equal(t, filepath.Join(dir, "logs", "run.log"), s.LogFilePath)

	abs := filepath.Join(other, "abs.log")
	s = Resolve(NewParameters(map[string]string{ParamLogFileName: abs}), testEnv(dir), testClock)
	assert.Equal(t, abs, s.LogFilePath)

	s = Resolve(NewParameters(map[string]string{ParamLogFileName: " "}), testEnv(dir), testClock)
	assert.Equal(t, filepath.Join(dir, "vstest.console.ci_build01_20241017_151334841.log"), s.LogFilePath)
}

func TestResolve_DebugAndLegacy(t *testing.T) {
	dir := t.TempDir()
	s := Resolve(NewParameters(map[string]string{
		ParamDebug:            "true",
		ParamLegacySkipCounts: "false",
	}), testEnv(dir), testClock)
	assert.True(t, s.Debug)
	assert.False(t, s.LegacySkipCounts)

	s = Resolve(NewParameters(map[string]string{
		ParamDebug:            "yes please",
		ParamLegacySkipCounts: "nope",
	}), testEnv(dir), testClock)
	assert.False(t, s.Debug)
	assert.True(t, s.LegacySkipCounts)
}

func TestResolve_TargetFramework(t *testing.T) {
	dir := t.TempDir()
	s := Resolve(NewParameters(map[string]string{ParamTargetFramework: ".NETCoreApp,Version=v8.0"}), testEnv(dir), testClock)
	assert.Equal(t, "net8.0", s.TargetFramework)

	s = Resolve(NewParameters(map[string]string{ParamTargetFramework: "banana"}), testEnv(dir), testClock)
	assert.Empty(t, s.TargetFramework)
}

func TestShortFrameworkName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{".NETCoreApp,Version=v8.0", "net8.0"},
		{".NETCoreApp,Version=v3.1", "netcoreapp3.1"},
		{".NETFramework,Version=v4.7.2", "net472"},
		{".NETFramework,Version=v4.8", "net48"},
		{".NETStandard,Version=v2.0", "netstandard2.0"},
		{".NETFramework,Version=v4.0,Profile=Client", "net40"},
		{"net8.0", "net8.0"},
		{"NET8.0-Windows", "net8.0-windows"},
		{"net8", "net8.0"},
		{"net48", "net48"},
		{"net472", "net472"},
		{"netcoreapp3.1", "netcoreapp3.1"},
		{"go1.22.3", "go1.22"},
		{"go1.23rc1", "go1.23"},
		{"", ""},
		{"Framework45", ""},
		{"banana", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortFrameworkName(tt.input))
		})
	}
}

func TestEnsureLogDirectory(t *testing.T) {
	dir := t.TempDir()
	s := Settings{LogFilePath: filepath.Join(dir, "a", "b", "report.log")}
	require.NoError(t, s.EnsureLogDirectory())
	assert.DirExists(t, filepath.Join(dir, "a", "b"))

	// a regular file blocks directory creation
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	s = Settings{LogFilePath: filepath.Join(blocker, "sub", "report.log")}
	assert.Error(t, s.EnsureLogDirectory())
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbosity: minimal\nappend: true\nLogFileName: out/report.log\ntargetFramework:\n"), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)

	v, _ := p.Lookup(ParamVerbosity)
	assert.Equal(t, "minimal", v)
	v, _ = p.Lookup(ParamAppend)
	assert.Equal(t, "true", v)
	v, _ = p.Lookup(ParamLogFileName)
	assert.Equal(t, "out/report.log", v)
	v, ok := p.Lookup(ParamTargetFramework)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestLoadFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger.toml")
	require.NoError(t, os.WriteFile(path, []byte("Verbosity = \"detailed\"\nAppend = false\n"), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)

	v, _ := p.Lookup(ParamVerbosity)
	assert.Equal(t, "detailed", v)
	v, _ = p.Lookup(ParamAppend)
	assert.Equal(t, "false", v)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "logger.ini")
	require.NoError(t, os.WriteFile(ini, []byte("a=b"), 0o644))
	_, err = LoadFile(ini)
	assert.ErrorContains(t, err, "unsupported")

	nested := filepath.Join(dir, "nested.yaml")
	require.NoError(t, os.WriteFile(nested, []byte("verbosity:\n  level: quiet\n"), 0o644))
	_, err = LoadFile(nested)
	assert.ErrorContains(t, err, "nested")
}

func boolPtr(b bool) *bool {
	return &b
}
