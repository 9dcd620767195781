package config

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// .NETCoreApp,Version=v8.0 (optionally followed by ,Profile=...)
	longFrameworkRe = regexp.MustCompile(`^(?i)\.(netcoreapp|netframework|netstandard),version=v(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:,.*)?$`)

	// net8.0, net8.0-windows, netcoreapp3.1, netstandard2.0, net472
	shortFrameworkRe = regexp.MustCompile(`^(?i)(netcoreapp|netstandard|net)(\d+(?:\.\d+)*)(-[a-z0-9.]+)?$`)

	// go1.22.3, go1.22rc1
	goToolchainRe = regexp.MustCompile(`^go(\d+)\.(\d+)`)
)

// ShortFrameworkName converts a target framework string to its short display
// moniker. It returns "" when the string is not a recognized framework name.
func ShortFrameworkName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := longFrameworkRe.FindStringSubmatch(s); m != nil {
		major, minor, patch := m[2], orZero(m[3]), m[4]
		switch strings.ToLower(m[1]) {
		case "netcoreapp":
			if n, _ := strconv.Atoi(major); n >= 5 {
				return "net" + major + "." + minor
			}
			return "netcoreapp" + major + "." + minor
		case "netstandard":
			return "netstandard" + major + "." + minor
		case "netframework":
			// .NET Framework monikers drop the dots: 4.7.2 -> net472
			return "net" + major + minor + patch
		}
	}

	if m := shortFrameworkRe.FindStringSubmatch(s); m != nil {
		name, version, platform := strings.ToLower(m[1]), m[2], strings.ToLower(m[3])
		if name == "net" && !strings.Contains(version, ".") {
			// net48 and net472 are .NET Framework; net8 is shorthand for net8.0
			if n, _ := strconv.Atoi(version); len(version) == 1 && n >= 5 {
				version += ".0"
			}
		}
		return name + version + platform
	}

	if m := goToolchainRe.FindStringSubmatch(strings.ToLower(s)); m != nil {
		return "go" + m[1] + "." + m[2]
	}

	return ""
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
