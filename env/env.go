// Package env supplies the host facts the file logger depends on: working
// directory, user and machine names, the local clock, and the debugger hook.
package env

import (
	"os"
	"os/user"
	"strings"
	"time"
)

// Environment is a read-only view of the process environment.
type Environment interface {
	CurrentDirectory() string
	MachineName() string
	UserName() string
}

// Clock supplies the current local time.
type Clock interface {
	Now() time.Time
}

// System reads the real process environment.
type System struct{}

// CurrentDirectory returns the working directory, or "." when it cannot be read.
func (System) CurrentDirectory() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// MachineName returns the host name.
func (System) MachineName() string {
	name, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return name
}

// UserName returns the login name of the current user.
func (System) UserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		// windows reports DOMAIN\user
		name := u.Username
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

// SystemClock reads the wall clock in the local time zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().Local()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// Static is an Environment with fixed values, for tests and embedding hosts.
type Static struct {
	Directory string
	Machine   string
	User      string
}

func (s Static) CurrentDirectory() string { return s.Directory }
func (s Static) MachineName() string      { return s.Machine }
func (s Static) UserName() string         { return s.User }
