// Package logging builds the diagnostic logger shared by the command and
// the library packages. Diagnostics never go into the test report.
package logging

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// DefaultLevel keeps the console quiet unless something goes wrong.
const DefaultLevel = "warn"

// Config selects where diagnostics go.
type Config struct {
	Level   string // trace, debug, info, warn, error; empty means DefaultLevel
	File    string // optional diagnostics file
	Console bool   // write to the console as well
}

// New creates a logger for cfg. With neither a file nor the console
// selected, messages are discarded.
func New(cfg Config) arbor.ILogger {
	logger := arbor.NewLogger()

	if cfg.File != "" {
		logger = logger.WithFileWriter(models.WriterConfiguration{
			Type:             models.LogWriterTypeFile,
			FileName:         cfg.File,
			TimeFormat:       "15:04:05.000",
			MaxSize:          10 * 1024 * 1024,
			MaxBackups:       3,
			OutputType:       models.OutputFormatLogfmt,
			DisableTimestamp: false,
		})
	}

	if cfg.Console {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:             models.LogWriterTypeConsole,
			TimeFormat:       "15:04:05",
			DisableTimestamp: false,
		})
	}

	level := cfg.Level
	if level == "" {
		level = DefaultLevel
	}
	return logger.WithLevelFromString(level)
}
