// Package logging provides plotline's logging infrastructure built on
// charmbracelet/log.
//
// All log output goes to stderr; stdout is reserved for structured output
// (JSON, YAML, tables). Each package obtains a prefixed child logger:
//
//	logger := logging.New("schedule")
//	logger.Warn("dependency cycle detected", "task", id)
//
// Setup must be called before New so that child loggers inherit the
// configured level and formatter. charmbracelet/log copies state into child
// loggers at creation time; later changes to the default logger do not
// propagate to existing children.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level aliases for charmbracelet/log levels.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

// Setup configures the global logging defaults. Call once during CLI
// initialization.
//
// verbose lowers the level to Debug, quiet raises it to Error, and quiet wins
// when both are set. jsonFormat switches to the NDJSON formatter.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix. An empty component
// produces a logger without a prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// Discard returns a logger that drops everything. Tests use it to keep
// expected diagnostics out of the output.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// SetOutput overrides the output writer for the default logger. Tests use it
// with a bytes.Buffer and restore the original writer in t.Cleanup.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
