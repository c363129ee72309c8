// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a default charm log on stderr.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, true, log.TextFormatter)
}

// NewActivity creates the logger for a run's activity log file. It records
// everything down to debug, with timestamps and the calling site, so the file
// documents each step of the examination.
func NewActivity(w io.Writer) *log.Logger {
	l := NewWithConfig(w, "", log.DebugLevel, true, true, log.TextFormatter)
	l.SetTimeFormat("2006-01-02 15:04:05")
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return NewWithConfig(io.Discard, "", log.FatalLevel, false, false, log.TextFormatter)
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}
