// Package logging builds the leveled console logger shared by every command.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

const prefix = "todos"

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error"). Unknown levels fall back to warn.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       log.TextFormatter,
		ReportTimestamp: lvl == log.DebugLevel,
		Prefix:          prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
