// Package logging builds the zerolog logger. The TUI owns the terminal, so
// logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New opens (appending) the log file at path. The returned closer releases it.
func New(path string, debug bool) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWriter(f, debug), f, nil
}

// NewWriter logs to w, JSON lines with timestamps.
func NewWriter(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "mailbrief").Logger()
}

// Console logs human-readable lines to stderr, for non-interactive commands.
func Console(debug bool) zerolog.Logger {
	return NewWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, debug)
}
