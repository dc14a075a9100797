package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ParseLevel maps a config string (debug, info, warn, error) to a slog level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewHandler builds the slog handler for the configured output format.
// The console format is rendered by charmbracelet/log for local runs; json is
// the default for deployments.
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	case FormatConsole:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		}), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// New is a shortcut for NewSlogLogger(slog.New(NewHandler(...))).
func New(w io.Writer, format, level string) (*SlogLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	h, err := NewHandler(w, format, lvl)
	if err != nil {
		return nil, err
	}
	return NewSlogLogger(slog.New(h)), nil
}

type nopLogger struct{}

// Nop returns a Logger that discards everything; handy in tests.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(_ context.Context, _ string, _ ...any) {}
func (nopLogger) Info(_ context.Context, _ string, _ ...any)  {}
func (nopLogger) Warn(_ context.Context, _ string, _ ...any)  {}
func (nopLogger) Error(_ context.Context, _ string, _ ...any) {}
func (n nopLogger) With(_ ...any) Logger                      { return n }
