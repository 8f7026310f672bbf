package logging

import (
	"fmt"
	"os"
	"strings"
)

// Logger is a deliberately small, framework-agnostic logging interface.
// Components depend on this instead of a concrete backend so tests can
// inject a recorder and the binary can pick stdout or zap at startup.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// Level orders log severities for the level filter.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a config string onto a Level. Unknown values are an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Config selects the backend and threshold for New.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json (zap production), console (zap development) or
	// stdout (the plain JSON-lines StdoutLogger).
	Format string `yaml:"format"`
}

// New builds a Logger for the given config. component is attached to every
// entry so log lines can be traced back to the subsystem that emitted them.
func New(cfg Config, component string) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Format) {
	case "stdout":
		l := NewStdoutLogger(component)
		l.SetOutput(os.Stdout)
		l.SetLevel(level)
		return l, nil
	case "", "json":
		return NewZapLogger(level, false, component)
	case "console":
		return NewZapLogger(level, true, component)
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}
