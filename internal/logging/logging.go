// Package logging provides the structured logger used by the pipeline,
// device and CLI layers. Numeric packages never log.
package logging

import (
	"context"
	"fmt"
	"maps"
	"strings"
)

// Level represents log levels.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel maps a config string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("logging: unknown level %q", s)
	}
}

// Fields represents structured logging fields.
type Fields map[string]any

// Logger is the logging interface consumed across the module.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields.
	WithFields(fields Fields) Logger

	// WithContext returns a logger carrying fields stored in ctx.
	WithContext(ctx context.Context) Logger

	SetLevel(level Level)
}

type ctxKey struct{}

// ContextWithFields attaches fields that WithContext will pick up.
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	if prev, ok := ctx.Value(ctxKey{}).(Fields); ok {
		merged := maps.Clone(prev)
		maps.Copy(merged, fields)
		fields = merged
	}
	return context.WithValue(ctx, ctxKey{}, fields)
}

func fieldsFromContext(ctx context.Context) (Fields, bool) {
	if ctx == nil {
		return nil, false
	}
	f, ok := ctx.Value(ctxKey{}).(Fields)
	return f, ok
}

// NopLogger discards everything.
type NopLogger struct{}

// NewNop returns a logger that discards everything.
func NewNop() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...Fields)              {}
func (NopLogger) Info(string, ...Fields)               {}
func (NopLogger) Warn(string, ...Fields)               {}
func (NopLogger) Error(error, string, ...Fields)       {}
func (n NopLogger) WithFields(Fields) Logger           { return n }
func (n NopLogger) WithContext(context.Context) Logger { return n }
func (NopLogger) SetLevel(Level)                       {}
