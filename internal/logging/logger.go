// Package logging defines the structured-logging interface used across
// MediGuard. Implementations wrap log/slog or zerolog; pick one with New.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "session restored", "user_id", id, "source", "storage")
type Logger interface {
	// Debug logs verbose diagnostics (request bodies excluded).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// Supported output formats for New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatZerolog = "zerolog"
)

// New builds a Logger writing to w. Unknown formats fall back to text and
// unknown levels to info.
func New(format, level string, w io.Writer) Logger {
	switch strings.ToLower(format) {
	case FormatZerolog:
		return newZerologFor(w, level)
	case FormatJSON:
		return newSlogFor(w, level, true)
	default:
		return newSlogFor(w, level, false)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return newSlogFor(io.Discard, "error", false)
}
