// Package logging configures slog and offers a few helpers that tag
// entries by kind.
package logging

import (
	"io"
	"log/slog"
	"time"
)

// New builds a logger writing text or JSON to w.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup builds a logger and installs it as the default.
func Setup(w io.Writer, level slog.Level, format string) *slog.Logger {
	l := New(w, level, format)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// System logs a lifecycle event.
func System(msg string, attrs ...any) {
	base := []any{slog.String("type", "sys")}
	slog.Info(msg, append(base, attrs...)...)
}

// Error logs a failure.
func Error(msg string, err error, attrs ...any) {
	base := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(base, attrs...)...)
}

// Store logs a persistence call. Successful calls are debug level.
func Store(op string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "store"),
		slog.String("op", op),
		slog.Duration("took", duration),
	}
	if err != nil {
		slog.Error("Store call failed", append(attrs, slog.Any("error", err))...)
		return
	}
	slog.Debug("Store call", attrs...)
}
