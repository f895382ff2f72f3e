// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the leveled, structured logger used across the
// daemon. It wraps log/slog rather than replacing it, so callers can still
// reach into slog.Handler / slog.Attr when they need to.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around *slog.Logger with the Info/Debug/Warn/Error
// call shape the rest of the tree uses.
type Logger struct {
	sl *slog.Logger
}

var defaultLogger = New(os.Stderr, slog.LevelInfo)

// Default returns the process-wide default logger.
func Default() *Logger { return defaultLogger }

// SetDefault replaces the process-wide default logger.
func SetDefault(l *Logger) { defaultLogger = l }

// New builds a Logger writing structured text to w at the given level.
func New(w io.Writer, level slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{sl: slog.New(h)}
}

// NewWithHandler wraps an arbitrary slog.Handler, e.g. one fanning out to
// syslog as well as stderr.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{sl: slog.New(h)}
}

// With returns a child logger that always includes the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

// Enabled reports whether a log record at level would be emitted.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.sl.Enabled(context.Background(), level)
}

// Slog exposes the underlying *slog.Logger for callers that need it
// (e.g. to pass as a slog.Handler source to a third-party library).
func (l *Logger) Slog() *slog.Logger { return l.sl }
