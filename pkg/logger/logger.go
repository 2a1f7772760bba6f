// Package logger defines the small logging surface used by sessions and
// transport engines, with a slog-backed default and a zerolog builder.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger accepts a message followed by alternating key/value pairs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type slogHandler struct {
	logger *slog.Logger
}

// New wraps a slog.Handler.
func New(h slog.Handler) Logger {
	return &slogHandler{logger: slog.New(h)}
}

func (handler *slogHandler) Error(msg string, args ...any) {
	handler.logger.Error(msg, args...)
}

func (handler *slogHandler) Warn(msg string, args ...any) {
	handler.logger.Warn(msg, args...)
}

func (handler *slogHandler) Info(msg string, args ...any) {
	handler.logger.Info(msg, args...)
}

func (handler *slogHandler) Debug(msg string, args ...any) {
	handler.logger.Debug(msg, args...)
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromFormat builds a Logger writing to w.
// Format is one of text, json or zerolog; level is debug, info, warn or error.
func FromFormat(format, level string, w io.Writer) (Logger, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return New(slog.NewJSONHandler(w, opts)), nil
	case "zerolog":
		return NewBuild().FromBuffer(w).WithLevel(level).Make()
	default:
		return nil, fmt.Errorf("logger: unknown format %q", format)
	}
}
