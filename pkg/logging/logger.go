// Package logging wraps log/slog with the small surface the service needs:
// leveled structured logs, a text or json handler picked from config, and
// component/request-scoped child loggers.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds logging configuration.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" or "text"
}

// DefaultConfig returns the production defaults: info-level json to stdout.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// Logger emits structured logs. Safe for concurrent use.
type Logger struct {
	s *slog.Logger
}

// Field is a typed key/value pair attached to a log line.
type Field = slog.Attr

func String(k, v string) Field          { return slog.String(k, v) }
func Int(k string, v int) Field         { return slog.Int(k, v) }
func Int64(k string, v int64) Field     { return slog.Int64(k, v) }
func Float64(k string, v float64) Field { return slog.Float64(k, v) }
func Bool(k string, v bool) Field       { return slog.Bool(k, v) }
func Duration(k string, v time.Duration) Field {
	return slog.Duration(k, v)
}

// Err attaches an error under the conventional "error" key; nil-safe.
func Err(err error) Field {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// New builds a logger from config. Unknown levels fall back to info,
// unknown formats to text.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return &Logger{s: slog.New(h)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a child logger tagged with the component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{s: l.s.With(slog.String("component", name))}
}

// WithRequestID returns a child logger tagged with a request id.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{s: l.s.With(slog.String("request_id", id))}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *Logger) log(level slog.Level, msg string, fields []Field) {
	l.s.LogAttrs(context.Background(), level, msg, fields...)
}
