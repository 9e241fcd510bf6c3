// Package logging builds the slog loggers shared by the server and the CLI.
//
// Every logger masks attributes that carry bot API credentials, so a debug
// dump of a request or a session never leaks a token to disk.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Redacted replaces the value of any sensitive attribute.
const Redacted = "[redacted]"

var sensitiveKeys = map[string]bool{
	"token":         true,
	"access_token":  true,
	"password":      true,
	"authorization": true,
	"cookie":        true,
}

// NewLogger writes to stderr; stdout belongs to command output.
func NewLogger(level slog.Level, format string) *slog.Logger {
	return NewLoggerWithWriter(level, format, os.Stderr)
}

// NewLoggerWithWriter builds a text or JSON logger on w. Unknown formats fall
// back to text.
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewFileLogger appends to path. The terminal browser logs here because it
// owns the screen while it runs.
func NewFileLogger(level slog.Level, format, path string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return NewLoggerWithWriter(level, format, f), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug, info, warn(ing) and error to a slog level, ignoring
// case and surrounding space. Anything else is info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "warning":
		level = slog.LevelWarn
	case "debug", "info", "warn", "error":
		// slog's own names.
		if err := level.UnmarshalText([]byte(v)); err != nil {
			level = slog.LevelInfo
		}
	default:
		level = slog.LevelInfo
	}
	return level
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] && a.Value.Kind() != slog.KindGroup {
		return slog.String(a.Key, Redacted)
	}
	return a
}
