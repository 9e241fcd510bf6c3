package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"msg=fetched", "screen=groups"}},
		{"TEXT", []string{"msg=fetched", "screen=groups"}},
		{"json", []string{`"msg":"fetched"`, `"screen":"groups"`}},
		{" Json ", []string{`"msg":"fetched"`, `"screen":"groups"`}},
		{"logfmt", []string{"msg=fetched", "screen=groups"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			NewLoggerWithWriter(slog.LevelInfo, tt.format, &buf).Info("fetched", "screen", "groups")
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("page loaded")
	logger.Warn("list fetch failed")

	if strings.Contains(buf.String(), "page loaded") {
		t.Errorf("info record written at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "list fetch failed") {
		t.Errorf("warn record missing: %s", buf.String())
	}
}

func TestNewLoggerWithWriter_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelDebug, "json", &buf).With("component", "botapi")

	logger.Debug("login",
		"email", "ops@example.com",
		"password", "hunter2",
		slog.Group("header", "Token", "tok-123", "accept", "application/json"),
	)

	if strings.Contains(buf.String(), "hunter2") || strings.Contains(buf.String(), "tok-123") {
		t.Fatalf("credentials leaked: %s", buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec["password"] != Redacted {
		t.Errorf("password = %v, want %q", rec["password"], Redacted)
	}
	if rec["email"] != "ops@example.com" {
		t.Errorf("email = %v", rec["email"])
	}
	header, _ := rec["header"].(map[string]any)
	if header["Token"] != Redacted || header["accept"] != "application/json" {
		t.Errorf("header group = %v", header)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" warn ":  slog.LevelWarn,
		"Error":   slog.LevelError,
		"debug+2": slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botadm.log")
	logger, closer, err := NewFileLogger(slog.LevelInfo, "json", path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Info("browse started", "screen", "users")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"screen":"users"`) {
		t.Errorf("log file missing entry: %s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("log file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestNewFileLogger_BadPath(t *testing.T) {
	_, _, err := NewFileLogger(slog.LevelInfo, "text", filepath.Join(t.TempDir(), "missing", "x.log"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
