package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

type logRecord struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	// Use JSON handler for easier parsing in tests
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	testLogger := slog.New(handler)

	originalLogger := Logger
	Logger = testLogger
	defer func() { Logger = originalLogger }()

	tests := []struct {
		name  string
		fn    func(msg string, args ...any)
		level string
		msg   string
	}{
		{name: "Info", fn: Info, level: "INFO", msg: "info message"},
		{name: "Error", fn: Error, level: "ERROR", msg: "error message"},
		{name: "Warn", fn: Warn, level: "WARN", msg: "warn message"},
		{name: "Debug", fn: Debug, level: "DEBUG", msg: "debug message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg)

			var rec logRecord
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("failed to unmarshal log output: %v", err)
			}

			if rec.Msg != tt.msg {
				t.Errorf("expected msg %q, got %q", tt.msg, rec.Msg)
			}
			if rec.Level != tt.level {
				t.Errorf("expected level %q, got %q", tt.level, rec.Level)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	var buf bytes.Buffer
	Setup(&buf, "warn", "json")

	Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	Warn("shown", "command", "lifetop")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if rec["command"] != "lifetop" {
		t.Errorf("expected command attribute, got %v", rec["command"])
	}

	buf.Reset()
	Setup(&buf, "debug", "text")
	Debug("text line")
	if !strings.Contains(buf.String(), "msg=\"text line\"") {
		t.Errorf("expected text handler output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWith(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	var buf bytes.Buffer
	Setup(&buf, "info", "json")

	With("component", "tracker").Info("sampled")
	if !strings.Contains(buf.String(), `"component":"tracker"`) {
		t.Errorf("expected component attribute, got %q", buf.String())
	}
}
