package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoggerComponentField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: "gateway", Output: &buf})

	logger.Info("fetch completed", "action", "getExpenses")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if line["component"] != "gateway" {
		t.Errorf("component = %v, want gateway", line["component"])
	}
	if line["action"] != "getExpenses" {
		t.Errorf("action = %v, want getExpenses", line["action"])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "text", Component: ComponentApp, Output: &buf})

	derived := logger.WithComponent(ComponentStore)
	if derived.Component() != ComponentStore {
		t.Fatalf("component = %q, want %q", derived.Component(), ComponentStore)
	}
	derived.Info("backend ready")
	if !strings.Contains(buf.String(), "component=store") {
		t.Errorf("log line missing component: %q", buf.String())
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "text", Component: ComponentApp, Output: &buf})

	logger.Debug("noise")
	if buf.Len() != 0 {
		t.Errorf("debug line emitted at info level: %q", buf.String())
	}
}
