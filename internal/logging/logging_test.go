package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitText(t *testing.T) {
	var buf bytes.Buffer
	logger := Init(&buf, false, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Warn("directory does not exist", "dir", "outputs")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered, got %q", out)
	}
	if !strings.Contains(out, "dir=outputs") {
		t.Errorf("expected text attrs, got %q", out)
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Init(&buf, true, slog.LevelInfo)
	logger.Info("scan complete", "files", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON log line: %v\nraw: %s", err, buf.String())
	}
	if rec["msg"] != "scan complete" {
		t.Errorf("expected msg 'scan complete', got %v", rec["msg"])
	}
}
