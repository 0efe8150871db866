package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "json", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug().Msg("hidden")
	logger.Info().Str("module", "STACK").Msg("resolved")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["module"] != "STACK" {
		t.Errorf("module = %v, want STACK", rec["module"])
	}
	if rec["level"] != "info" {
		t.Errorf("level = %v, want info", rec["level"])
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "console", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New("loud", "json", &buf); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New("info", "xml", &buf); err == nil {
		t.Error("expected error for invalid format")
	}
}
