package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	logger.Info("submitted recap", String(FieldComponent, "recap"), String(FieldJobID, "r1"), Int("attempt", 2))

	line := buf.String()
	if !strings.Contains(line, "INFO recap: submitted recap") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "job_id=r1") || !strings.Contains(line, "attempt=2") {
		t.Fatalf("expected key=value attrs, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be a prefix, not an attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	logger.Error("request failed", Error(errors.New("connection refused")))

	if !strings.Contains(buf.String(), `error="connection refused"`) {
		t.Fatalf("expected quoted error value, got %q", buf.String())
	}
}

func TestConsoleHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	logger.Info("hidden")
	logger.Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected info/debug suppressed at warn level, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("expected warning emitted, got %q", buf.String())
	}
}

func TestJSONHandlerKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	logger.Info("submitted recap", String(FieldJobID, "r1"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if record["msg"] != "submitted recap" || record["level"] != "info" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record["job_id"] != "r1" {
		t.Fatalf("expected job_id attr, got %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must stay silent.
	logger.Info("ignored")
	logger.Error("ignored as well", Error(errors.New("boom")))
}

func TestNewComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Options{Output: &buf})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	NewComponentLogger(base, "auth").Info("token cleared")
	if !strings.Contains(buf.String(), "auth: token cleared") {
		t.Fatalf("expected component prefix, got %q", buf.String())
	}
	// Nil base falls back to a no-op logger.
	NewComponentLogger(nil, "auth").Info("ignored")
}
