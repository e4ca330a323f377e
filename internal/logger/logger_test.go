package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("order-service", &buf, zerolog.DebugLevel)

	log.Info("order_created", "Order created", "req-1", map[string]interface{}{
		"order_id": 42,
	})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	checks := map[string]interface{}{
		"level":      "info",
		"service":    "order-service",
		"action":     "order_created",
		"request_id": "req-1",
		"message":    "Order created",
		"order_id":   float64(42),
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("%s = %v, want %v", key, entry[key], want)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Errorf("expected timestamp field")
	}
	if _, ok := entry["hostname"]; !ok {
		t.Errorf("expected hostname field")
	}
}

func TestLoggerErrorIncludesErrorGroup(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("order-service", &buf, zerolog.DebugLevel)

	log.Error("db_query_failed", "Failed to query order", "req-2", errors.New("boom"), nil)
	log.Error("validation_failed", "Bad request", "req-3", nil, nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	group, ok := entries[0]["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error group, got %v", entries[0]["error"])
	}
	if group["msg"] != "boom" {
		t.Errorf("expected error msg boom, got %v", group["msg"])
	}
	if _, ok := entries[1]["error"]; ok {
		t.Errorf("expected no error group for nil error")
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("order-service", &buf, ParseLevel("info"))

	log.Debug("request_started", "GET /api/orders", "req-4", nil)
	if buf.Len() != 0 {
		t.Errorf("expected debug entry to be dropped, got %q", buf.String())
	}
}

func TestNewUsesConfiguredLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "warn", want: zerolog.WarnLevel},
		{level: " INFO ", want: zerolog.InfoLevel},
		{level: "", want: zerolog.DebugLevel},
		{level: "verbose", want: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		if got := New("api-server", tt.level).level; got != tt.want {
			t.Errorf("New(%q) level = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestWithChangesService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("bootstrap", &buf, zerolog.DebugLevel).With("notification-subscriber")

	log.Info("service_started", "started", "", nil)

	entries := decodeLines(t, &buf)
	if entries[0]["service"] != "notification-subscriber" {
		t.Errorf("expected service override, got %v", entries[0]["service"])
	}
}

func TestGenerateRequestIDIsUnique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
