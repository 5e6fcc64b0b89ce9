package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestComponentAndRequestAttributes(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")

	WithComponent("search-engine").Info("ready")
	FromContext(WithRequestID(context.Background(), "req-1")).Info("served")

	dec := json.NewDecoder(&buf)
	var first, second map[string]any
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decoding first line: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("decoding second line: %v", err)
	}
	if first["component"] != "search-engine" {
		t.Errorf("expected component attribute, got %v", first)
	}
	if second["request_id"] != "req-1" {
		t.Errorf("expected request_id attribute, got %v", second)
	}
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "text")
	WithComponent("index-builder").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
}
