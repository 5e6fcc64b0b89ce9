package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestChildSpansShareTrace(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "search", "req-1")
	_, child := StartChildSpan(ctx, "ingredient_rank")
	child.SetAttr("hits", 3)
	child.End()
	root.End()

	if child.TraceID != "req-1" {
		t.Errorf("expected trace id to propagate, got %q", child.TraceID)
	}
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Fatalf("expected child to be attached to root")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	root.Log(ctx, logger)
	out := buf.String()
	if !strings.Contains(out, "span=search") || !strings.Contains(out, "span=ingredient_rank") {
		t.Errorf("expected both spans in log output, got %q", out)
	}
}

func TestLogSkippedAboveDebug(t *testing.T) {
	_, root := StartSpan(context.Background(), "search", "req-2")
	root.End()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	root.Log(context.Background(), logger)
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}
