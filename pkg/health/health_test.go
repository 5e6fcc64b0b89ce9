package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunWorstStatusWins(t *testing.T) {
	c := NewChecker()
	c.Register("index", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusUp}
	})
	c.Register("store", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDegraded, Message: "slow"}
	})

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", report.Status)
	}
	if len(report.Components) != 2 {
		t.Errorf("expected 2 components, got %d", len(report.Components))
	}

	c.Register("synonyms", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown}
	})
	if got := c.Run(context.Background()).Status; got != StatusDown {
		t.Errorf("expected down, got %s", got)
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("index", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown, Message: "no segments"}
	})
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
