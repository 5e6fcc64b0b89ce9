package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/kafka"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
}

func (f *fakePublisher) Publish(ctx context.Context, e kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func TestCollectorPublishesAndAggregates(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator()
	c := NewCollector(pub, agg, 16)
	c.Start(context.Background())

	c.Track(SearchEvent{Type: EventSearch, Ingredients: "Egg, milk", Mode: "simple", Returned: 3, LatencyMs: 4})
	c.Track(SearchEvent{Type: EventZeroResult, Keywords: "saffron risotto", Mode: "rrf", LatencyMs: 9})
	c.Track(SearchEvent{Type: EventSearchError, Mode: "simple", Status: 400})
	c.Close()

	if len(pub.events) != 3 {
		t.Fatalf("expected 3 published events, got %d", len(pub.events))
	}
	if pub.events[1].Key != "rrf" {
		t.Errorf("expected events keyed by mode, got %q", pub.events[1].Key)
	}

	stats := agg.Stats()
	if stats.TotalSearches != 3 || stats.ZeroResultCount != 1 || stats.ErrorCount != 1 {
		t.Errorf("unexpected totals %+v", stats)
	}
	if stats.Modes["simple"] != 1 || stats.Modes["rrf"] != 1 {
		t.Errorf("unexpected mode counts %v", stats.Modes)
	}
	if len(stats.TopIngredients) != 2 || stats.TopIngredients[0].Query != "egg" {
		t.Errorf("expected parsed ingredients, got %+v", stats.TopIngredients)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "saffron risotto" {
		t.Errorf("unexpected zero-result queries %+v", stats.ZeroResultQueries)
	}
	if stats.P99LatencyMs != 9 {
		t.Errorf("p99 = %d, want 9", stats.P99LatencyMs)
	}
}

func TestCollectorWithoutPublisher(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(nil, agg, 1)
	c.Start(context.Background())
	for range 5 {
		c.Track(SearchEvent{Type: EventSearch, Mode: "simple"})
	}
	c.Close()
	if got := agg.Stats().TotalSearches; got != 5 {
		t.Errorf("expected 5 aggregated searches, got %d", got)
	}
}

func TestTrackAfterCloseOnlyAggregates(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator()
	c := NewCollector(pub, agg, 4)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	c.Track(SearchEvent{Type: EventSearch, Mode: "simple"})
	cancel()
	c.Close()
	c.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Track(SearchEvent{Type: EventSearch, Mode: "simple"})
		}()
	}
	wg.Wait()

	pub.mu.Lock()
	published := len(pub.events)
	pub.mu.Unlock()
	if published != 1 {
		t.Errorf("expected only the pre-close event published, got %d", published)
	}
	if got := agg.Stats().TotalSearches; got != 9 {
		t.Errorf("expected 9 aggregated searches, got %d", got)
	}
}

func TestLatencyWindowIsBounded(t *testing.T) {
	agg := NewAggregator()
	for i := range latencyWindow + 100 {
		agg.Record(SearchEvent{Type: EventSearch, Mode: "simple", LatencyMs: int64(i)})
	}
	if len(agg.latencies) != latencyWindow {
		t.Errorf("expected %d samples, got %d", latencyWindow, len(agg.latencies))
	}
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(SearchEvent{Type: EventSearch, Keywords: "quick", Mode: "simple"})
	rec := httptest.NewRecorder()
	NewHandler(agg).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalSearches != 1 || len(stats.TopKeywords) != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStatsHandlerTop(t *testing.T) {
	agg := NewAggregator()
	for _, kw := range []string{"soup", "soup", "cake", "stew"} {
		agg.Record(SearchEvent{Type: EventSearch, Keywords: kw, Mode: "simple"})
	}
	h := NewHandler(agg)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/stats?top=1", nil))
	var stats AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if len(stats.TopKeywords) != 1 || stats.TopKeywords[0].Query != "soup" {
		t.Errorf("expected only soup, got %+v", stats.TopKeywords)
	}

	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/stats?top=-2", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
