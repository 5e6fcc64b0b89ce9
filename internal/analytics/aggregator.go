package analytics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/parser"
)

// latencyWindow bounds the samples kept for percentiles.
const latencyWindow = 10000

type AggregatedStats struct {
	TotalSearches     int64            `json:"total_searches"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	ErrorCount        int64            `json:"error_count"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      int64            `json:"p50_latency_ms"`
	P95LatencyMs      int64            `json:"p95_latency_ms"`
	P99LatencyMs      int64            `json:"p99_latency_ms"`
	Modes             map[string]int64 `json:"modes"`
	TopIngredients    []QueryCount     `json:"top_ingredients"`
	TopKeywords       []QueryCount     `json:"top_keywords"`
	ZeroResultQueries []QueryCount     `json:"zero_result_queries"`
	QueriesPerMinute  float64          `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running totals of served searches.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     atomic.Int64
	zeroResults       atomic.Int64
	errors            atomic.Int64
	latencies         []int64
	next              int
	modes             map[string]int64
	ingredientCounts  map[string]int64
	keywordCounts     map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		modes:             make(map[string]int64),
		ingredientCounts:  make(map[string]int64),
		keywordCounts:     make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
	}
}

func (a *Aggregator) Record(event SearchEvent) {
	a.totalSearches.Add(1)
	switch event.Type {
	case EventSearchError:
		a.errors.Add(1)
		return
	case EventZeroResult:
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % latencyWindow
	}
	a.modes[event.Mode]++
	for _, ing := range parser.ParseIngredients(event.Ingredients).Ingredients {
		a.ingredientCounts[ing]++
	}
	if event.Keywords != "" {
		a.keywordCounts[event.Keywords]++
	}
	if event.Type == EventZeroResult {
		a.zeroResultQueries[describe(event)]++
	}
}

func describe(event SearchEvent) string {
	switch {
	case event.Keywords == "":
		return event.Ingredients
	case event.Ingredients == "":
		return event.Keywords
	default:
		return event.Ingredients + " | " + event.Keywords
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches.Load(),
		ZeroResultCount: a.zeroResults.Load(),
		ErrorCount:      a.errors.Load(),
		Modes:           make(map[string]int64, len(a.modes)),
	}
	for m, n := range a.modes {
		stats.Modes[m] = n
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopIngredients = topN(a.ingredientCounts, 10)
	stats.TopKeywords = topN(a.keywordCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
