// Package metrics defines the Prometheus metric collectors used by the recipe
// search service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchRequestsTotal  *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchStageLatency   *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	RankerCandidates     *prometheus.HistogramVec
	StoreLookupsTotal    *prometheus.CounterVec
	FacetDroppedTotal    *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. Passing
// prometheus.DefaultRegisterer exposes them on Handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_requests_total",
				Help: "Total recipe searches by ranking mode and outcome (ok, empty, error).",
			},
			[]string{"mode", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "End-to-end recipe search latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"mode"},
		),
		SearchStageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_stage_seconds",
				Help:    "Latency of each search pipeline stage in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"stage"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
			},
		),
		RankerCandidates: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranker_candidates",
				Help:    "Number of candidate documents scored per ranker call.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"ranker"},
		),
		StoreLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_lookups_total",
				Help: "Recipe store record lookups by backend and status (found, missing, error).",
			},
			[]string{"backend", "status"},
		),
		FacetDroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_dropped_total",
				Help: "Hits removed by each facet filter.",
			},
			[]string{"facet"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchRequestsTotal,
		m.SearchLatency,
		m.SearchStageLatency,
		m.SearchResultsCount,
		m.RankerCandidates,
		m.StoreLookupsTotal,
		m.FacetDroppedTotal,
	)

	return m
}

// Handler returns the scrape handler for the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
