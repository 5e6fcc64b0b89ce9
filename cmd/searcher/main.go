package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/synonym"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/middleware"
)

func main() {
	flags := pflag.NewFlagSet("recipe-searcher", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to YAML config file")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdownMetrics(context.Background())
	}

	segs, err := indexer.OpenSegments(cfg.Index)
	if err != nil {
		return err
	}
	defer segs.Close()
	slog.Info("indexes loaded",
		"ingredient_docs", segs.Ingredients.NumDocs(),
		"ingredient_terms", segs.Ingredients.Terms(),
		"content_docs", segs.Content.NumDocs(),
		"content_terms", segs.Content.Terms(),
		"ingredient_path", segs.Ingredients.Path(),
		"content_path", segs.Content.Path(),
	)

	synonyms, err := loadSynonyms(cfg.Index.SynonymsPath)
	if err != nil {
		return err
	}

	analyzer, err := analysis.New(cfg.Index.Analyzer)
	if err != nil {
		return err
	}

	store, err := recipe.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening recipe store: %w", err)
	}
	if store != nil {
		defer store.Close()
		store = recipe.Instrument(store, cfg.Store.Backend, m)
		slog.Info("recipe store ready", "backend", cfg.Store.Backend)
	} else {
		slog.Warn("no recipe store configured, full_records and facet filters are unavailable")
	}

	eng := engine.New(
		ranker.NewIngredientRanker(segs.Ingredients, synonyms, cfg.Ranking.CoverageGain, m),
		ranker.NewKeywordRanker(segs.Content, analyzer, m),
		store,
		cfg,
		m,
	)
	slog.Info("search engine ready", "enrichment", eng.HasStore())

	aggregator := analytics.NewAggregator()
	var publisher analytics.Publisher
	if cfg.Analytics.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		publisher = producer
	}
	collector := analytics.NewCollector(publisher, aggregator, cfg.Analytics.BufferSize)
	collector.Start(ctx)
	defer collector.Close()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if segs.Ingredients.NumDocs() == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d recipes", segs.Ingredients.NumDocs()),
		}
	})
	checker.Register("store", func(ctx context.Context) health.ComponentHealth {
		if store == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := store.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(eng, collector)
	statsHandler := analytics.NewHandler(aggregator)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/analytics/stats", statsHandler.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("search service listening", "addr", server.Addr, "default_mode", cfg.Ranking.DefaultMode)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Shutdown returns once in-flight handlers finish; the deferred closes
	// below must not run before that.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// loadSynonyms reads the synonym table. A missing file disables expansion.
func loadSynonyms(path string) (*synonym.Table, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Warn("synonym table not found, expansion disabled", "path", path)
		return nil, nil
	}
	table, err := synonym.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Info("synonym table loaded", "path", path, "ingredients", table.Len())
	return table, nil
}
