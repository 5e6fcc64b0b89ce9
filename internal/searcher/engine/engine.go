// Package engine runs one recipe search end to end: both rankers, fusion,
// then optional enrichment and facet filtering.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/facet"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/fusion"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/tracing"
)

// IngredientSearcher is satisfied by *ranker.IngredientRanker.
type IngredientSearcher interface {
	Search(ingredientsText string, k, nsyms int) ([]ranker.ScoredDoc, error)
}

// KeywordSearcher is satisfied by *ranker.KeywordRanker.
type KeywordSearcher interface {
	Search(queryText string, k int) ([]ranker.ScoredDoc, error)
}

// Request is one search call.
type Request struct {
	Ingredients string
	Keywords    string
	// K is the number of hits wanted; zero selects the configured default.
	K int
	// Synonyms per ingredient; nil selects the configured default.
	Synonyms *int
	// Mode is "simple" or "rrf"; empty selects the configured default.
	Mode        string
	Filters     facet.Filters
	FullRecords bool
}

type Response struct {
	Mode    fusion.Mode `json:"mode"`
	Results []facet.Hit `json:"results"`
}

// Engine is immutable after New and safe for concurrent use.
type Engine struct {
	ingredient IngredientSearcher
	keyword    KeywordSearcher
	store      recipe.Store
	ranking    config.RankingConfig
	limits     config.SearchConfig
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New wires an engine. store and m may be nil; without a store, requests
// that need records fail with ErrMissingCollaborator.
func New(ing IngredientSearcher, kw KeywordSearcher, store recipe.Store, cfg *config.Config, m *metrics.Metrics) *Engine {
	return &Engine{
		ingredient: ing,
		keyword:    kw,
		store:      store,
		ranking:    cfg.Ranking,
		limits:     cfg.Search,
		metrics:    m,
		logger:     logger.WithComponent("search-engine"),
	}
}

// HasStore reports whether enrichment is available.
func (e *Engine) HasStore() bool { return e.store != nil }

func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	modeName := req.Mode
	if strings.TrimSpace(modeName) == "" {
		modeName = e.ranking.DefaultMode
	}
	mode, err := fusion.ParseMode(modeName)
	if err != nil {
		e.observe("invalid", "invalid", start)
		return nil, err
	}

	resp, err := e.search(ctx, req, mode)
	outcome := "ok"
	if err != nil {
		outcome = outcomeOf(err)
	}
	e.observe(string(mode), outcome, start)
	if err == nil && e.metrics != nil {
		e.metrics.SearchResultsCount.Observe(float64(len(resp.Results)))
	}
	return resp, err
}

func (e *Engine) search(ctx context.Context, req Request, mode fusion.Mode) (*Response, error) {
	strategy, err := fusion.For(mode)
	if err != nil {
		return nil, err
	}
	hasIngredients := !parser.IsBlank(req.Ingredients)
	hasKeywords := strings.TrimSpace(req.Keywords) != ""
	if !hasIngredients && !hasKeywords {
		return nil, fmt.Errorf("%w: ingredients and keywords are both blank", apperrors.ErrEmptyQuery)
	}

	k, err := e.resultSize(req.K)
	if err != nil {
		return nil, err
	}
	nsyms := e.ranking.Synonyms
	if req.Synonyms != nil {
		nsyms = *req.Synonyms
	}
	if nsyms < 0 {
		return nil, fmt.Errorf("%w: synonym count must not be negative", apperrors.ErrInvalidInput)
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}
	enrich := req.FullRecords || req.Filters.Active()
	if enrich && e.store == nil {
		return nil, fmt.Errorf("%w: recipe store required for full records or facet filters", apperrors.ErrMissingCollaborator)
	}

	ctx, root := tracing.StartSpan(ctx, "search", logger.RequestID(ctx))
	defer func() {
		root.End()
		root.Log(ctx, logger.FromContext(ctx))
	}()

	fetch := k
	if hasIngredients && hasKeywords {
		fetch = k * max(e.ranking.OverfetchFactor, 1)
	}

	var ingDocs, kwDocs []ranker.ScoredDoc
	var g errgroup.Group
	if hasIngredients {
		g.Go(func() error {
			_, span := tracing.StartChildSpan(ctx, "ingredient_rank")
			docs, err := e.ingredient.Search(req.Ingredients, fetch, nsyms)
			span.SetAttr("hits", len(docs))
			e.stage("ingredient_rank", span.End())
			if err != nil {
				return fmt.Errorf("ingredient ranking: %w", err)
			}
			ingDocs = docs
			return nil
		})
	}
	if hasKeywords {
		g.Go(func() error {
			_, span := tracing.StartChildSpan(ctx, "keyword_rank")
			docs, err := e.keyword.Search(req.Keywords, fetch)
			span.SetAttr("hits", len(docs))
			e.stage("keyword_rank", span.End())
			if err != nil {
				return fmt.Errorf("keyword ranking: %w", err)
			}
			kwDocs = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	_, span := tracing.StartChildSpan(ctx, "fusion")
	var fused []ranker.ScoredDoc
	switch {
	case !hasKeywords:
		fused = fusion.Single(ingDocs, k)
	case !hasIngredients:
		fused = fusion.Single(kwDocs, k)
	default:
		fused = fusion.Fuse(strategy, ingDocs, kwDocs, k)
	}
	e.stage("fusion", span.End())

	resp := &Response{Mode: mode}
	if !enrich {
		resp.Results = make([]facet.Hit, len(fused))
		for i, d := range fused {
			resp.Results[i] = facet.Hit{DocID: d.DocID, Score: d.Score}
		}
		return resp, nil
	}

	_, span = tracing.StartChildSpan(ctx, "enrich")
	hits, err := facet.Enrich(ctx, e.store, fused)
	e.stage("enrich", span.End())
	if err != nil {
		return nil, err
	}
	if req.Filters.Active() {
		_, span = tracing.StartChildSpan(ctx, "facet")
		hits = facet.Apply(hits, req.Filters, e.metrics)
		span.SetAttr("kept", len(hits))
		e.stage("facet", span.End())
	}
	if !req.FullRecords {
		for i := range hits {
			hits[i].Recipe = nil
			hits[i].Missing = false
		}
	}
	resp.Results = hits
	return resp, nil
}

// resultSize applies the configured default and ceiling to k.
func (e *Engine) resultSize(k int) (int, error) {
	switch {
	case k < 0:
		return 0, fmt.Errorf("%w: k must not be negative", apperrors.ErrInvalidInput)
	case k == 0:
		k = e.limits.DefaultLimit
	}
	if e.limits.MaxResults > 0 && k > e.limits.MaxResults {
		k = e.limits.MaxResults
	}
	return k, nil
}

func (e *Engine) stage(name string, d time.Duration) {
	if e.metrics != nil {
		e.metrics.SearchStageLatency.WithLabelValues(name).Observe(d.Seconds())
	}
}

func (e *Engine) observe(mode, outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchRequestsTotal.WithLabelValues(mode, outcome).Inc()
	e.metrics.SearchLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func outcomeOf(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrEmptyQuery):
		return "empty"
	case apperrors.Is(err, apperrors.ErrInvalidInput), apperrors.Is(err, apperrors.ErrUnknownRankingMode):
		return "invalid"
	case apperrors.Is(err, apperrors.ErrMissingCollaborator):
		return "unavailable"
	default:
		return "error"
	}
}
