// Package indexer builds the two recipe indexes from a raw recipe dump: the
// pretokenized ingredient index, where each ingredient is one phrase term,
// and the content index over title, description, keywords and yields.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index/segment"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/logger"
)

// storeBatch is the number of records written to the store per Put.
const storeBatch = 500

type Stats struct {
	Recipes         int           `json:"recipes"`
	Skipped         int           `json:"skipped"`
	IngredientTerms int           `json:"ingredient_terms"`
	ContentTerms    int           `json:"content_terms"`
	IngredientPath  string        `json:"ingredient_path"`
	ContentPath     string        `json:"content_path"`
	Elapsed         time.Duration `json:"elapsed"`
}

type Builder struct {
	cfg      config.IndexConfig
	analyzer analysis.Analyzer
	loader   recipe.Loader
	logger   *slog.Logger
}

// NewBuilder returns a builder writing segments under cfg.DataDir. When
// loader is non-nil the records are also loaded into the recipe store.
func NewBuilder(cfg config.IndexConfig, analyzer analysis.Analyzer, loader recipe.Loader) *Builder {
	return &Builder{
		cfg:      cfg,
		analyzer: analyzer,
		loader:   loader,
		logger:   logger.WithComponent("index-builder"),
	}
}

type analyzed struct {
	ingredients []string
	content     []string
}

// Build analyzes recipes on a bounded worker pool, then adds them to both
// indexes in input order so internal ids are stable across rebuilds.
// Recipes without a canonical URL, or repeating one, are skipped.
func (b *Builder) Build(ctx context.Context, recipes []*recipe.Recipe) (*Stats, error) {
	start := time.Now()
	docs := make([]analyzed, len(recipes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.cfg.BuildWorkers, 1))
	for i, r := range recipes {
		if r == nil || r.ID() == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i] = analyzed{
				ingredients: analysis.PhraseTerms(r.Ingredients),
				content:     b.analyzer.Analyze(r.Content()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing recipes: %w", err)
	}

	ingredients := index.NewMemoryIndex()
	content := index.NewMemoryIndex()
	stats := &Stats{}
	kept := make([]*recipe.Recipe, 0, len(recipes))
	for i, r := range recipes {
		if r == nil || r.ID() == "" {
			stats.Skipped++
			continue
		}
		if _, err := ingredients.AddDocument(r.ID(), docs[i].ingredients); err != nil {
			b.logger.Warn("skipping recipe", "id", r.ID(), "error", err)
			stats.Skipped++
			continue
		}
		if _, err := content.AddDocument(r.ID(), docs[i].content); err != nil {
			return nil, fmt.Errorf("content index out of step with ingredient index: %w", err)
		}
		kept = append(kept, r)
	}
	stats.Recipes = len(kept)

	ingSnap := ingredients.Snapshot()
	contentSnap := content.Snapshot()
	stats.IngredientTerms = len(ingSnap.Terms)
	stats.ContentTerms = len(contentSnap.Terms)

	w := segment.NewWriter(b.cfg.DataDir)
	var err error
	if stats.IngredientPath, err = w.Write(b.cfg.IngredientSegment, ingSnap); err != nil {
		return nil, fmt.Errorf("writing ingredient segment: %w", err)
	}
	if stats.ContentPath, err = w.Write(b.cfg.ContentSegment, contentSnap); err != nil {
		return nil, fmt.Errorf("writing content segment: %w", err)
	}

	if b.loader != nil {
		for lo := 0; lo < len(kept); lo += storeBatch {
			hi := min(lo+storeBatch, len(kept))
			if err := b.loader.Put(ctx, kept[lo:hi]); err != nil {
				return nil, fmt.Errorf("loading recipes %d-%d into store: %w", lo, hi, err)
			}
		}
	}

	stats.Elapsed = time.Since(start)
	b.logger.Info("indexes built",
		"recipes", stats.Recipes,
		"skipped", stats.Skipped,
		"ingredient_terms", stats.IngredientTerms,
		"content_terms", stats.ContentTerms,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

// ReadRecipes decodes a JSON array of recipes one element at a time.
func ReadRecipes(r io.Reader) ([]*recipe.Recipe, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading recipe dump: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("recipe dump must be a JSON array")
	}
	var recipes []*recipe.Recipe
	for dec.More() {
		var rec recipe.Recipe
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decoding recipe %d: %w", len(recipes), err)
		}
		recipes = append(recipes, &rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading end of recipe dump: %w", err)
	}
	return recipes, nil
}
