package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/logger"
)

func main() {
	flags := pflag.NewFlagSet("recipe-indexer", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to YAML config file")
	input := flags.StringP("input", "i", "files/recipes.json", "recipe dump (JSON array)")
	loadStore := flags.Bool("load-store", true, "also load the records into the configured recipe store")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *input, *loadStore); err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, input string, loadStore bool) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	recipes, err := indexer.ReadRecipes(f)
	if err != nil {
		return err
	}
	slog.Info("recipe dump read", "path", input, "recipes", len(recipes))

	analyzer, err := analysis.New(cfg.Index.Analyzer)
	if err != nil {
		return err
	}

	var loader recipe.Loader
	if loadStore {
		store, err := recipe.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("opening recipe store: %w", err)
		}
		if store != nil {
			defer store.Close()
			l, ok := store.(recipe.Loader)
			if !ok {
				return fmt.Errorf("store backend %q cannot be loaded", cfg.Store.Backend)
			}
			loader = l
		}
	}

	stats, err := indexer.NewBuilder(cfg.Index, analyzer, loader).Build(ctx, recipes)
	if err != nil {
		return err
	}
	slog.Info("index build complete",
		"ingredient_segment", stats.IngredientPath,
		"content_segment", stats.ContentPath,
		"store_loaded", loader != nil,
	)
	return nil
}
