package indexer

import (
	"fmt"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index/segment"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/config"
)

// Segments holds the two open index readers a searcher serves from.
type Segments struct {
	Ingredients *segment.Reader
	Content     *segment.Reader
}

// OpenSegments opens both segment files named in cfg.
func OpenSegments(cfg config.IndexConfig) (*Segments, error) {
	ing, err := segment.OpenReader(filepath.Join(cfg.DataDir, cfg.IngredientSegment))
	if err != nil {
		return nil, fmt.Errorf("opening ingredient index: %w", err)
	}
	content, err := segment.OpenReader(filepath.Join(cfg.DataDir, cfg.ContentSegment))
	if err != nil {
		ing.Close()
		return nil, fmt.Errorf("opening content index: %w", err)
	}
	return &Segments{Ingredients: ing, Content: content}, nil
}

func (s *Segments) Close() error {
	err := s.Ingredients.Close()
	if cerr := s.Content.Close(); err == nil {
		err = cerr
	}
	return err
}
