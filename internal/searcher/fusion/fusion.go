// Package fusion combines the ingredient and keyword rankings into one
// ordering. Both signals are squashed into (0, 1) first so their native
// scales do not matter.
package fusion

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
)

type Mode string

const (
	ModeSimple Mode = "simple"
	ModeRRF    Mode = "rrf"
)

// ParseMode accepts exactly the supported mode names, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSimple, ModeRRF:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownRankingMode, s)
	}
}

// Side is one ranker's view of a document. Present is false when the
// ranker did not return the document; Score and Rank are then meaningless.
type Side struct {
	Score   float64
	Rank    int
	Present bool
}

// Strategy scores a document from its two sides. An absent side must
// contribute nothing.
type Strategy interface {
	Mode() Mode
	Score(ingredient, keyword Side) float64
}

// For returns the strategy implementing m.
func For(m Mode) (Strategy, error) {
	switch m {
	case ModeSimple:
		return Simple{}, nil
	case ModeRRF:
		return RRF{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownRankingMode, string(m))
	}
}

// Simple adds the squashed scores.
type Simple struct{}

func (Simple) Mode() Mode { return ModeSimple }

func (Simple) Score(ingredient, keyword Side) float64 {
	var s float64
	if ingredient.Present {
		s += ingredient.Score
	}
	if keyword.Present {
		s += keyword.Score
	}
	return s
}

// RRF divides each squashed score by its 1-based rank on that side.
type RRF struct{}

func (RRF) Mode() Mode { return ModeRRF }

func (RRF) Score(ingredient, keyword Side) float64 {
	var s float64
	if ingredient.Present {
		s += ingredient.Score / float64(ingredient.Rank)
	}
	if keyword.Present {
		s += keyword.Score / float64(keyword.Rank)
	}
	return s
}

// Fuse squashes both rankings, scores the union of their documents with s
// and returns the k best, best first. Ties go to the smaller id.
func Fuse(s Strategy, ingredient, keyword []ranker.ScoredDoc, k int) []ranker.ScoredDoc {
	ingSides := sides(ingredient)
	kwSides := sides(keyword)

	top := ranker.NewTopK(k)
	seen := make(map[string]struct{}, len(ingredient)+len(keyword))
	for _, list := range [][]ranker.ScoredDoc{ingredient, keyword} {
		for _, d := range list {
			if _, ok := seen[d.DocID]; ok {
				continue
			}
			seen[d.DocID] = struct{}{}
			top.Offer(ranker.ScoredDoc{
				DocID: d.DocID,
				Score: s.Score(ingSides[d.DocID], kwSides[d.DocID]),
			})
		}
	}
	return top.Sorted()
}

// Single squashes one ranker's output for a query with only that half,
// keeping at most k documents.
func Single(docs []ranker.ScoredDoc, k int) []ranker.ScoredDoc {
	out := ranker.SquashAll(docs)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func sides(docs []ranker.ScoredDoc) map[string]Side {
	m := make(map[string]Side, len(docs))
	for i, d := range docs {
		if _, ok := m[d.DocID]; ok {
			continue
		}
		m[d.DocID] = Side{Score: ranker.Squash(d.Score), Rank: i + 1, Present: true}
	}
	return m
}
