// Package facet attaches recipe records to ranked hits and narrows them by
// numeric ranges on cook time, calories and servings.
package facet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/metrics"
)

// Hit is a ranked document, optionally joined to its record.
type Hit struct {
	DocID   string         `json:"doc_id"`
	Score   float64        `json:"score"`
	Recipe  *recipe.Recipe `json:"record,omitempty"`
	Missing bool           `json:"missing,omitempty"`
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UnmarshalJSON accepts [min, max] as well as {"min": .., "max": ..}.
func (r *Range) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("%w: range needs exactly two bounds", apperrors.ErrInvalidInput)
		}
		r.Min, r.Max = pair[0], pair[1]
		return nil
	}
	type plain Range
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: range must be [min, max] or {min, max}", apperrors.ErrInvalidInput)
	}
	*r = Range(p)
	return nil
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Filters holds the optional ranges. A nil range does not filter.
type Filters struct {
	CookTime *Range
	Calories *Range
	Servings *Range
}

// Active reports whether any range is set.
func (f Filters) Active() bool {
	return f.CookTime != nil || f.Calories != nil || f.Servings != nil
}

// Validate rejects inverted ranges.
func (f Filters) Validate() error {
	for name, r := range map[string]*Range{"cook time": f.CookTime, "calories": f.Calories, "servings": f.Servings} {
		if r != nil && r.Min > r.Max {
			return fmt.Errorf("%w: %s range [%v, %v] is inverted", apperrors.ErrInvalidInput, name, r.Min, r.Max)
		}
	}
	return nil
}

// Enrich fetches the records of docs in one batch and attaches them in
// ranking order. Documents without a record are kept and marked missing.
func Enrich(ctx context.Context, store recipe.Store, docs []ranker.ScoredDoc) ([]Hit, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: recipe store not configured", apperrors.ErrMissingCollaborator)
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.DocID
	}
	records, err := store.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching recipe records: %w", err)
	}
	hits := make([]Hit, len(docs))
	for i, d := range docs {
		rec, ok := records[d.DocID]
		hits[i] = Hit{DocID: d.DocID, Score: d.Score, Recipe: rec, Missing: !ok}
	}
	return hits, nil
}

type stage struct {
	name  string
	rng   *Range
	field func(*recipe.Recipe) (float64, bool)
}

// Apply narrows hits by cook time, then calories, then servings. Each stage
// sees only what the previous one kept. A hit whose field is missing or
// unparseable fails any stage that is set. m may be nil.
func Apply(hits []Hit, f Filters, m *metrics.Metrics) []Hit {
	stages := []stage{
		{"cook_time", f.CookTime, (*recipe.Recipe).TotalMinutes},
		{"calories", f.Calories, (*recipe.Recipe).Calories},
		{"servings", f.Servings, (*recipe.Recipe).Servings},
	}
	for _, s := range stages {
		if s.rng == nil {
			continue
		}
		kept := hits[:0:0]
		for _, h := range hits {
			if h.Recipe == nil {
				continue
			}
			if v, ok := s.field(h.Recipe); ok && s.rng.Contains(v) {
				kept = append(kept, h)
			}
		}
		if m != nil && len(hits) > len(kept) {
			m.FacetDroppedTotal.WithLabelValues(s.name).Add(float64(len(hits) - len(kept)))
		}
		hits = kept
	}
	return hits
}
