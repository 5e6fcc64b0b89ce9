package ranker

import (
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/synonym"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/metrics"
)

// WeightedTerm is one column of an expanded ingredient query.
type WeightedTerm struct {
	Term   string
	Weight float64
}

// IngredientRanker scores the pretokenized ingredient index, where every
// ingredient of a recipe is a single phrase term.
type IngredientRanker struct {
	index        index.Reader
	synonyms     *synonym.Table
	coverageGain float64
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewIngredientRanker builds a ranker over idx. synonyms and m may be nil.
func NewIngredientRanker(idx index.Reader, synonyms *synonym.Table, coverageGain float64, m *metrics.Metrics) *IngredientRanker {
	return &IngredientRanker{
		index:        idx,
		synonyms:     synonyms,
		coverageGain: coverageGain,
		metrics:      m,
		logger:       slog.Default().With("component", "ingredient-ranker"),
	}
}

// Search ranks recipes against a comma-separated ingredient list, expanding
// each ingredient with up to nsyms synonyms. At most k documents are
// returned (all with positive score when k <= 0).
func (r *IngredientRanker) Search(ingredientsText string, k, nsyms int) ([]ScoredDoc, error) {
	plan := parser.ParseIngredients(ingredientsText)
	if len(plan.Ingredients) == 0 {
		return []ScoredDoc{}, nil
	}
	return r.score(r.Expand(plan.Ingredients, nsyms), k)
}

// Expand builds one weight group per ingredient: the ingredient itself at
// 1.0 and its synonyms at their similarity, normalized to sum to 1. A term
// reached from several groups carries the sum of its weights.
func (r *IngredientRanker) Expand(ingredients []string, nsyms int) []WeightedTerm {
	var terms []WeightedTerm
	pos := make(map[string]int)
	for _, ing := range ingredients {
		group := append([]synonym.Candidate{{Term: ing, Similarity: 1}}, r.synonyms.Lookup(ing, nsyms)...)
		var total float64
		for _, c := range group {
			total += c.Similarity
		}
		for _, c := range group {
			term := analysis.PhraseTerm(c.Term)
			if term == "" {
				continue
			}
			var w float64
			if total > 0 {
				w = c.Similarity / total
			}
			if i, ok := pos[term]; ok {
				terms[i].Weight += w
				continue
			}
			pos[term] = len(terms)
			terms = append(terms, WeightedTerm{Term: term, Weight: w})
		}
	}
	return terms
}

func (r *IngredientRanker) score(terms []WeightedTerm, k int) ([]ScoredDoc, error) {
	numDocs := r.index.NumDocs()
	avgdl := r.index.AvgDocLength()

	var weightSum float64
	for _, t := range terms {
		weightSum += t.Weight
	}

	raw := make(map[uint32]float64)
	matched := make(map[uint32]int)
	for _, t := range terms {
		postings, err := r.index.Postings(t.Term)
		if err != nil {
			return nil, fmt.Errorf("ingredient postings for %q: %w", t.Term, err)
		}
		if len(postings) == 0 {
			continue
		}
		idf := computeIDF(numDocs, len(postings)) * t.Weight
		for _, p := range postings {
			if p.Frequency <= 0 {
				continue
			}
			tf := float64(p.Frequency)
			raw[p.DocID] += idf * computeTFNorm(tf, float64(r.index.DocLength(p.DocID)), avgdl)
			matched[p.DocID]++
		}
	}

	docs := make([]ScoredDoc, 0, len(raw))
	for doc, s := range raw {
		var coverage float64
		if weightSum != 0 {
			coverage = float64(matched[doc]) / weightSum
		}
		adjusted := s * (1 + r.coverageGain*coverage)
		if adjusted <= 0 {
			continue
		}
		docs = append(docs, ScoredDoc{DocID: r.index.ExternalID(doc), Score: adjusted})
	}
	if r.metrics != nil {
		r.metrics.RankerCandidates.WithLabelValues("ingredient").Observe(float64(len(raw)))
	}
	r.logger.Debug("ingredient ranking", "terms", len(terms), "candidates", len(raw), "positive", len(docs))
	return SelectTop(docs, k), nil
}
