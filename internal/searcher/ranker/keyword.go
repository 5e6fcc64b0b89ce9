package ranker

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/metrics"
)

// KeywordRanker scores the content index with a query-likelihood model
// under Dirichlet smoothing, using the average document length as the prior.
type KeywordRanker struct {
	index    index.Reader
	analyzer analysis.Analyzer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewKeywordRanker builds a ranker over idx. analyzer must be the one the
// content index was built with. m may be nil.
func NewKeywordRanker(idx index.Reader, analyzer analysis.Analyzer, m *metrics.Metrics) *KeywordRanker {
	return &KeywordRanker{
		index:    idx,
		analyzer: analyzer,
		metrics:  m,
		logger:   slog.Default().With("component", "keyword-ranker"),
	}
}

type queryTerm struct {
	cf  float64
	tfs map[uint32]int32
}

// Search ranks the documents matching at least one query term and returns
// the k best (all of them when k <= 0). Repeated query terms count once per
// occurrence; terms absent from the corpus are ignored.
func (r *KeywordRanker) Search(queryText string, k int) ([]ScoredDoc, error) {
	tokens := r.analyzer.Analyze(queryText)
	totalTerms := float64(r.index.TotalTerms())
	if len(tokens) == 0 || totalTerms == 0 {
		return []ScoredDoc{}, nil
	}
	mu := r.index.AvgDocLength()

	known := make(map[string]*queryTerm)
	var query []*queryTerm
	candidates := make(map[uint32]struct{})
	for _, tok := range tokens {
		if qt, ok := known[tok]; ok {
			if qt != nil {
				query = append(query, qt)
			}
			continue
		}
		stats, err := r.index.TermStats(tok)
		if err != nil {
			return nil, fmt.Errorf("keyword stats for %q: %w", tok, err)
		}
		if stats.CorpusFreq == 0 {
			known[tok] = nil
			continue
		}
		postings, err := r.index.Postings(tok)
		if err != nil {
			return nil, fmt.Errorf("keyword postings for %q: %w", tok, err)
		}
		qt := &queryTerm{cf: float64(stats.CorpusFreq), tfs: make(map[uint32]int32, len(postings))}
		for _, p := range postings {
			qt.tfs[p.DocID] = p.Frequency
			candidates[p.DocID] = struct{}{}
		}
		known[tok] = qt
		query = append(query, qt)
	}

	top := NewTopK(k)
	for doc := range candidates {
		docLen := float64(r.index.DocLength(doc))
		var score float64
		for _, qt := range query {
			tf := float64(qt.tfs[doc])
			score += math.Log((tf + mu*qt.cf/totalTerms) / (docLen + mu))
		}
		top.Offer(ScoredDoc{DocID: r.index.ExternalID(doc), Score: score})
	}
	if r.metrics != nil {
		r.metrics.RankerCandidates.WithLabelValues("keyword").Observe(float64(len(candidates)))
	}
	r.logger.Debug("keyword ranking", "tokens", len(tokens), "terms", len(query), "candidates", len(candidates))
	return top.Sorted(), nil
}
