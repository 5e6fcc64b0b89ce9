// Package ranker scores recipes for the two halves of a query: ingredient
// lists with coverage-weighted BM25 and keyword text with Dirichlet-smoothed
// query likelihood.
package ranker

import (
	"math"
	"sort"
)

// BM25 parameters for the ingredient index.
const (
	k1 = 1.5
	b  = 0.75
)

// All passed as k asks a ranker for every document with signal.
const All = 0

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// better is the total order used for every ranked list: higher score first,
// then ascending external id.
func better(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}

func sortScored(docs []ScoredDoc) {
	sort.Slice(docs, func(i, j int) bool { return better(docs[i], docs[j]) })
}

func computeIDF(totalDocs int, docFreq int) float64 {
	n, df := float64(totalDocs), float64(docFreq)
	return math.Log((n-df+0.5)/(df+0.5) + 1)
}

func computeTFNorm(termFreq float64, docLength float64, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}
