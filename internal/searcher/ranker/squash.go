package ranker

import "math"

// Squash maps a raw score into (0, 1) with the logistic function.
func Squash(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SquashAll returns a copy of docs with every score squashed, best first.
// Large scores can saturate to the same value, so the copy is re-sorted to
// restore the id tie-break.
func SquashAll(docs []ScoredDoc) []ScoredDoc {
	out := make([]ScoredDoc, len(docs))
	for i, d := range docs {
		out[i] = ScoredDoc{DocID: d.DocID, Score: Squash(d.Score)}
	}
	sortScored(out)
	return out
}
