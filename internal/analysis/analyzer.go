// Package analysis turns recipe text into index terms. The same Analyzer
// must be used when building the content index and when tokenizing keyword
// queries, otherwise query terms will not line up with indexed terms.
package analysis

import (
	"fmt"
	"strings"
)

const (
	English = "english"
	Simple  = "simple"
)

// Analyzer converts free text into a sequence of normalized terms.
// Duplicate terms are kept; callers that need frequencies count them.
type Analyzer interface {
	Analyze(text string) []string
}

// New returns the analyzer registered under name.
func New(name string) (Analyzer, error) {
	switch name {
	case English, "":
		return NewEnglish()
	case Simple:
		return NewSimple(), nil
	default:
		return nil, fmt.Errorf("unknown analyzer %q", name)
	}
}

// PhraseTerm normalizes a multi-word ingredient into the single term it is
// indexed under: lower-cased, inner whitespace collapsed, words joined with
// underscores. "  Chicken   Breast " becomes "chicken_breast".
func PhraseTerm(ingredient string) string {
	return strings.Join(strings.Fields(strings.ToLower(ingredient)), "_")
}

// PhraseTerms applies PhraseTerm to each ingredient, skipping blanks.
func PhraseTerms(ingredients []string) []string {
	terms := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if t := PhraseTerm(ing); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
