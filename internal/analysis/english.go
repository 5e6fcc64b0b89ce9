package analysis

import (
	"fmt"

	blevean "github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/registry"
)

// EnglishAnalyzer runs bleve's "en" analyzer chain: unicode tokenization,
// possessive removal, lower-casing, English stop words and Snowball stemming.
type EnglishAnalyzer struct {
	analyzer blevean.Analyzer
}

func NewEnglish() (*EnglishAnalyzer, error) {
	a, err := registry.NewCache().AnalyzerNamed(en.AnalyzerName)
	if err != nil {
		return nil, fmt.Errorf("loading english analyzer: %w", err)
	}
	return &EnglishAnalyzer{analyzer: a}, nil
}

func (e *EnglishAnalyzer) Analyze(text string) []string {
	if text == "" {
		return nil
	}
	stream := e.analyzer.Analyze([]byte(text))
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		if len(tok.Term) == 0 {
			continue
		}
		terms = append(terms, string(tok.Term))
	}
	return terms
}
