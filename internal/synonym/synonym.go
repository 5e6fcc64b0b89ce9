// Package synonym loads the ingredient synonym table used for query
// expansion. The table is read once at startup and never mutated.
package synonym

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Candidate is one expansion term with its raw similarity to the
// ingredient it was found for.
type Candidate struct {
	Term       string
	Similarity float64
}

// UnmarshalJSON accepts both [term, weighted, similarity] triples, where the
// raw similarity is the last element, and [term, similarity] pairs.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("synonym entry: %w", err)
	}
	if len(raw) != 2 && len(raw) != 3 {
		return fmt.Errorf("synonym entry: expected 2 or 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &c.Term); err != nil {
		return fmt.Errorf("synonym entry term: %w", err)
	}
	if err := json.Unmarshal(raw[len(raw)-1], &c.Similarity); err != nil {
		return fmt.Errorf("synonym entry similarity for %q: %w", c.Term, err)
	}
	return nil
}

// Table maps a normalized ingredient to its synonyms, most similar first.
// A nil *Table is valid and has no entries.
type Table struct {
	entries map[string][]Candidate
}

// New builds a table from an in-memory map. Keys are normalized the same
// way lookups are.
func New(entries map[string][]Candidate) *Table {
	t := &Table{entries: make(map[string][]Candidate, len(entries))}
	for ing, cands := range entries {
		key := normalize(ing)
		if key == "" {
			continue
		}
		t.entries[key] = append([]Candidate(nil), cands...)
	}
	return t
}

// Load reads a synonym file from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening synonym file: %w", err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a synonym table in the {"ingredient": [[term, ...], ...]}
// format.
func Parse(r io.Reader) (*Table, error) {
	var raw map[string][]Candidate
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding synonyms: %w", err)
	}
	return New(raw), nil
}

// Lookup returns at most n synonyms for ingredient in stored order. It
// returns nil when n <= 0 or the ingredient is unknown.
func (t *Table) Lookup(ingredient string, n int) []Candidate {
	if t == nil || n <= 0 {
		return nil
	}
	cands := t.entries[normalize(ingredient)]
	if len(cands) > n {
		cands = cands[:n]
	}
	return cands
}

// Len returns the number of ingredients with synonyms.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
