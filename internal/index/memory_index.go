package index

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is an append-only inverted index held in memory. Documents get
// consecutive internal IDs, so every postings list stays sorted by DocID
// without re-sorting.
type MemoryIndex struct {
	mu          sync.RWMutex
	postings    map[string]PostingList
	corpusFreq  map[string]int64
	externalIDs []string
	internalIDs map[string]uint32
	docLengths  []int32
	totalTerms  int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		postings:    make(map[string]PostingList),
		corpusFreq:  make(map[string]int64),
		internalIDs: make(map[string]uint32),
	}
}

// AddDocument indexes an already-analyzed document and returns its internal
// ID. The document length is the number of terms, duplicates included.
func (m *MemoryIndex) AddDocument(externalID string, terms []string) (uint32, error) {
	freqs := make(map[string]int32, len(terms))
	order := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		if _, seen := freqs[term]; !seen {
			order = append(order, term)
		}
		freqs[term]++
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.internalIDs[externalID]; exists {
		return 0, fmt.Errorf("document %q already indexed", externalID)
	}
	docID := uint32(len(m.externalIDs))
	m.externalIDs = append(m.externalIDs, externalID)
	m.internalIDs[externalID] = docID

	var length int32
	for _, term := range order {
		tf := freqs[term]
		m.postings[term] = append(m.postings[term], Posting{DocID: docID, Frequency: tf})
		m.corpusFreq[term] += int64(tf)
		length += tf
	}
	m.docLengths = append(m.docLengths, length)
	m.totalTerms += int64(length)
	return docID, nil
}

func (m *MemoryIndex) Postings(term string) (PostingList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.postings[term], nil
}

func (m *MemoryIndex) TermStats(term string) (TermStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return TermStats{
		DocFreq:    len(m.postings[term]),
		CorpusFreq: m.corpusFreq[term],
	}, nil
}

func (m *MemoryIndex) NumDocs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.externalIDs)
}

func (m *MemoryIndex) DocLength(doc uint32) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(doc) >= len(m.docLengths) {
		return 0
	}
	return int(m.docLengths[doc])
}

func (m *MemoryIndex) AvgDocLength() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return avgDocLength(m.totalTerms, len(m.externalIDs))
}

func (m *MemoryIndex) TotalTerms() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalTerms
}

func (m *MemoryIndex) ExternalID(doc uint32) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(doc) >= len(m.externalIDs) {
		return ""
	}
	return m.externalIDs[doc]
}

func (m *MemoryIndex) InternalID(external string) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.internalIDs[external]
	return id, ok
}

// Snapshot copies the index into its frozen form with terms sorted
// lexicographically.
func (m *MemoryIndex) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]TermEntry, 0, len(m.postings))
	for term, postings := range m.postings {
		entries = append(entries, TermEntry{
			Term:       term,
			Postings:   append(PostingList(nil), postings...),
			CorpusFreq: m.corpusFreq[term],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return Snapshot{
		Terms:       entries,
		ExternalIDs: append([]string(nil), m.externalIDs...),
		DocLengths:  append([]int32(nil), m.docLengths...),
		TotalTerms:  m.totalTerms,
	}
}

var _ Reader = (*MemoryIndex)(nil)
