// Package index defines the read-only inverted-index contract the rankers
// score against, plus an in-memory implementation used to build segments and
// to serve small corpora.
package index

// Posting is one (document, term frequency) pair in a term's postings list.
// Document IDs are dense internal IDs assigned in insertion order.
type Posting struct {
	_         struct{} `cbor:",toarray"`
	DocID     uint32
	Frequency int32
}

// PostingList holds postings ordered by ascending DocID.
type PostingList []Posting

// TermEntry is one dictionary row of a frozen index.
type TermEntry struct {
	Term       string
	Postings   PostingList
	CorpusFreq int64
}

// TermStats describes a term's spread across the corpus. Both are zero for a
// term the index has never seen.
type TermStats struct {
	DocFreq    int
	CorpusFreq int64
}

// Reader is read-only access to one inverted index. Implementations must be
// safe for concurrent use once constructed.
type Reader interface {
	// Postings returns the term's postings, or nil if the term is absent.
	Postings(term string) (PostingList, error)
	TermStats(term string) (TermStats, error)
	NumDocs() int
	DocLength(doc uint32) int
	AvgDocLength() float64
	// TotalTerms is the number of tokens in the whole corpus.
	TotalTerms() int64
	ExternalID(doc uint32) string
	InternalID(external string) (uint32, bool)
}

// Snapshot is the frozen content of an index, in the shape segment files
// store it.
type Snapshot struct {
	Terms       []TermEntry
	ExternalIDs []string
	DocLengths  []int32
	TotalTerms  int64
}

func avgDocLength(totalTerms int64, numDocs int) float64 {
	if numDocs == 0 {
		return 0
	}
	return float64(totalTerms) / float64(numDocs)
}
