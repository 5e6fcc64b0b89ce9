package segment

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
)

// Reader serves one segment file. The dictionary and document table are held
// in memory; postings are read on demand with ReadAt, so a Reader is safe for
// concurrent use.
type Reader struct {
	file        *os.File
	filePath    string
	header      Header
	dict        []DictEntry
	docs        DocTable
	internalIDs map[string]uint32
	avgDocLen   float64
}

// OpenReader validates and loads the segment at path.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment file: %w", err)
	}
	r, err := load(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func load(f *os.File, path string) (*Reader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat segment file: %w", err)
	}
	fileSize := info.Size()
	if fileSize < int64(HeaderSize+FooterSize) {
		return nil, fmt.Errorf("%w: %s: file too short (%d bytes)", apperrors.ErrIndexCorrupt, path, fileSize)
	}

	headerBytes := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		return nil, fmt.Errorf("reading segment header: %w", err)
	}
	header := decodeHeader(headerBytes)
	if header.Magic != MagicBytes {
		return nil, fmt.Errorf("%w: %s: bad magic bytes %x", apperrors.ErrIndexCorrupt, path, header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", apperrors.ErrIndexCorrupt, path, header.Version)
	}

	// Sizes come from the file itself; bound them before allocating.
	dataEnd := fileSize - int64(FooterSize)
	sections := []struct {
		name         string
		offset, size int64
	}{
		{"postings", header.PostOffset, header.PostSize},
		{"dictionary", header.DictOffset, header.DictSize},
		{"document table", header.DocsOffset, header.DocsSize},
	}
	for _, sec := range sections {
		if !within(sec.offset, sec.size, int64(HeaderSize), dataEnd) {
			return nil, fmt.Errorf("%w: %s: %s section [%d, +%d) outside file of %d bytes",
				apperrors.ErrIndexCorrupt, path, sec.name, sec.offset, sec.size, fileSize)
		}
	}
	if header.DocsOffset+header.DocsSize != dataEnd {
		return nil, fmt.Errorf("%w: %s: footer not at end of file", apperrors.ErrIndexCorrupt, path)
	}

	footer := make([]byte, FooterSize)
	if _, err := f.ReadAt(footer, header.DocsOffset+header.DocsSize); err != nil {
		return nil, fmt.Errorf("reading segment footer: %w", err)
	}

	dictBytes := make([]byte, header.DictSize)
	if _, err := f.ReadAt(dictBytes, header.DictOffset); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	if crc32.ChecksumIEEE(dictBytes) != binary.LittleEndian.Uint32(footer[0:4]) {
		return nil, fmt.Errorf("%w: %s: dictionary checksum mismatch", apperrors.ErrIndexCorrupt, path)
	}
	var dict []DictEntry
	if err := decMode.Unmarshal(dictBytes, &dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	for _, e := range dict {
		if e.PostLen < 0 || !within(e.PostOffset, int64(e.PostLen), 0, header.PostSize) {
			return nil, fmt.Errorf("%w: %s: postings of %q outside postings section", apperrors.ErrIndexCorrupt, path, e.Term)
		}
	}

	docsBytes := make([]byte, header.DocsSize)
	if _, err := f.ReadAt(docsBytes, header.DocsOffset); err != nil {
		return nil, fmt.Errorf("reading document table: %w", err)
	}
	if crc32.ChecksumIEEE(docsBytes) != binary.LittleEndian.Uint32(footer[4:8]) {
		return nil, fmt.Errorf("%w: %s: document table checksum mismatch", apperrors.ErrIndexCorrupt, path)
	}
	var docs DocTable
	if err := decMode.Unmarshal(docsBytes, &docs); err != nil {
		return nil, fmt.Errorf("parsing document table: %w", err)
	}
	if len(docs.ExternalIDs) != int(header.DocCount) || len(docs.Lengths) != int(header.DocCount) {
		return nil, fmt.Errorf("%w: %s: document table size mismatch", apperrors.ErrIndexCorrupt, path)
	}

	internalIDs := make(map[string]uint32, len(docs.ExternalIDs))
	for i, id := range docs.ExternalIDs {
		internalIDs[id] = uint32(i)
	}
	var avg float64
	if len(docs.ExternalIDs) > 0 {
		avg = float64(docs.TotalTerms) / float64(len(docs.ExternalIDs))
	}
	return &Reader{
		file:        f,
		filePath:    path,
		header:      header,
		dict:        dict,
		docs:        docs,
		internalIDs: internalIDs,
		avgDocLen:   avg,
	}, nil
}

// within reports whether [offset, offset+size) lies inside [lo, hi).
func within(offset, size, lo, hi int64) bool {
	return offset >= lo && size >= 0 && offset <= hi && size <= hi-offset
}

func (r *Reader) lookup(term string) (DictEntry, bool) {
	idx := sort.Search(len(r.dict), func(i int) bool {
		return r.dict[i].Term >= term
	})
	if idx >= len(r.dict) || r.dict[idx].Term != term {
		return DictEntry{}, false
	}
	return r.dict[idx], true
}

func (r *Reader) Postings(term string) (index.PostingList, error) {
	entry, ok := r.lookup(term)
	if !ok {
		return nil, nil
	}
	buf := make([]byte, entry.PostLen)
	if _, err := r.file.ReadAt(buf, r.header.PostOffset+entry.PostOffset); err != nil {
		return nil, fmt.Errorf("reading postings for %q: %w", term, err)
	}
	var postings index.PostingList
	if err := decMode.Unmarshal(buf, &postings); err != nil {
		return nil, fmt.Errorf("parsing postings for %q: %w", term, err)
	}
	return postings, nil
}

func (r *Reader) TermStats(term string) (index.TermStats, error) {
	entry, ok := r.lookup(term)
	if !ok {
		return index.TermStats{}, nil
	}
	return index.TermStats{DocFreq: int(entry.DocFreq), CorpusFreq: entry.CorpusFreq}, nil
}

func (r *Reader) NumDocs() int { return len(r.docs.ExternalIDs) }

func (r *Reader) DocLength(doc uint32) int {
	if int(doc) >= len(r.docs.Lengths) {
		return 0
	}
	return int(r.docs.Lengths[doc])
}

func (r *Reader) AvgDocLength() float64 { return r.avgDocLen }

func (r *Reader) TotalTerms() int64 { return r.docs.TotalTerms }

func (r *Reader) ExternalID(doc uint32) string {
	if int(doc) >= len(r.docs.ExternalIDs) {
		return ""
	}
	return r.docs.ExternalIDs[doc]
}

func (r *Reader) InternalID(external string) (uint32, bool) {
	id, ok := r.internalIDs[external]
	return id, ok
}

// Terms returns the number of distinct terms in the segment.
func (r *Reader) Terms() int {
	return len(r.dict)
}

// Path returns the file the segment was loaded from.
func (r *Reader) Path() string {
	return r.filePath
}

func (r *Reader) Close() error {
	return r.file.Close()
}

var _ index.Reader = (*Reader)(nil)
