// Package segment persists a frozen inverted index to a single immutable file
// and serves it back through index.Reader.
//
// Layout: a 64-byte header, the CBOR postings of every term back to back, the
// CBOR dictionary (sorted by term), the CBOR document table, then an 8-byte
// footer holding CRC32s of the dictionary and the document table.
//
// Section bounds are checked against the file size on open. Postings blocks
// carry no checksum of their own; a damaged block surfaces as a CBOR decode
// error from Postings.
package segment

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index"
)

// MagicBytes identifies a valid .rsx segment file.
const (
	MagicBytes    uint32 = 0x52535058
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 8
)

// Header is the fixed-size header written at the start of every segment.
type Header struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	DocCount   uint32
	DictOffset int64
	DictSize   int64
	PostOffset int64
	PostSize   int64
	DocsOffset int64
	DocsSize   int64
}

// DictEntry locates one term's postings and carries its statistics.
type DictEntry struct {
	_          struct{} `cbor:",toarray"`
	Term       string
	PostOffset int64
	PostLen    int32
	DocFreq    int32
	CorpusFreq int64
}

// DocTable maps internal IDs to external IDs and document lengths.
type DocTable struct {
	ExternalIDs []string `cbor:"1,keyasint"`
	Lengths     []int32  `cbor:"2,keyasint"`
	TotalTerms  int64    `cbor:"3,keyasint"`
	CreatedAt   int64    `cbor:"4,keyasint"`
}

// Writer serialises snapshots into segment files under one directory.
type Writer struct {
	dataDir string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// Write atomically creates the named segment file from snap. It writes to a
// .tmp file first and renames on success, returning the final path.
func (w *Writer) Write(name string, snap index.Snapshot) (string, error) {
	if len(snap.ExternalIDs) != len(snap.DocLengths) {
		return "", fmt.Errorf("snapshot has %d ids but %d lengths", len(snap.ExternalIDs), len(snap.DocLengths))
	}
	if err := os.MkdirAll(w.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating segment directory: %w", err)
	}
	finalPath := filepath.Join(w.dataDir, name)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp segment file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	header := Header{
		Magic:      MagicBytes,
		Version:    FormatVersion,
		TermCount:  uint32(len(snap.Terms)),
		DocCount:   uint32(len(snap.ExternalIDs)),
		PostOffset: int64(HeaderSize),
	}
	if _, err := f.Write(make([]byte, HeaderSize)); err != nil {
		return "", fmt.Errorf("reserving header: %w", err)
	}

	offset := int64(0)
	dict := make([]DictEntry, 0, len(snap.Terms))
	for _, entry := range snap.Terms {
		data, err := encMode.Marshal(entry.Postings)
		if err != nil {
			return "", fmt.Errorf("encoding postings for term %q: %w", entry.Term, err)
		}
		if _, err := f.Write(data); err != nil {
			return "", fmt.Errorf("writing postings for term %q: %w", entry.Term, err)
		}
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: offset,
			PostLen:    int32(len(data)),
			DocFreq:    int32(len(entry.Postings)),
			CorpusFreq: entry.CorpusFreq,
		})
		offset += int64(len(data))
	}
	header.PostSize = offset

	dictData, err := encMode.Marshal(dict)
	if err != nil {
		return "", fmt.Errorf("encoding dictionary: %w", err)
	}
	header.DictOffset = header.PostOffset + header.PostSize
	header.DictSize = int64(len(dictData))
	if _, err := f.Write(dictData); err != nil {
		return "", fmt.Errorf("writing dictionary: %w", err)
	}

	docsData, err := encMode.Marshal(DocTable{
		ExternalIDs: snap.ExternalIDs,
		Lengths:     snap.DocLengths,
		TotalTerms:  snap.TotalTerms,
		CreatedAt:   time.Now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("encoding document table: %w", err)
	}
	header.DocsOffset = header.DictOffset + header.DictSize
	header.DocsSize = int64(len(docsData))
	if _, err := f.Write(docsData); err != nil {
		return "", fmt.Errorf("writing document table: %w", err)
	}

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(dictData))
	binary.LittleEndian.PutUint32(footer[4:8], crc32.ChecksumIEEE(docsData))
	if _, err := f.Write(footer); err != nil {
		return "", fmt.Errorf("writing footer: %w", err)
	}
	if _, err := f.WriteAt(encodeHeader(header), 0); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing segment file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("renaming segment file: %w", err)
	}
	return finalPath, nil
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.TermCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.DocCount)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.DictOffset))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.DictSize))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.PostOffset))
	binary.LittleEndian.PutUint64(buf[40:48], uint64(h.PostSize))
	binary.LittleEndian.PutUint64(buf[48:56], uint64(h.DocsOffset))
	binary.LittleEndian.PutUint64(buf[56:64], uint64(h.DocsSize))
	return buf
}

func decodeHeader(buf []byte) Header {
	return Header{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint32(buf[4:8]),
		TermCount:  binary.LittleEndian.Uint32(buf[8:12]),
		DocCount:   binary.LittleEndian.Uint32(buf[12:16]),
		DictOffset: int64(binary.LittleEndian.Uint64(buf[16:24])),
		DictSize:   int64(binary.LittleEndian.Uint64(buf[24:32])),
		PostOffset: int64(binary.LittleEndian.Uint64(buf[32:40])),
		PostSize:   int64(binary.LittleEndian.Uint64(buf[40:48])),
		DocsOffset: int64(binary.LittleEndian.Uint64(buf[48:56])),
		DocsSize:   int64(binary.LittleEndian.Uint64(buf[56:64])),
	}
}
