package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// SourceType identifies the kind of source a collection was ingested from.
type SourceType int

const (
	// SourceTypePDF represents an uploaded PDF document.
	SourceTypePDF SourceType = iota + 1
	// SourceTypeText represents raw pasted text.
	SourceTypeText
	// SourceTypeWebsite represents a fetched web page.
	SourceTypeWebsite
)

// String returns the lowercase wire name of the source type.
// It is used as the collection id prefix and in API payloads.
func (s SourceType) String() string {
	switch s {
	case SourceTypePDF:
		return "pdf"
	case SourceTypeText:
		return "text"
	case SourceTypeWebsite:
		return "website"
	default:
		return "unknown"
	}
}

// Fingerprint generates a deterministic 64-bit fingerprint of text content
// using BLAKE2b hashing. Identical content always produces the same value.
func Fingerprint(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Collection is a named, independently addressable index of embedded
// passages derived from one ingested source. A collection and its chunks
// are created together during a single ingestion; there is no update path.
type Collection struct {
	Id          string
	SourceType  SourceType
	Title       string
	CreatedAt   time.Time
	ChunkCount  int
	Summary     string
	Fingerprint uint64            // BLAKE2b-64 of the normalized source text
	Provenance  map[string]string // e.g. "filename", "sourceUrl"
}

// Chunk is one ordered passage of a collection. Seq is unique per
// collection and preserves the passage's position in the source text.
type Chunk struct {
	Collection string
	Seq        int
	Text       string
	Vector     []float32
	Metadata   map[string]string
}

// SearchResult is a chunk matched by vector similarity search.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}
