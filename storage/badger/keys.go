package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different record types
const (
	collectionPrefix = "colrec"
	chunkPrefix      = "colchk"
)

// makeCollectionKey generates a key for a collection manifest.
func makeCollectionKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, id))
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:collectionID:seq. The sequence index is written in
// BigEndian order so lexicographic iteration yields ascending sequence.
func makeChunkKey(collectionID string, seq int) []byte {
	prefix := makeChunkScanPrefix(collectionID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makeChunkScanPrefix generates the iteration prefix for one collection's
// chunks.
func makeChunkScanPrefix(collectionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, collectionID))
}
