package storage

import (
	"context"

	"github.com/inkwell-ai/inkwell/core"
)

// CollectionRepository provides operations for managing collections of
// embedded chunks. Implementations must be thread-safe and must make a
// committed chunk batch visible to subsequent reads on the same handle
// (read-after-write consistency within one process).
type CollectionRepository interface {
	// UpsertChunks writes one or more chunks in a single atomic batch.
	// Upserts are idempotent on (Collection, Seq): re-running with the same
	// arguments leaves exactly one entry per key. The call does not return
	// until every chunk in the batch is acknowledged.
	UpsertChunks(ctx context.Context, chunks ...*core.Chunk) error

	// ListChunks retrieves chunks for a collection in ascending sequence
	// order. limit <= 0 returns all chunks.
	ListChunks(ctx context.Context, collectionID string, limit int) ([]*core.Chunk, error)

	// FindSimilar finds chunks in a collection similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, collectionID string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// PutCollection writes or replaces a collection manifest. The manifest
	// is the commit marker: a collection without one is not queryable.
	PutCollection(ctx context.Context, col *core.Collection) error

	// GetCollection retrieves a collection manifest by id.
	// Returns ErrNotFound if no manifest exists.
	GetCollection(ctx context.Context, id string) (*core.Collection, error)

	// DeleteCollection removes a collection manifest and all of its chunks.
	// Deleting an absent collection is not an error.
	DeleteCollection(ctx context.Context, id string) error

	// Close releases resources held by the repository.
	Close() error
}
