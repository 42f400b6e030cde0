package badger

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/inkwell-ai/inkwell/core"
	"github.com/inkwell-ai/inkwell/storage"
)

// CollectionRepository implements storage.CollectionRepository for BadgerDB.
type CollectionRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.CollectionRepository = (*CollectionRepository)(nil)

// NewCollectionRepository creates a repository on top of an open backend.
//
// Returns the storage.CollectionRepository interface to enforce abstraction.
func NewCollectionRepository(backend *Backend) (storage.CollectionRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &CollectionRepository{
		backend: backend,
		logger:  slog.Default().With("component", "badger-collections"),
	}, nil
}

// Close releases resources. The underlying backend is closed separately.
func (r *CollectionRepository) Close() error {
	return nil
}

// UpsertChunks writes a batch of chunks in one transaction. The chunk key
// is (collection, seq), so replaying the same batch overwrites in place
// rather than duplicating.
func (r *CollectionRepository) UpsertChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Collection, chunk.Seq)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ListChunks retrieves a collection's chunks in ascending sequence order.
func (r *CollectionRepository) ListChunks(ctx context.Context, collectionID string, limit int) ([]*core.Chunk, error) {
	var chunks []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkScanPrefix(collectionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(chunks) >= limit {
				break
			}
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// FindSimilar scans one collection's chunks and ranks them by dot product
// against the query vector. Embeddings are unit-normalized by the
// providers, so the dot product is the cosine similarity.
func (r *CollectionRepository) FindSimilar(ctx context.Context, collectionID string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	var results []*core.SearchResult

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkScanPrefix(collectionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Vector) == 0 {
				continue
			}

			similarity := dotProduct(vector, chunk.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{
					Chunk: chunk,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// PutCollection writes or replaces a collection manifest.
func (r *CollectionRepository) PutCollection(ctx context.Context, col *core.Collection) error {
	if err := core.ValidateCollection(col); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(col.Id)
		if err := tx.Set(key, storage.MarshalCollection(col)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetCollection retrieves a collection manifest by id.
func (r *CollectionRepository) GetCollection(ctx context.Context, id string) (*core.Collection, error) {
	var col *core.Collection

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			col, err = storage.UnmarshalCollection(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return col, nil
}

// DeleteCollection removes a manifest and every chunk under it.
func (r *CollectionRepository) DeleteCollection(ctx context.Context, id string) error {
	// Collect keys in a read pass first; deleting while iterating over the
	// same transaction's iterator is not supported by badger.
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkScanPrefix(id)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeCollectionKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
