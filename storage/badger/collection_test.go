package badger

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-ai/inkwell/core"
	"github.com/inkwell-ai/inkwell/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) storage.CollectionRepository {
	t.Helper()

	backend, err := OpenBackend(t.TempDir(), false)
	require.NoError(t, err)

	repo, err := NewCollectionRepository(backend)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	return repo
}

func makeChunks(collectionID string, texts ...string) []*core.Chunk {
	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{
			Collection: collectionID,
			Seq:        i,
			Text:       text,
			Vector:     []float32{float32(i), 1, 0},
			Metadata:   map[string]string{"origin": "test"},
		}
	}
	return chunks
}

func TestUpsertAndListChunks(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	t.Run("chunks come back in sequence order", func(t *testing.T) {
		chunks := makeChunks("text_a_1", "first", "second", "third")
		require.NoError(t, repo.UpsertChunks(ctx, chunks...))

		got, err := repo.ListChunks(ctx, "text_a_1", 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i, chunk := range got {
			assert.Equal(t, i, chunk.Seq)
		}
		assert.Equal(t, "first", got[0].Text)
		assert.Equal(t, "third", got[2].Text)
	})

	t.Run("upsert is idempotent on collection and seq", func(t *testing.T) {
		chunks := makeChunks("text_b_1", "only", "two")
		require.NoError(t, repo.UpsertChunks(ctx, chunks...))
		require.NoError(t, repo.UpsertChunks(ctx, chunks...))

		got, err := repo.ListChunks(ctx, "text_b_1", 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("limit bounds the listing", func(t *testing.T) {
		chunks := makeChunks("text_c_1", "a", "b", "c", "d")
		require.NoError(t, repo.UpsertChunks(ctx, chunks...))

		got, err := repo.ListChunks(ctx, "text_c_1", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].Seq)
		assert.Equal(t, 1, got[1].Seq)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		require.NoError(t, repo.UpsertChunks(ctx, makeChunks("text_d_1", "x")...))
		require.NoError(t, repo.UpsertChunks(ctx, makeChunks("text_d_2", "y", "z")...))

		got, err := repo.ListChunks(ctx, "text_d_1", 0)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("invalid chunk is rejected", func(t *testing.T) {
		err := repo.UpsertChunks(ctx, &core.Chunk{Collection: "c", Seq: 0, Text: ""})
		assert.ErrorIs(t, err, core.ErrInvalidChunk)
	})
}

func TestFindSimilar(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	chunks := []*core.Chunk{
		{Collection: "text_sim_1", Seq: 0, Text: "east", Vector: []float32{1, 0}},
		{Collection: "text_sim_1", Seq: 1, Text: "north", Vector: []float32{0, 1}},
		{Collection: "text_sim_1", Seq: 2, Text: "northeast", Vector: []float32{0.7071, 0.7071}},
	}
	require.NoError(t, repo.UpsertChunks(ctx, chunks...))

	t.Run("ranks by similarity descending", func(t *testing.T) {
		got, err := repo.FindSimilar(ctx, "text_sim_1", []float32{1, 0}, 0.5, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "east", got[0].Chunk.Text)
		assert.Equal(t, "northeast", got[1].Chunk.Text)
		assert.Greater(t, got[0].Score, got[1].Score)
	})

	t.Run("threshold filters weak matches", func(t *testing.T) {
		got, err := repo.FindSimilar(ctx, "text_sim_1", []float32{1, 0}, 0.99, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "east", got[0].Chunk.Text)
	})

	t.Run("limit caps results", func(t *testing.T) {
		got, err := repo.FindSimilar(ctx, "text_sim_1", []float32{1, 1}, 0, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("other collections are not searched", func(t *testing.T) {
		got, err := repo.FindSimilar(ctx, "text_sim_other", []float32{1, 0}, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestCollectionManifest(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	col := &core.Collection{
		Id:          "pdf_report_1700000000002",
		SourceType:  core.SourceTypePDF,
		Title:       "Report",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		ChunkCount:  2,
		Summary:     "Summary text.",
		Fingerprint: core.Fingerprint("body"),
		Provenance:  map[string]string{"filename": "report.pdf"},
	}

	t.Run("put then get round trips", func(t *testing.T) {
		require.NoError(t, repo.PutCollection(ctx, col))

		got, err := repo.GetCollection(ctx, col.Id)
		require.NoError(t, err)
		assert.Equal(t, col, got)
	})

	t.Run("missing manifest yields ErrNotFound", func(t *testing.T) {
		_, err := repo.GetCollection(ctx, "text_nope_1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("put replaces an existing manifest", func(t *testing.T) {
		updated := *col
		updated.Summary = "Replaced."
		require.NoError(t, repo.PutCollection(ctx, &updated))

		got, err := repo.GetCollection(ctx, col.Id)
		require.NoError(t, err)
		assert.Equal(t, "Replaced.", got.Summary)
	})
}

func TestDeleteCollection(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	id := "text_gone_1"
	require.NoError(t, repo.UpsertChunks(ctx, makeChunks(id, "a", "b")...))
	require.NoError(t, repo.PutCollection(ctx, &core.Collection{
		Id: id, SourceType: core.SourceTypeText, CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, repo.DeleteCollection(ctx, id))

	_, err := repo.GetCollection(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := repo.ListChunks(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	t.Run("deleting an absent collection is not an error", func(t *testing.T) {
		assert.NoError(t, repo.DeleteCollection(ctx, "text_never_1"))
	})
}
