package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/inkwell-ai/inkwell/core"
	"github.com/inkwell-ai/inkwell/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQdrant emulates the handful of REST endpoints the store uses. It
// keeps collections and points in memory so round trips can be asserted.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage // name -> point id -> raw point
	upsertWaits []string
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{collections: make(map[string]map[string]json.RawMessage)}
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.collections[r.PathValue("name")]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"result":{}}`))
	})

	mux.HandleFunc("PUT /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		name := r.PathValue("name")
		if _, ok := f.collections[name]; !ok {
			f.collections[name] = make(map[string]json.RawMessage)
		}
		w.Write([]byte(`{"result":true}`))
	})

	mux.HandleFunc("DELETE /collections/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.collections, r.PathValue("name"))
		w.Write([]byte(`{"result":true}`))
	})

	mux.HandleFunc("PUT /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		name := r.PathValue("name")
		f.upsertWaits = append(f.upsertWaits, r.URL.Query().Get("wait"))

		var body struct {
			Points []json.RawMessage `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		points, ok := f.collections[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		for _, raw := range body.Points {
			var idOnly struct {
				Id json.Number `json:"id"`
			}
			if err := json.Unmarshal(raw, &idOnly); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			points[idOnly.Id.String()] = raw
		}
		w.Write([]byte(`{"result":{"status":"completed"}}`))
	})

	mux.HandleFunc("POST /collections/{name}/points", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		points, ok := f.collections[r.PathValue("name")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Ids []json.Number `json:"ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		var result []json.RawMessage
		for _, id := range body.Ids {
			if raw, ok := points[id.String()]; ok {
				result = append(result, raw)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"result": result})
	})

	mux.HandleFunc("POST /collections/{name}/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		points, ok := f.collections[r.PathValue("name")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var out []json.RawMessage
		for _, raw := range points {
			out = append(out, raw)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"points": out, "next_page_offset": nil},
		})
	})

	mux.HandleFunc("POST /collections/{name}/points/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.collections[r.PathValue("name")]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// Canned ranking; similarity math is covered by the badger backend.
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"score": 0.97, "payload": map[string]any{"collection": "text_demo_1", "seq": 2, "text": "closest"}},
				{"score": 0.61, "payload": map[string]any{"collection": "text_demo_1", "seq": 0, "text": "farther"}},
			},
		})
	})

	mux.HandleFunc("POST /collections/{name}/points/delete", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		points, ok := f.collections[r.PathValue("name")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Points []json.Number `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		for _, id := range body.Points {
			delete(points, id.String())
		}
		w.Write([]byte(`{"result":{"status":"completed"}}`))
	})

	return mux
}

func setupStore(t *testing.T) (storage.CollectionRepository, *fakeQdrant) {
	t.Helper()

	fake := newFakeQdrant()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	store, err := NewStore(Config{URL: server.URL})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, fake
}

func TestStoreUpsertAndList(t *testing.T) {
	store, fake := setupStore(t)
	ctx := context.Background()

	chunks := []*core.Chunk{
		{Collection: "text_demo_1", Seq: 1, Text: "second", Vector: []float32{0, 1}},
		{Collection: "text_demo_1", Seq: 0, Text: "first", Vector: []float32{1, 0}},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks...))

	t.Run("upserts wait for commit", func(t *testing.T) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		require.NotEmpty(t, fake.upsertWaits)
		for _, wait := range fake.upsertWaits {
			assert.Equal(t, "true", wait)
		}
	})

	t.Run("listing sorts by sequence", func(t *testing.T) {
		got, err := store.ListChunks(ctx, "text_demo_1", 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Text)
		assert.Equal(t, "second", got[1].Text)
	})

	t.Run("replayed batch does not duplicate", func(t *testing.T) {
		require.NoError(t, store.UpsertChunks(ctx, chunks...))

		got, err := store.ListChunks(ctx, "text_demo_1", 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unknown collection lists empty", func(t *testing.T) {
		got, err := store.ListChunks(ctx, "text_absent_1", 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStoreFindSimilar(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChunks(ctx, &core.Chunk{
		Collection: "text_demo_1", Seq: 0, Text: "seed", Vector: []float32{1, 0},
	}))

	got, err := store.FindSimilar(ctx, "text_demo_1", []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "closest", got[0].Chunk.Text)
	assert.Greater(t, got[0].Score, got[1].Score)

	t.Run("unknown collection searches empty", func(t *testing.T) {
		got, err := store.FindSimilar(ctx, "text_absent_1", []float32{1, 0}, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStoreManifests(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	col := &core.Collection{
		Id:          "pdf_report_1700000000001",
		SourceType:  core.SourceTypePDF,
		Title:       "Report",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		ChunkCount:  3,
		Summary:     "A report.",
		Fingerprint: core.Fingerprint("body"),
		Provenance:  map[string]string{"filename": "report.pdf"},
	}

	t.Run("put then get round trips", func(t *testing.T) {
		require.NoError(t, store.PutCollection(ctx, col))

		got, err := store.GetCollection(ctx, col.Id)
		require.NoError(t, err)
		assert.Equal(t, col, got)
	})

	t.Run("missing manifest yields ErrNotFound", func(t *testing.T) {
		_, err := store.GetCollection(ctx, "text_nope_1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete removes chunks and manifest", func(t *testing.T) {
		require.NoError(t, store.UpsertChunks(ctx, &core.Chunk{
			Collection: col.Id, Seq: 0, Text: "body", Vector: []float32{1},
		}))
		require.NoError(t, store.DeleteCollection(ctx, col.Id))

		_, err := store.GetCollection(ctx, col.Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		chunks, err := store.ListChunks(ctx, col.Id, 0)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}
