// Package qdrant implements storage.CollectionRepository against a remote
// Qdrant instance. It is a minimal REST client: points are upserted with
// wait=true so a committed batch is immediately visible to reads, and each
// ingested collection maps to one Qdrant collection. Manifests live in a
// dedicated side collection keyed by a fingerprint of the collection id.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/inkwell-ai/inkwell/core"
	"github.com/inkwell-ai/inkwell/storage"
)

const (
	manifestCollection = "inkwell_manifests"
	scrollPageSize     = 256
)

// errStatusNotFound marks 404 responses so callers can treat missing
// collections as empty rather than failing.
var errStatusNotFound = errors.New("not found")

// Config configures the Qdrant store.
type Config struct {
	URL     string // base URL, e.g. "http://localhost:6333"
	APIKey  string // optional api-key header
	Timeout time.Duration
}

// Store is a Qdrant-backed collection repository.
type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger

	mu    sync.Mutex
	known map[string]bool // qdrant collections confirmed to exist
}

var _ storage.CollectionRepository = (*Store)(nil)

// NewStore creates a Qdrant-backed repository.
//
// Returns the storage.CollectionRepository interface to enforce abstraction.
func NewStore(cfg Config) (storage.CollectionRepository, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "qdrant-store"),
		known:   make(map[string]bool),
	}, nil
}

// Close releases resources. The HTTP client needs no explicit cleanup.
func (s *Store) Close() error {
	return nil
}

// UpsertChunks writes a batch of chunks with wait=true, creating the
// backing Qdrant collection on first use. Point ids are the chunk sequence
// indices, so replays overwrite in place.
func (s *Store) UpsertChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	byCollection := make(map[string][]*core.Chunk)
	for _, chunk := range chunks {
		byCollection[chunk.Collection] = append(byCollection[chunk.Collection], chunk)
	}

	for collectionID, batch := range byCollection {
		if len(batch[0].Vector) == 0 {
			return fmt.Errorf("chunk %d of %s has no vector", batch[0].Seq, collectionID)
		}
		if err := s.ensureCollection(ctx, collectionID, len(batch[0].Vector)); err != nil {
			return err
		}

		points := make([]map[string]any, len(batch))
		for i, chunk := range batch {
			points[i] = map[string]any{
				"id":     chunk.Seq,
				"vector": chunk.Vector,
				"payload": map[string]any{
					"collection": chunk.Collection,
					"seq":        chunk.Seq,
					"text":       chunk.Text,
					"metadata":   chunk.Metadata,
				},
			}
		}

		url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, collectionID)
		if err := s.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points}, nil); err != nil {
			return err
		}
	}

	return nil
}

// ListChunks scrolls a collection's points and returns them in ascending
// sequence order.
func (s *Store) ListChunks(ctx context.Context, collectionID string, limit int) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	var offset any

	for {
		req := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
			"with_vector":  true,
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload chunkPayload `json:"payload"`
					Vector  []float32    `json:"vector"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}

		url := fmt.Sprintf("%s/collections/%s/points/scroll", s.baseURL, collectionID)
		if err := s.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
			if errors.Is(err, errStatusNotFound) {
				return nil, nil
			}
			return nil, err
		}

		for _, p := range resp.Result.Points {
			chunks = append(chunks, p.Payload.toChunk(p.Vector))
		}

		if resp.Result.NextPageOffset == nil || len(resp.Result.Points) == 0 {
			break
		}
		offset = resp.Result.NextPageOffset
	}

	slices.SortFunc(chunks, func(a, b *core.Chunk) int { return a.Seq - b.Seq })

	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

// FindSimilar runs a vector search within one collection.
func (s *Store) FindSimilar(ctx context.Context, collectionID string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if minSimilarity > 0 {
		req["score_threshold"] = minSimilarity
	}

	var resp struct {
		Result []struct {
			Score   float32      `json:"score"`
			Payload chunkPayload `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, collectionID)
	if err := s.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, nil
		}
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, &core.SearchResult{
			Chunk: r.Payload.toChunk(nil),
			Score: r.Score,
		})
	}
	return results, nil
}

// PutCollection stores the manifest as a point in the manifest side
// collection, keyed by a fingerprint of the collection id.
func (s *Store) PutCollection(ctx context.Context, col *core.Collection) error {
	if err := core.ValidateCollection(col); err != nil {
		return err
	}
	if err := s.ensureCollection(ctx, manifestCollection, 1); err != nil {
		return err
	}

	point := map[string]any{
		"id":     core.Fingerprint(col.Id),
		"vector": []float32{1},
		"payload": map[string]any{
			"id":          col.Id,
			"sourceType":  int(col.SourceType),
			"title":       col.Title,
			"createdAt":   col.CreatedAt.UnixMicro(),
			"chunkCount":  col.ChunkCount,
			"summary":     col.Summary,
			"fingerprint": fmt.Sprintf("%d", col.Fingerprint),
			"provenance":  col.Provenance,
		},
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, manifestCollection)
	return s.doJSON(ctx, http.MethodPut, url, map[string]any{"points": []any{point}}, nil)
}

// GetCollection retrieves a manifest point by the fingerprint of its id.
func (s *Store) GetCollection(ctx context.Context, id string) (*core.Collection, error) {
	req := map[string]any{
		"ids":          []any{core.Fingerprint(id)},
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Payload manifestPayload `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points", s.baseURL, manifestCollection)
	if err := s.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if len(resp.Result) == 0 {
		return nil, storage.ErrNotFound
	}

	return resp.Result[0].Payload.toCollection(), nil
}

// DeleteCollection drops the backing Qdrant collection and the manifest
// point.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/collections/%s", s.baseURL, id)
	if err := s.doJSON(ctx, http.MethodDelete, url, nil, nil); err != nil && !errors.Is(err, errStatusNotFound) {
		return err
	}

	s.mu.Lock()
	delete(s.known, id)
	s.mu.Unlock()

	deleteReq := map[string]any{"points": []any{core.Fingerprint(id)}}
	url = fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.baseURL, manifestCollection)
	if err := s.doJSON(ctx, http.MethodPost, url, deleteReq, nil); err != nil && !errors.Is(err, errStatusNotFound) {
		return err
	}
	return nil
}

// ensureCollection creates a Qdrant collection with cosine distance if it
// does not already exist.
func (s *Store) ensureCollection(ctx context.Context, name string, dimension int) error {
	s.mu.Lock()
	if s.known[name] {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	url := fmt.Sprintf("%s/collections/%s", s.baseURL, name)
	err := s.doJSON(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		if !errors.Is(err, errStatusNotFound) {
			return err
		}
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		if err := s.doJSON(ctx, http.MethodPut, url, body, nil); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.known[name] = true
	s.mu.Unlock()
	return nil
}

// doJSON issues one request with an optional JSON body and decodes the
// response into out when provided. 404 maps to errStatusNotFound.
func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("qdrant %s %s: %w", method, url, errStatusNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, url, resp.StatusCode, detail)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// chunkPayload is the JSON shape of a chunk point payload.
type chunkPayload struct {
	Collection string            `json:"collection"`
	Seq        int               `json:"seq"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
}

func (p chunkPayload) toChunk(vector []float32) *core.Chunk {
	return &core.Chunk{
		Collection: p.Collection,
		Seq:        p.Seq,
		Text:       p.Text,
		Vector:     vector,
		Metadata:   p.Metadata,
	}
}

// manifestPayload is the JSON shape of a manifest point payload.
type manifestPayload struct {
	Id          string            `json:"id"`
	SourceType  int               `json:"sourceType"`
	Title       string            `json:"title"`
	CreatedAt   int64             `json:"createdAt"`
	ChunkCount  int               `json:"chunkCount"`
	Summary     string            `json:"summary"`
	Fingerprint string            `json:"fingerprint"`
	Provenance  map[string]string `json:"provenance"`
}

func (p manifestPayload) toCollection() *core.Collection {
	var fingerprint uint64
	fmt.Sscanf(p.Fingerprint, "%d", &fingerprint)
	return &core.Collection{
		Id:          p.Id,
		SourceType:  core.SourceType(p.SourceType),
		Title:       p.Title,
		CreatedAt:   time.UnixMicro(p.CreatedAt).UTC(),
		ChunkCount:  p.ChunkCount,
		Summary:     p.Summary,
		Fingerprint: fingerprint,
		Provenance:  p.Provenance,
	}
}
