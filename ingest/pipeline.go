// Copyright 2026 Inkwell Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/inkwell-ai/inkwell/ai"
	"github.com/inkwell-ai/inkwell/chunk"
	"github.com/inkwell-ai/inkwell/core"
	"github.com/inkwell-ai/inkwell/extract"
	"github.com/inkwell-ai/inkwell/storage"
)

const (
	defaultChunkMaxChars = 1000
	defaultChunkOverlap  = 150
	defaultPoolSize      = 4
)

// Result is the externally visible outcome of a successful ingestion.
// Summary is always non-empty: provider failures at the summarization
// stage degrade to a templated description instead of failing the request.
type Result struct {
	CollectionId   string
	Title          string
	SourceType     core.SourceType
	DocumentsCount int
	Summary        string
	Provenance     map[string]string
}

// Pipeline sequences admission, extraction, naming, chunking, embedding,
// indexing, and summarization for one source. It is safe for concurrent
// use; embedding fan-out is bounded by a shared worker pool.
type Pipeline struct {
	extractor  *extract.Extractor
	embedder   ai.Embedder
	summarizer *SummaryGenerator
	store      storage.CollectionRepository
	chunker    *chunk.Chunker
	policy     Policy
	pool       *ants.Pool
	logger     *slog.Logger
}

type pipelineConfig struct {
	extractor       *extract.Extractor
	policy          Policy
	chunkMaxChars   int
	chunkOverlap    int
	poolSize        int
	summaryPassages int
	logger          *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

// WithExtractor replaces the default extractor.
func WithExtractor(e *extract.Extractor) PipelineOption {
	return func(c *pipelineConfig) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithPolicy replaces the default admission thresholds.
func WithPolicy(p Policy) PipelineOption {
	return func(c *pipelineConfig) { c.policy = p }
}

// WithChunking sets the chunk size and overlap in characters.
func WithChunking(maxChars, overlap int) PipelineOption {
	return func(c *pipelineConfig) {
		c.chunkMaxChars = maxChars
		c.chunkOverlap = overlap
	}
}

// WithPoolSize bounds the concurrent embedding fan-out.
func WithPoolSize(n int) PipelineOption {
	return func(c *pipelineConfig) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithSummaryPassages bounds how many leading passages feed summarization.
func WithSummaryPassages(n int) PipelineOption {
	return func(c *pipelineConfig) {
		if n > 0 {
			c.summaryPassages = n
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(c *pipelineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewPipeline wires a pipeline over a store and AI services.
func NewPipeline(store storage.CollectionRepository, embedder ai.Embedder, summarizer ai.Summarizer, opts ...PipelineOption) (*Pipeline, error) {
	cfg := pipelineConfig{
		extractor:     extract.New(),
		policy:        DefaultPolicy(),
		chunkMaxChars: defaultChunkMaxChars,
		chunkOverlap:  defaultChunkOverlap,
		poolSize:      defaultPoolSize,
		logger:        slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	chunker, err := chunk.New(cfg.chunkMaxChars, cfg.chunkOverlap)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(cfg.poolSize)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		extractor:  cfg.extractor,
		embedder:   embedder,
		summarizer: NewSummaryGenerator(store, summarizer, cfg.summaryPassages),
		store:      store,
		chunker:    chunker,
		policy:     cfg.policy,
		pool:       pool,
		logger:     cfg.logger,
	}, nil
}

// Close releases the worker pool. The store is owned by the caller.
func (p *Pipeline) Close() error {
	p.pool.Release()
	return nil
}

// IngestPDF ingests an uploaded PDF held in memory. The size check runs
// before the document is ever opened.
func (p *Pipeline) IngestPDF(ctx context.Context, data []byte, filename string) (*Result, error) {
	if err := p.policy.CheckFile(int64(len(data))); err != nil {
		return nil, err
	}
	return p.ingest(ctx, extract.PDFSource{Data: data, Filename: filename})
}

// IngestText ingests raw pasted text under a caller-supplied title.
func (p *Pipeline) IngestText(ctx context.Context, text, title string) (*Result, error) {
	if err := p.policy.CheckText(text); err != nil {
		return nil, err
	}
	return p.ingest(ctx, extract.TextSource{Text: text, Title: title})
}

// IngestWebsite fetches and ingests a web page. Malformed URLs are
// rejected before any network activity.
func (p *Pipeline) IngestWebsite(ctx context.Context, rawURL string) (*Result, error) {
	src, err := extract.NewWebsiteSource(rawURL)
	if err != nil {
		return nil, err
	}
	return p.ingest(ctx, src)
}

// ingest runs the stages shared by every source type. Chunks are written
// before the manifest; the manifest acts as the commit marker, so a
// failure partway leaves no visible collection.
func (p *Pipeline) ingest(ctx context.Context, src extract.Source) (*Result, error) {
	started := time.Now()

	extraction, err := p.extractor.Extract(ctx, src)
	if err != nil {
		return nil, err
	}

	collectionID := core.NewCollectionID(src.Type(), extraction.Title)
	passages := p.chunker.Split(extraction.Text)
	if len(passages) == 0 {
		return nil, newValidationError(ReasonEmptyInput, "source contained no indexable text")
	}

	p.logger.Info("ingesting collection",
		"collection", collectionID,
		"sourceType", src.Type().String(),
		"chunks", len(passages))

	if err := p.indexChunks(ctx, collectionID, passages, extraction.Provenance); err != nil {
		return nil, &IndexingError{Collection: collectionID, Err: err}
	}

	col := &core.Collection{
		Id:          collectionID,
		SourceType:  src.Type(),
		Title:       extraction.Title,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		ChunkCount:  len(passages),
		Fingerprint: core.Fingerprint(extraction.Text),
		Provenance:  extraction.Provenance,
	}
	if err := p.store.PutCollection(ctx, col); err != nil {
		return nil, &IndexingError{Collection: collectionID, Err: err}
	}

	col.Summary = p.summarizer.Summarize(ctx, col)

	// Best effort: the summary also lives in the manifest for later listing.
	// The result carries it either way.
	if err := p.store.PutCollection(ctx, col); err != nil {
		p.logger.Warn("failed to persist summary on manifest",
			"collection", collectionID, "err", err)
	}

	p.logger.Info("ingestion complete",
		"collection", collectionID,
		"chunks", len(passages),
		"elapsed", time.Since(started))

	return &Result{
		CollectionId:   collectionID,
		Title:          extraction.Title,
		SourceType:     src.Type(),
		DocumentsCount: len(passages),
		Summary:        col.Summary,
		Provenance:     extraction.Provenance,
	}, nil
}

// indexChunks embeds every passage with bounded fan-out, then upserts the
// whole batch in one call. Success is reported only after the store has
// acknowledged every chunk.
func (p *Pipeline) indexChunks(ctx context.Context, collectionID string, passages []string, provenance map[string]string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := make([]*core.Chunk, len(passages))

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, text := range passages {
		wg.Add(1)
		i, text := i, text
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			vector, err := p.embedder.EmbedText(ctx, text)
			if err != nil {
				fail(fmt.Errorf("embedding chunk %d: %w", i, err))
				return
			}
			chunks[i] = &core.Chunk{
				Collection: collectionID,
				Seq:        i,
				Text:       text,
				Vector:     vector,
				Metadata:   provenance,
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dimension := len(chunks[0].Vector)
	for _, chunk := range chunks {
		if len(chunk.Vector) != dimension {
			return fmt.Errorf("inconsistent embedding dimensions: %d and %d",
				dimension, len(chunk.Vector))
		}
	}

	return p.store.UpsertChunks(ctx, chunks...)
}
