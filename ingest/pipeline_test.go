package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/ai/mock"
	"github.com/inkwell-ai/inkwell/chunk"
	"github.com/inkwell-ai/inkwell/core"
	"github.com/inkwell-ai/inkwell/extract"
	"github.com/inkwell-ai/inkwell/storage"
	storagebadger "github.com/inkwell-ai/inkwell/storage/badger"
)

type pipelineFixture struct {
	pipeline   *Pipeline
	store      storage.CollectionRepository
	embedder   *mock.Embedder
	summarizer *mock.Summarizer
}

func setupPipeline(t *testing.T, opts ...PipelineOption) *pipelineFixture {
	t.Helper()

	backend, err := storagebadger.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo, err := storagebadger.NewCollectionRepository(backend)
	require.NoError(t, err)

	embedder := mock.NewEmbedder()
	summarizer := mock.NewSummarizer()

	pipeline, err := NewPipeline(repo, embedder, summarizer, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { pipeline.Close() })

	return &pipelineFixture{
		pipeline:   pipeline,
		store:      repo,
		embedder:   embedder,
		summarizer: summarizer,
	}
}

func TestIngestText(t *testing.T) {
	ctx := context.Background()

	t.Run("short text yields a single-chunk collection", func(t *testing.T) {
		f := setupPipeline(t)

		result, err := f.pipeline.IngestText(ctx, strings.Repeat("A", 20), "demo")
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^text_demo_\d+$`), result.CollectionId)
		assert.Equal(t, 1, result.DocumentsCount)
		assert.Equal(t, "demo", result.Title)
		assert.Equal(t, core.SourceTypeText, result.SourceType)
		assert.NotEmpty(t, result.Summary)

		col, err := f.store.GetCollection(ctx, result.CollectionId)
		require.NoError(t, err)
		assert.Equal(t, 1, col.ChunkCount)
		assert.Equal(t, result.Summary, col.Summary)

		chunks, err := f.store.ListChunks(ctx, result.CollectionId, 0)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, strings.Repeat("A", 20), chunks[0].Text)
	})

	t.Run("documents count matches the chunker output", func(t *testing.T) {
		f := setupPipeline(t, WithChunking(100, 20))

		var b strings.Builder
		for i := 0; i < 60; i++ {
			fmt.Fprintf(&b, "Sentence number %02d fills out the passage. ", i)
		}
		text := strings.TrimSpace(b.String())

		chunker, err := chunk.New(100, 20)
		require.NoError(t, err)
		expected := len(chunker.Split(text))
		require.Greater(t, expected, 1)

		result, err := f.pipeline.IngestText(ctx, text, "long sample")
		require.NoError(t, err)
		assert.Equal(t, expected, result.DocumentsCount)

		chunks, err := f.store.ListChunks(ctx, result.CollectionId, 0)
		require.NoError(t, err)
		assert.Len(t, chunks, expected)
		for i, c := range chunks {
			assert.Equal(t, i, c.Seq)
			assert.NotEmpty(t, c.Vector)
		}
	})

	t.Run("over-limit text is rejected before any provider call", func(t *testing.T) {
		f := setupPipeline(t, WithPolicy(Policy{MaxTextChars: 30, MinTextChars: 5}))

		_, err := f.pipeline.IngestText(ctx, strings.Repeat("A", 31), "big")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonTextTooLong, verr.Reason)
		assert.Zero(t, f.embedder.CallCount())
		assert.Zero(t, f.summarizer.CallCount())
	})

	t.Run("too-short text is rejected", func(t *testing.T) {
		f := setupPipeline(t)

		_, err := f.pipeline.IngestText(ctx, "tiny", "t")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonTextTooShort, verr.Reason)
	})
}

func TestIngestPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("oversize upload is rejected before parsing", func(t *testing.T) {
		f := setupPipeline(t, WithPolicy(Policy{MaxFileBytes: 16}))

		_, err := f.pipeline.IngestPDF(ctx, make([]byte, 17), "big.pdf")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonFileTooLarge, verr.Reason)
		assert.Zero(t, f.embedder.CallCount())
	})

	t.Run("unparseable bytes fail with a parse error", func(t *testing.T) {
		f := setupPipeline(t)

		_, err := f.pipeline.IngestPDF(ctx, []byte("not a pdf at all"), "junk.pdf")
		var eerr *extract.Error
		require.ErrorAs(t, err, &eerr)
		assert.Equal(t, extract.ParseError, eerr.Kind)
	})
}

func TestIngestWebsite(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed url is rejected before any fetch", func(t *testing.T) {
		f := setupPipeline(t)

		_, err := f.pipeline.IngestWebsite(ctx, "not a url")
		assert.ErrorIs(t, err, extract.ErrInvalidURL)
		assert.Zero(t, f.embedder.CallCount())
	})
}

func TestSummarizationFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("provider failure degrades to the templated summary", func(t *testing.T) {
		f := setupPipeline(t)
		f.summarizer.SummarizeFunc = func(ctx context.Context, title string, passages []string) (string, error) {
			return "", errors.New("quota exceeded")
		}

		result, err := f.pipeline.IngestText(ctx, strings.Repeat("A", 20), "demo")
		require.NoError(t, err)
		require.NotEmpty(t, result.Summary)
		assert.Contains(t, result.Summary, `"demo"`)
		assert.Contains(t, result.Summary, "1 searchable passage")
	})

	t.Run("empty provider output also degrades", func(t *testing.T) {
		f := setupPipeline(t)
		f.summarizer.SummarizeFunc = func(ctx context.Context, title string, passages []string) (string, error) {
			return "   ", nil
		}

		result, err := f.pipeline.IngestText(ctx, strings.Repeat("A", 20), "demo")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Summary)
	})

	t.Run("summarizer receives the indexed passages", func(t *testing.T) {
		f := setupPipeline(t)

		var got []string
		f.summarizer.SummarizeFunc = func(ctx context.Context, title string, passages []string) (string, error) {
			got = passages
			return "A fine description.", nil
		}

		text := strings.Repeat("A", 20)
		_, err := f.pipeline.IngestText(ctx, text, "demo")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, text, got[0])
	})
}

func TestIndexingFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("embedding failure aborts with no visible collection", func(t *testing.T) {
		f := setupPipeline(t)
		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("provider down")
		}

		_, err := f.pipeline.IngestText(ctx, strings.Repeat("A", 20), "demo")
		var ierr *IndexingError
		require.ErrorAs(t, err, &ierr)
		assert.NotEmpty(t, ierr.Collection)
		assert.Zero(t, f.summarizer.CallCount())

		_, err = f.store.GetCollection(ctx, ierr.Collection)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestFallbackSummaryTemplate(t *testing.T) {
	col := &core.Collection{
		SourceType: core.SourceTypeWebsite,
		Title:      "Example Domain",
		ChunkCount: 4,
	}

	summary := FallbackSummary(col)
	assert.Contains(t, summary, "web page")
	assert.Contains(t, summary, `"Example Domain"`)
	assert.Contains(t, summary, "4 searchable passages")
}
