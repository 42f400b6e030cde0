package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkwell-ai/inkwell/ai"
	"github.com/inkwell-ai/inkwell/core"
	"github.com/inkwell-ai/inkwell/storage"
)

const defaultSummaryPassages = 6

// SummaryGenerator produces the short description attached to a freshly
// ingested collection. It reads passages back from the store, so it
// observes exactly what was indexed, and never surfaces an error: any
// provider or store failure degrades to a templated fallback.
type SummaryGenerator struct {
	store       storage.CollectionRepository
	summarizer  ai.Summarizer
	maxPassages int
	logger      *slog.Logger
}

// NewSummaryGenerator creates a generator reading at most maxPassages
// leading passages per collection. Pass 0 for the default bound.
func NewSummaryGenerator(store storage.CollectionRepository, summarizer ai.Summarizer, maxPassages int) *SummaryGenerator {
	if maxPassages <= 0 {
		maxPassages = defaultSummaryPassages
	}
	return &SummaryGenerator{
		store:       store,
		summarizer:  summarizer,
		maxPassages: maxPassages,
		logger:      slog.Default().With("component", "summary"),
	}
}

// Summarize returns a non-empty description for the collection. The leading
// passages stand in for a retrieval query: they are deterministic and cover
// the start of the document, which is where titles, abstracts, and
// introductions live.
func (g *SummaryGenerator) Summarize(ctx context.Context, col *core.Collection) string {
	chunks, err := g.store.ListChunks(ctx, col.Id, g.maxPassages)
	if err != nil || len(chunks) == 0 {
		if err != nil {
			g.logger.Warn("passage retrieval failed, using fallback summary",
				"collection", col.Id, "err", err)
		}
		return FallbackSummary(col)
	}

	passages := make([]string, len(chunks))
	for i, chunk := range chunks {
		passages[i] = chunk.Text
	}

	summary, err := g.summarizer.Summarize(ctx, col.Title, passages)
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			g.logger.Warn("summarization failed, using fallback summary",
				"collection", col.Id, "err", err)
		}
		return FallbackSummary(col)
	}

	return strings.TrimSpace(summary)
}

// FallbackSummary builds the deterministic description used when the
// language model is unavailable. It always names the source type, the
// title, and the indexed passage count.
func FallbackSummary(col *core.Collection) string {
	noun := "document"
	switch col.SourceType {
	case core.SourceTypePDF:
		noun = "PDF document"
	case core.SourceTypeText:
		noun = "text snippet"
	case core.SourceTypeWebsite:
		noun = "web page"
	}

	passages := "passages"
	if col.ChunkCount == 1 {
		passages = "passage"
	}

	return fmt.Sprintf("A %s titled %q, indexed as %d searchable %s.",
		noun, col.Title, col.ChunkCount, passages)
}
