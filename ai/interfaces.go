package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces a short natural-language description of a collection
// from a bounded set of retrieved passages.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize describes the content represented by the passages.
	// The returned string is plain prose, a few sentences at most.
	// Returns an error if the provider call fails; callers are expected to
	// substitute a fallback description.
	Summarize(ctx context.Context, title string, passages []string) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Summarizer instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Summarizer returns the summarization service.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	Close() error
}
