package mock

import "github.com/inkwell-ai/inkwell/ai"

// Provider is a test double for ai.Provider aggregating the mock services.
type Provider struct {
	embedder   *Embedder
	summarizer *Summarizer
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a provider wrapping fresh mock services.
func NewProvider() *Provider {
	return &Provider{
		embedder:   NewEmbedder(),
		summarizer: NewSummarizer(),
	}
}

// Embedder returns the embedding service as the ai interface.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Summarizer returns the summarization service as the ai interface.
func (p *Provider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// MockEmbedder returns the concrete embedder for test assertions.
func (p *Provider) MockEmbedder() *Embedder {
	return p.embedder
}

// MockSummarizer returns the concrete summarizer for behavior injection.
func (p *Provider) MockSummarizer() *Summarizer {
	return p.summarizer
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
