package mock

import (
	"context"
	"fmt"
	"sync"
)

// Summarizer is a test double for ai.Summarizer.
type Summarizer struct {
	// SummarizeFunc is called by Summarize if set. If nil, a deterministic
	// description derived from the title and passage count is returned.
	SummarizeFunc func(ctx context.Context, title string, passages []string) (string, error)

	mu        sync.Mutex
	callCount int
}

// NewSummarizer creates a mock summarizer with default deterministic
// behavior. Returns the concrete type so tests can inject failures.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns the injected behavior's result, or a deterministic
// placeholder description.
func (m *Summarizer) Summarize(ctx context.Context, title string, passages []string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, title, passages)
	}

	return fmt.Sprintf("Mock summary of %q built from %d passages.", title, len(passages)), nil
}

// CallCount returns the number of times Summarize was called.
func (m *Summarizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *Summarizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.SummarizeFunc = nil
}
