// Package chunk splits normalized source text into ordered, bounded,
// overlapping passages for embedding. Splitting prefers paragraph and
// sentence boundaries within a tolerance window before hard-cutting.
package chunk

import (
	"errors"
	"strings"
)

// Configuration errors
var (
	// ErrInvalidMaxChars indicates a non-positive chunk size.
	ErrInvalidMaxChars = errors.New("max chunk chars must be positive")

	// ErrOverlapTooLarge indicates overlap >= max chunk size.
	ErrOverlapTooLarge = errors.New("overlap must be smaller than max chunk chars")

	// ErrNegativeOverlap indicates a negative overlap.
	ErrNegativeOverlap = errors.New("overlap cannot be negative")
)

// boundaryWindowDivisor controls how far back from the hard limit a chunk
// may end to land on a paragraph or sentence boundary (maxChars / divisor).
const boundaryWindowDivisor = 4

// Chunker splits text into passages of at most maxChars characters, each
// passage after the first overlapping the previous by overlap characters.
// A Chunker is stateless and safe for concurrent use.
type Chunker struct {
	maxChars int
	overlap  int
}

// New creates a Chunker. overlap must be non-negative and strictly smaller
// than maxChars.
func New(maxChars, overlap int) (*Chunker, error) {
	if maxChars <= 0 {
		return nil, ErrInvalidMaxChars
	}
	if overlap < 0 {
		return nil, ErrNegativeOverlap
	}
	if overlap >= maxChars {
		return nil, ErrOverlapTooLarge
	}
	return &Chunker{maxChars: maxChars, overlap: overlap}, nil
}

// Split breaks text into ordered passages. Any non-empty input produces at
// least one passage; empty or whitespace-only input produces none.
func (c *Chunker) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var passages []string
	start := 0
	for start < len(runes) {
		end := start + c.maxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.cutPoint(runes, start, end)
		}

		passage := strings.TrimSpace(string(runes[start:end]))
		if passage != "" {
			passages = append(passages, passage)
		}

		if end == len(runes) {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Boundary preference plus overlap would stall; force progress.
			next = end
		}
		start = next
	}

	if len(passages) == 0 {
		// Input was non-empty but every window trimmed to nothing; keep the
		// whole trimmed text as a single passage.
		passages = append(passages, string(runes))
	}

	return passages
}

// cutPoint picks where to end a passage that would otherwise be cut at
// limit. It searches backwards within the tolerance window for a paragraph
// break, then a sentence end, then any whitespace, before accepting the
// hard cut.
func (c *Chunker) cutPoint(runes []rune, start, limit int) int {
	window := c.maxChars / boundaryWindowDivisor
	floor := limit - window
	if floor < start+1 {
		floor = start + 1
	}

	// Paragraph boundary: cut after a newline.
	for i := limit - 1; i >= floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}

	// Sentence boundary: cut after terminal punctuation followed by space.
	for i := limit - 1; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && runes[i] == ' ' {
			return i + 1
		}
	}

	// Whitespace boundary.
	for i := limit - 1; i >= floor; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
