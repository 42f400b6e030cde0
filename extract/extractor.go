package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
)

const (
	defaultFetchTimeout  = 20 * time.Second
	defaultMaxFetchBytes = 4 << 20 // response body cap for website fetches
	userAgent            = "inkwell/1.0"
)

// Extraction is the normalized output of any source: a single text blob,
// a human title, and provenance metadata carried through to the chunks.
type Extraction struct {
	Text       string
	Title      string
	Provenance map[string]string
}

// Extractor converts any Source variant into an Extraction.
// It is safe for concurrent use.
type Extractor struct {
	client        *http.Client
	maxFetchBytes int64
	logger        *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the client used for website fetches.
// Default is an http.Client with a 20 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithMaxFetchBytes bounds how much of a website response body is read.
func WithMaxFetchBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxFetchBytes = n
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor with the given options applied.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		client:        &http.Client{Timeout: defaultFetchTimeout},
		maxFetchBytes: defaultMaxFetchBytes,
		logger:        slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract normalizes a source into text plus provenance. Failures are
// reported as *Error with the kind set to ParseError or FetchError.
func (e *Extractor) Extract(ctx context.Context, src Source) (*Extraction, error) {
	switch s := src.(type) {
	case PDFSource:
		return e.extractPDF(s)
	case TextSource:
		return e.extractText(s)
	case WebsiteSource:
		return e.extractWebsite(ctx, s)
	default:
		return nil, fmt.Errorf("unsupported source variant %T", src)
	}
}

func (e *Extractor) extractPDF(src PDFSource) (*Extraction, error) {
	doc, err := fitz.NewFromMemory(src.Data)
	if err != nil {
		e.logger.Error("failed to open pdf", "filename", src.Filename, "err", err)
		return nil, parseError(src.Filename, err)
	}
	defer doc.Close()

	var parts []string
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			parts = append(parts, pageText)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if text == "" {
		return nil, parseError(src.Filename, errors.New("no extractable text"))
	}

	title := strings.TrimSuffix(filepath.Base(src.Filename), filepath.Ext(src.Filename))
	if title == "" || title == "." {
		title = "document"
	}

	return &Extraction{
		Text:  text,
		Title: title,
		Provenance: map[string]string{
			"filename": src.Filename,
			"pages":    fmt.Sprintf("%d", doc.NumPage()),
		},
	}, nil
}

func (e *Extractor) extractText(src TextSource) (*Extraction, error) {
	return &Extraction{
		Text:       strings.TrimSpace(src.Text),
		Title:      strings.TrimSpace(src.Title),
		Provenance: map[string]string{"origin": "pasted_text"},
	}, nil
}

func (e *Extractor) extractWebsite(ctx context.Context, src WebsiteSource) (*Extraction, error) {
	target := src.URL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fetchError(target, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("website fetch failed", "url", target, "err", err)
		return nil, fetchError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fetchError(target, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body := io.LimitReader(resp.Body, e.maxFetchBytes)
	text, title, err := htmlToText(body)
	if err != nil {
		return nil, fetchError(target, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fetchError(target, errors.New("page contained no text"))
	}

	if title == "" {
		title = src.URL.Hostname()
	}

	return &Extraction{
		Text:  text,
		Title: title,
		Provenance: map[string]string{
			"sourceUrl": target,
			"host":      src.URL.Hostname(),
		},
	}, nil
}
