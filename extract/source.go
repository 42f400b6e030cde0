package extract

import (
	"net/url"

	"github.com/inkwell-ai/inkwell/core"
)

// Source is the closed set of ingestible source variants. Extraction
// dispatches over the concrete types with an exhaustive switch, so adding
// a new source type is a compile-time-visible change.
type Source interface {
	Type() core.SourceType
	sealed()
}

// PDFSource is an uploaded PDF document held in memory.
type PDFSource struct {
	Data     []byte
	Filename string
}

func (PDFSource) Type() core.SourceType { return core.SourceTypePDF }
func (PDFSource) sealed()               {}

// TextSource is raw pasted text with a caller-supplied title.
type TextSource struct {
	Text  string
	Title string
}

func (TextSource) Type() core.SourceType { return core.SourceTypeText }
func (TextSource) sealed()               {}

// WebsiteSource is a web page addressed by an absolute http(s) URL.
// Construct it with NewWebsiteSource so the URL is validated up front.
type WebsiteSource struct {
	URL *url.URL
}

func (WebsiteSource) Type() core.SourceType { return core.SourceTypeWebsite }
func (WebsiteSource) sealed()               {}

// NewWebsiteSource parses and validates rawURL. The URL must be absolute
// and use the http or https scheme; anything else is rejected before any
// network activity.
func NewWebsiteSource(rawURL string) (WebsiteSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return WebsiteSource{}, ErrInvalidURL
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return WebsiteSource{}, ErrInvalidURL
	}
	return WebsiteSource{URL: u}, nil
}
