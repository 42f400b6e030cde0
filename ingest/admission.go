package ingest

import "unicode/utf8"

// Default admission thresholds.
const (
	DefaultMaxFileBytes = 8 << 20
	DefaultMaxTextChars = 100_000
	DefaultMinTextChars = 10
)

// Policy holds the admission thresholds checked before any expensive work.
// Website sources are not size-checked here; the extractor bounds its own
// fetch.
type Policy struct {
	MaxFileBytes int64
	MaxTextChars int
	MinTextChars int
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MaxFileBytes: DefaultMaxFileBytes,
		MaxTextChars: DefaultMaxTextChars,
		MinTextChars: DefaultMinTextChars,
	}
}

// CheckFile admits or rejects an uploaded file by byte size.
func (p Policy) CheckFile(size int64) error {
	if size <= 0 {
		return newValidationError(ReasonEmptyInput, "file is empty")
	}
	if p.MaxFileBytes > 0 && size > p.MaxFileBytes {
		return newValidationError(ReasonFileTooLarge,
			"file is %d bytes, limit is %d", size, p.MaxFileBytes)
	}
	return nil
}

// CheckText admits or rejects raw text by character count. Counts runes,
// not bytes, so multibyte scripts are not penalized.
func (p Policy) CheckText(text string) error {
	length := utf8.RuneCountInString(text)
	if length == 0 {
		return newValidationError(ReasonEmptyInput, "text is empty")
	}
	if p.MinTextChars > 0 && length < p.MinTextChars {
		return newValidationError(ReasonTextTooShort,
			"text is %d characters, minimum is %d", length, p.MinTextChars)
	}
	if p.MaxTextChars > 0 && length > p.MaxTextChars {
		return newValidationError(ReasonTextTooLong,
			"text is %d characters, limit is %d", length, p.MaxTextChars)
	}
	return nil
}
