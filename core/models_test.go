package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceTypeString(t *testing.T) {
	assert.Equal(t, "pdf", SourceTypePDF.String())
	assert.Equal(t, "text", SourceTypeText.String())
	assert.Equal(t, "website", SourceTypeWebsite.String())
	assert.Equal(t, "unknown", SourceType(99).String())
}

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Fingerprint("hello world"), Fingerprint("hello world"))
	})

	t.Run("distinct content yields distinct fingerprints", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint("hello world"), Fingerprint("hello worlds"))
	})

	t.Run("empty input is stable", func(t *testing.T) {
		assert.Equal(t, Fingerprint(""), Fingerprint(""))
	})
}
