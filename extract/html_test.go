package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText(t *testing.T) {
	t.Run("block elements become paragraph breaks", func(t *testing.T) {
		text, _, err := htmlToText(strings.NewReader(
			"<html><body><p>one</p><p>two</p><div>three</div></body></html>"))
		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\nthree", text)
	})

	t.Run("inline whitespace collapses", func(t *testing.T) {
		text, _, err := htmlToText(strings.NewReader(
			"<p>spaced   out\t text</p>"))
		require.NoError(t, err)
		assert.Equal(t, "spaced out text", text)
	})

	t.Run("nested skip tags are honored", func(t *testing.T) {
		text, _, err := htmlToText(strings.NewReader(
			"<body><p>keep</p><script>drop();<!-- nope --></script><style>.x{}</style></body>"))
		require.NoError(t, err)
		assert.Equal(t, "keep", text)
	})

	t.Run("title is captured separately", func(t *testing.T) {
		text, title, err := htmlToText(strings.NewReader(
			"<head><title>  My Page </title></head><body><p>body text</p></body>"))
		require.NoError(t, err)
		assert.Equal(t, "My Page", title)
		assert.Equal(t, "body text", text)
		assert.NotContains(t, text, "My Page")
	})
}
