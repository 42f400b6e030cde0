package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements whose boundaries become paragraph breaks in the
// extracted text, so downstream chunking can split on them.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true, "br": true,
}

// skipTags are elements whose text content is never user-visible prose.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"iframe": true, "svg": true, "template": true,
}

// htmlToText strips markup from an HTML document, returning the visible
// text (block elements separated by newlines) and the <title> content.
func htmlToText(r io.Reader) (text, title string, err error) {
	tokenizer := html.NewTokenizer(r)

	var b strings.Builder
	var titleBuf strings.Builder
	skipDepth := 0
	inTitle := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return collapseText(b.String()), strings.TrimSpace(titleBuf.String()), nil
			}
			return "", "", tokenizer.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "title" {
				inTitle = true
			}
			if skipTags[tag] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "title" {
				inTitle = false
			}
			if skipTags[tag] && skipDepth > 0 {
				skipDepth--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			t := string(tokenizer.Text())
			if inTitle {
				titleBuf.WriteString(t)
				continue
			}
			b.WriteString(t)
		}
	}
}

// collapseText normalizes extracted whitespace: runs of spaces become one
// space, runs of blank lines become one paragraph break.
func collapseText(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
