package core

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lastStamp holds the millisecond timestamp of the most recently issued
// collection id. Ids bump past it so two ingestions in the same millisecond
// still receive distinct ids.
var lastStamp atomic.Int64

// Slugify renders a human title as a lowercase, identifier-safe slug.
// Accented characters are folded to their ASCII base form and runs of
// non-alphanumeric characters collapse to a single underscore.
func Slugify(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastUnderscore := true // leading separators are dropped
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// NewCollectionID generates a globally unique collection identifier of the
// form "{sourceType}_{slug}_{unixMillis}". The slug keeps ids legible, the
// source type prefix partitions the namespace for downstream filtering, and
// the millisecond component is strictly increasing within the process, so
// identically titled sources never collide.
func NewCollectionID(st SourceType, title string) string {
	return fmt.Sprintf("%s_%s_%d", st, Slugify(title), nextStamp())
}

// nextStamp returns the current unix millisecond time, bumped past any
// previously issued stamp.
func nextStamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := lastStamp.Load()
		if now <= last {
			now = last + 1
		}
		if lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}
