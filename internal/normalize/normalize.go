// Package normalize produces the comparison key used to index and match
// free-text warehouse names. The key function is pure and stable: it feeds
// both the catalog lookup indexes and the movement fingerprints, so the same
// input must always yield the same output.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key canonicalizes raw text into a comparison key: diacritics stripped,
// lower-cased, internal whitespace collapsed to single spaces. Empty input
// yields the empty string.
func Key(raw string) string {
	if raw == "" {
		return ""
	}

	folded, _, err := transform.String(foldTransformer, raw)
	if err != nil {
		// Malformed UTF-8 only; fall back to the raw bytes so the key
		// is still deterministic for the same input.
		folded = raw
	}

	lowered := strings.ToLower(folded)
	return strings.Join(strings.Fields(lowered), " ")
}
