package transform

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKD Unicode decomposition, strips diacritics (Unicode
// nonspacing marks produced by that decomposition), lowercases, collapses
// whitespace runs to a single space, and trims leading/trailing whitespace.
//
// No example in the retrieved pack performs Unicode normalization; this
// adopts golang.org/x/text/unicode/norm, the standard ecosystem library for
// NFKD, rather than hand-rolling decomposition tables.
func Normalize(s string) string {
	decomposed := norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return collapseWhitespace(strings.TrimSpace(b.String()))
}

// collapseWhitespace reduces every run of whitespace to a single space.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// CharacterFilter removes every code point present in chars from s.
func CharacterFilter(s, chars string) string {
	if chars == "" {
		return s
	}
	drop := make(map[rune]struct{}, len(chars))
	for _, r := range chars {
		drop[r] = struct{}{}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, ok := drop[r]; ok {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
