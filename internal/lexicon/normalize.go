// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lexicon

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// asciiPunct is the ASCII punctuation set removed from keys and sentences.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// IsPunct reports whether r is ASCII punctuation.
func IsPunct(r rune) bool {
	return r < 0x80 && strings.ContainsRune(asciiPunct, r)
}

// StripPunct removes ASCII punctuation from s.
func StripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if IsPunct(r) {
			return -1
		}
		return r
	}, s)
}

// Key returns the normalized matching key for a gene name: NFKC form,
// lowercased, ASCII punctuation removed.
func Key(name string) string {
	return StripPunct(strings.ToLower(norm.NFKC.String(name)))
}

// SentenceWords normalizes a sentence for tagging and splits it into words.
// Punctuation is removed except '/', which becomes a word of its own.
func SentenceWords(sentence string) []string {
	var b strings.Builder
	b.Grow(len(sentence) + 8)
	for _, r := range norm.NFKC.String(sentence) {
		switch {
		case r == '/':
			b.WriteString(" / ")
		case IsPunct(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(strings.ToLower(b.String()))
}
