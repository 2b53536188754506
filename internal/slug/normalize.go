// Package slug derives unique, URL-safe identifiers for posts.
//
// Normalize is a pure transformation of a title into a candidate slug.
// Resolver turns a candidate into a slug guaranteed free at resolution
// time, using a storage-provided existence check. The posts.slug unique
// constraint remains the final arbiter under concurrency.
package slug

import (
	"strings"
	"unicode"
)

// Normalize converts a human-readable title into a URL-safe slug:
// lowercase, whitespace runs become single hyphens, everything that is
// not a Unicode letter, digit or hyphen is stripped, hyphen runs are
// collapsed and leading/trailing hyphens trimmed.
//
// Titles in non-Latin scripts (Sinhala in particular) must survive, so
// the filter is rune-based rather than ASCII-based, and combining marks
// are kept alongside letters and digits: Sinhala vowel signs and the
// virama are category Mn/Mc, not letters, and stripping them would
// mangle every Sinhala word. A title made entirely of stripped
// characters normalizes to "" and the caller is expected to supply a
// fallback base.
func Normalize(title string) string {
	lowered := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lowered))

	prevHyphen := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r), r == '-':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			b.WriteRune(r)
			prevHyphen = false
		}
	}

	return strings.Trim(b.String(), "-")
}
