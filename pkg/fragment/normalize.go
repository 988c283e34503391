package fragment

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// separators are dropped entirely from comparison keys. The set is fixed;
// adding to it changes entity identity across already-produced results.
const separators = "-_'’\"“”,.:;[](){} "

// Normalize canonicalizes a display string into a comparison key. The key
// is lower-case, canonically decomposed with all combining marks removed,
// and stripped of separator punctuation. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if strings.ContainsRune(separators, r) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
