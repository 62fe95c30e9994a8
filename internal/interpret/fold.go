package interpret

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases text, strips diacritics, and collapses whitespace so rules
// can match plain ASCII patterns ("Mär" -> "mar", "Ｍａｐ" -> "map").
func fold(s string) string {
	// Transformers carry state; build a fresh chain per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		switch r {
		case '–', '—', '‐', '−':
			return '-'
		case '’', '‘':
			return '\''
		}
		return r
	}, out)
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
