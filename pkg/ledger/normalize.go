package ledger

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldName normalizes a name for comparison: decompose, strip combining
// marks, trim and lowercase. Applied at both write time (duplicate checks)
// and read time (tithe category resolution) so "Dízimo", "dizimo" and
// " DÍZIMO " all collide.
func FoldName(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
