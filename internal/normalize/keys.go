// Package normalize maps loosely structured external rows onto canonical
// Employee records. Header naming in the source spreadsheets drifts freely
// (casing, accents, separators, synonyms), so every lookup goes through a
// canonical key form first.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key canonicalizes a header name: uppercase, accents stripped, separators
// (spaces, hyphens, underscores, dots) removed. "Nome Completo",
// "NOME_COMPLETO" and "nomecompleto" all collapse to "NOMECOMPLETO".
func Key(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '-', '_', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
