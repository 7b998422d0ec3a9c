// Package textnorm folds user text for keyword matching: lowercase, with
// combining accents removed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, decomposes it to NFD and drops every nonspacing
// mark (category Mn). The result is idempotent: Normalize(Normalize(s)) ==
// Normalize(s). Invalid UTF-8 is returned lowercased but otherwise intact.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
