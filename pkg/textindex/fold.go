package textindex

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips combining diacritical marks, so "Bjørgvin"
// and "BJØRGVIN" fold alike and "Håkon" folds to "hakon". Letters that do not
// decompose (ø, æ) are kept.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain keeps state, build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// FoldPhrase folds s and collapses whitespace runs into single spaces, the
// form used for phrase containment checks.
func FoldPhrase(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}

// Tokenize folds s and splits it into terms on every rune that is neither a
// letter nor a digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
