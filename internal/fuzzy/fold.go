// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Honorifics are title words that legacy registers prefix to names and
// modern identity documents omit. They are dropped before comparison.
var Honorifics = map[string]bool{
	"sardar":    true,
	"sardarni":  true,
	"shri":      true,
	"sri":       true,
	"smt":       true,
	"mr":        true,
	"mrs":       true,
	"late":      true,
	"marhoom":   true,
	"lamberdar": true,
	"haji":      true,
	"janab":     true,
}

// Transliterations collapses common romanizations of the same Urdu name
// onto one spelling.
var Transliterations = map[string]string{
	"mohd":     "muhammad",
	"md":       "muhammad",
	"mohammad": "muhammad",
	"mohammed": "muhammad",
	"muhammed": "muhammad",
	"mohamad":  "muhammad",
	"gulam":    "ghulam",
	"golam":    "ghulam",
	"abdool":   "abdul",
	"rasul":    "rasool",
	"rehman":   "rahman",
	"rahmaan":  "rahman",
	"hussein":  "hussain",
	"husain":   "hussain",
	"kumaar":   "kumar",
	"sing":     "singh",
	"chandra":  "chand",
}

// stripMarks decomposes s, drops combining marks and recomposes it, so
// "Ālam" and "Alam" compare equal. A new transformer is built per call
// because transformers carry state.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// tokens lower-cases s, strips diacritics and splits on anything that is
// not a letter or digit.
func tokens(s string) []string {
	s = strings.ToLower(stripMarks(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// FoldName returns the comparison form of a person's name: lower case,
// no diacritics or punctuation, honorifics removed and known
// transliteration variants collapsed.
func FoldName(name string) string {
	var kept []string
	for _, tok := range tokens(name) {
		if Honorifics[tok] {
			continue
		}
		if canon, ok := Transliterations[tok]; ok {
			tok = canon
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// FoldTerm returns the comparison form of a vocabulary term such as a
// land-type label. Unlike FoldName it keeps every word.
func FoldTerm(term string) string {
	return strings.Join(tokens(term), " ")
}

// DisplayName trims s, collapses internal whitespace and title-cases it.
func DisplayName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Und).String(s)
}
