// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fuzzy

import "strings"

// digraphs are rewritten before vowels are dropped. Order matters: longer
// and more specific patterns come first.
var digraphs = strings.NewReplacer(
	"ph", "f",
	"kh", "k",
	"gh", "g",
	"bh", "b",
	"dh", "d",
	"th", "t",
	"sh", "s",
	"ck", "k",
	"q", "k",
	"w", "v",
	"z", "j",
)

// PhoneticKey reduces a folded name to a consonant skeleton per word:
// the first letter is kept, later vowels (and y) are dropped, aspirated
// digraphs are flattened and repeated letters collapse. "viijay kmar" and
// "vijay kumar" both become "vj kmr".
func PhoneticKey(folded string) string {
	words := strings.Fields(folded)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if k := wordKey(w); k != "" {
			out = append(out, k)
		}
	}
	return strings.Join(out, " ")
}

func wordKey(w string) string {
	rs := []rune(digraphs.Replace(collapseRepeats(w)))
	if len(rs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteRune(rs[0])
	for _, r := range rs[1:] {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y', 'h':
			continue
		}
		b.WriteRune(r)
	}
	return collapseRepeats(b.String())
}

func collapseRepeats(s string) string {
	var b strings.Builder
	var last rune = -1
	for _, r := range s {
		if r == last {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return b.String()
}
