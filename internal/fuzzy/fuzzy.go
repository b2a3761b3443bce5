// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fuzzy provides spelling-tolerant comparison of names and
// vocabulary terms transliterated from Urdu records.
//
// The Matcher interface is the pluggable strategy: the normalizer uses it
// for land-type lookup and the identity rule uses it to compare owner
// names, so the algorithm can be swapped without touching either.
package fuzzy

import "unicode/utf8"

// Comparison is the result of comparing two strings.
type Comparison struct {
	// Distance is the number of single-rune edits between the strings.
	Distance int

	// Similarity is 1 - Distance/len(longer), in [0, 1].
	Similarity float64
}

// Matcher compares two already-folded strings.
type Matcher interface {
	Compare(a, b string) Comparison
}

// Levenshtein is the default Matcher, using rune-level edit distance.
type Levenshtein struct{}

// Compare implements Matcher.
func (Levenshtein) Compare(a, b string) Comparison {
	d := Distance(a, b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return Comparison{Distance: 0, Similarity: 1}
	}
	return Comparison{Distance: d, Similarity: 1 - float64(d)/float64(longest)}
}

// Distance returns the Levenshtein distance between a and b, counted in runes.
// It keeps two rows of the matrix, so space is O(min(len(a), len(b))).
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Best returns the candidate closest to target and its comparison. ok is
// false when candidates is empty. Ties keep the earliest candidate.
func Best(m Matcher, target string, candidates []string) (best string, cmp Comparison, ok bool) {
	for _, c := range candidates {
		got := m.Compare(target, c)
		if !ok || got.Distance < cmp.Distance {
			best, cmp, ok = c, got, true
		}
	}
	return best, cmp, ok
}
