package vocabulary

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// Similarity scores how close two strings are, from 0 (unrelated) to 1 (equal
// after normalization).
//
// The score is the best of three measures over the normalized strings:
// Jaro-Winkler (good at typos near the start), normalized Levenshtein distance
// (good at single-character slips anywhere), and token containment (all words
// of the shorter string appear in the longer one, scaled by their overlap).
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	best := smetrics.JaroWinkler(na, nb, 0.7, 4)

	longest := max(len(na), len(nb))
	lev := 1 - float64(smetrics.WagnerFischer(na, nb, 1, 1, 1))/float64(longest)
	best = max(best, lev)

	best = max(best, containment(strings.Fields(na), strings.Fields(nb)))

	return min(max(best, 0), 1)
}

// normalize lowercases s, keeps letters, digits and the budget symbols, and
// collapses every other run of characters into a single space.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '$' || r == '+' {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

func containment(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	set := make(map[string]bool, len(large))
	for _, t := range large {
		set[t] = true
	}
	for _, t := range small {
		if !set[t] {
			return 0
		}
	}
	union := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		union[t] = true
	}
	for _, t := range b {
		union[t] = true
	}
	return 0.6 + 0.4*float64(len(small))/float64(len(union))
}
