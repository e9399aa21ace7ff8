package textindex

import (
	"math"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	prefixWeight = 0.375
	fuzzyWeight  = 0.45
	maxFuzzy     = 6
)

// vocabulary is the sorted set of every indexed term. byLen holds the same
// terms bucketed by rune count, each bucket sorted, so fuzzy lookups only
// visit terms whose length is within the allowed edit distance.
type vocabulary struct {
	terms []string
	byLen map[int][]string
}

// merge adds the given new terms, which must not already be present.
func (v *vocabulary) merge(added []string) {
	if len(added) == 0 {
		return
	}
	slices.Sort(added)
	v.terms = mergeSorted(v.terms, added)

	buckets := make(map[int][]string)
	for _, term := range added {
		n := utf8.RuneCountInString(term)
		buckets[n] = append(buckets[n], term)
	}
	if v.byLen == nil {
		v.byLen = make(map[int][]string, len(buckets))
	}
	for n, terms := range buckets {
		v.byLen[n] = mergeSorted(v.byLen[n], terms)
	}
}

// mergeSorted merges two sorted slices into a new sorted slice.
func mergeSorted(a, b []string) []string {
	merged := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

// match is an index term reached from a query term, with its weight.
type match struct {
	term   string
	weight float64
}

// expand returns the exact, prefix and fuzzy matches for q.
func (v *vocabulary) expand(q string, prefix bool, fuzzy float64) []match {
	seen := make(map[string]bool)
	var out []match

	start := sort.SearchStrings(v.terms, q)
	if start < len(v.terms) && v.terms[start] == q {
		out = append(out, match{term: q, weight: 1})
		seen[q] = true
	}

	qlen := utf8.RuneCountInString(q)

	if prefix {
		for i := start; i < len(v.terms) && strings.HasPrefix(v.terms[i], q); i++ {
			term := v.terms[i]
			if seen[term] {
				continue
			}
			dist := float64(utf8.RuneCountInString(term) - qlen)
			out = append(out, match{term: term, weight: prefixWeight * float64(qlen) / (float64(qlen) + 0.3*dist)})
			seen[term] = true
		}
	}

	maxDist := fuzzyDistance(qlen, fuzzy)
	if maxDist == 0 {
		return out
	}
	for n := max(1, qlen-maxDist); n <= qlen+maxDist; n++ {
		for _, term := range v.byLen[n] {
			if seen[term] {
				continue
			}
			dist := levenshtein.ComputeDistance(q, term)
			if dist == 0 || dist > maxDist {
				continue
			}
			out = append(out, match{term: term, weight: fuzzyWeight * float64(qlen) / float64(qlen+dist)})
			seen[term] = true
		}
	}
	return out
}

// fuzzyDistance turns a fractional fuzziness into an edit distance for a
// term of n runes. Values >= 1 are absolute distances.
func fuzzyDistance(n int, fuzzy float64) int {
	if fuzzy <= 0 {
		return 0
	}
	if fuzzy >= 1 {
		return min(int(fuzzy), maxFuzzy)
	}
	return min(int(math.Round(float64(n)*fuzzy)), maxFuzzy)
}
