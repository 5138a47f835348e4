// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import "math"

// matcher drives union-find merges over the blocking index in three ordered
// phases: exact identifier buckets, exact normalized-title buckets, and
// windowed fuzzy title comparison.
// Per prd001-dedup R3.1-R3.6.
type matcher struct {
	idx            *blockingIndex
	uf             *unionFind
	fuzzyThreshold int
	maxYearGap     int
}

// matchExact merges every multi-member DOI, arXiv, and normalized-title
// bucket. Unioning each member with the bucket's first member merges the
// whole bucket transitively.
func (m *matcher) matchExact() {
	for _, bucket := range m.idx.doi {
		mergeBucket(m.uf, bucket)
	}
	for _, bucket := range m.idx.arxiv {
		mergeBucket(m.uf, bucket)
	}
	for _, bucket := range m.idx.title {
		mergeBucket(m.uf, bucket)
	}
}

func mergeBucket(uf *unionFind, bucket []int) {
	for _, i := range bucket[1:] {
		uf.union(bucket[0], i)
	}
}

// matchFuzzy compares titles of records whose years fall within maxYearGap.
// Years are processed in ascending order; each year acts as the lower bound
// of its window exactly once, so every in-window pair is visited exactly
// once: same-year pairs when their year is the bound, cross-year pairs when
// the earlier year is. perYear is called after each processed year for
// progress reporting and may be nil.
func (m *matcher) matchFuzzy(perYear func(year int, done, total int)) {
	for n, y := range m.idx.years {
		bucket := m.idx.year[y]

		// Same-year pairs.
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				m.tryFuzzyMerge(bucket[i], bucket[j])
			}
		}

		// Cross-year pairs against later years inside the window.
		for gap := 1; gap <= m.maxYearGap; gap++ {
			for _, a := range bucket {
				for _, b := range m.idx.year[y+gap] {
					m.tryFuzzyMerge(a, b)
				}
			}
		}

		if perYear != nil {
			perYear(y, n+1, len(m.idx.years))
		}
	}
}

// tryFuzzyMerge unions a and b when their titles are similar enough. The
// shared-token pre-filter rejects most pairs before the quadratic edit
// distance runs.
func (m *matcher) tryFuzzyMerge(a, b int) {
	if m.uf.sameSet(a, b) {
		return
	}
	wa, wb := m.idx.words[a], m.idx.words[b]
	if len(wa) == 0 || len(wb) == 0 {
		return
	}
	if sharedTokens(wa, wb) < 2 {
		return
	}
	if similarityRatio(m.idx.titles[a], m.idx.titles[b]) >= m.fuzzyThreshold {
		m.uf.union(a, b)
	}
}

// similarityRatio returns a Levenshtein-based similarity between two
// strings on a 0-100 scale: 100 for identical strings, 0 for strings with
// nothing in common.
func similarityRatio(a, b string) int {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein(ra, rb)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// levenshtein computes the edit distance between two rune slices with a
// two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
