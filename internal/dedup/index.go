// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"sort"

	"github.com/pdiddy/slr-engine/internal/normalize"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// blockingIndex precomputes the lookup structures that restrict pairwise
// comparison to candidate pairs sharing a cheap key: exact identifier
// buckets, exact-title buckets, year buckets for the fuzzy window, and
// per-record title word sets for the shared-token pre-filter.
// Per prd001-dedup R2.6-R2.9.
type blockingIndex struct {
	// doi, arxiv, and title map a normalized key to the record indices
	// sharing it. Empty keys are never indexed.
	doi   map[string][]int
	arxiv map[string][]int
	title map[string][]int

	// year maps a publication year to its record indices. Records with an
	// unknown year (0) are excluded and only merge via exact phases.
	year map[int][]int

	// years holds the keys of year in ascending order.
	years []int

	// titles holds each record's normalized title.
	titles []string

	// words holds each record's title token set.
	words []map[string]struct{}
}

func buildBlockingIndex(records []types.Record) *blockingIndex {
	idx := &blockingIndex{
		doi:    make(map[string][]int),
		arxiv:  make(map[string][]int),
		title:  make(map[string][]int),
		year:   make(map[int][]int),
		titles: make([]string, len(records)),
		words:  make([]map[string]struct{}, len(records)),
	}

	for i, rec := range records {
		if doi := normalize.DOI(rec.ExternalIDs.DOI); doi != "" {
			idx.doi[doi] = append(idx.doi[doi], i)
		}
		if arxiv := normalize.ArxivID(rec.ExternalIDs.ArxivID); arxiv != "" {
			idx.arxiv[arxiv] = append(idx.arxiv[arxiv], i)
		}

		title := normalize.Title(rec.Title)
		idx.titles[i] = title
		if title != "" {
			idx.title[title] = append(idx.title[title], i)
		}
		idx.words[i] = normalize.Words(rec.Title)

		if rec.Year != 0 {
			idx.year[rec.Year] = append(idx.year[rec.Year], i)
		}
	}

	idx.years = make([]int, 0, len(idx.year))
	for y := range idx.year {
		idx.years = append(idx.years, y)
	}
	sort.Ints(idx.years)

	return idx
}

// sharedTokens counts tokens present in both word sets, iterating the
// smaller set.
func sharedTokens(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
