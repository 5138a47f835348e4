// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/slr-engine/internal/normalize"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// providerPriority ranks sources for picking the fusion base. Unknown
// providers rank 0.
var providerPriority = map[string]int{
	"crossref":         5,
	"pubmed":           4,
	"openalex":         3,
	"semantic_scholar": 2,
	"s2":               2,
	"arxiv":            1,
}

// placeholderAbstracts lists strings some providers return instead of a
// real abstract. Compared after lowercasing and trimming.
var placeholderAbstracts = map[string]struct{}{
	"no abstract available":  {},
	"abstract not available": {},
	"no abstract":            {},
	"not available":          {},
	"n/a":                    {},
	"none":                   {},
}

// fuseRecords builds the cluster's golden record from all members. The
// highest-priority member is copied as the base, then each field is
// upgraded from the other members. Field fusion is fail-soft: a step that
// cannot produce a value leaves the base's value in place and at most
// writes a warning to w.
// Per prd003-fusion R3.1-R3.3.
func fuseRecords(members []int, records []types.Record, w io.Writer) types.Record {
	ranked := make([]int, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := records[ranked[i]], records[ranked[j]]
		pa, pb := providerPriority[strings.ToLower(a.Provider)], providerPriority[strings.ToLower(b.Provider)]
		if pa != pb {
			return pa > pb
		}
		return a.CitedByCount > b.CitedByCount
	})

	base := records[ranked[0]]
	fused := base
	fused.Authors = make([]types.Author, len(base.Authors))
	copy(fused.Authors, base.Authors)

	// Collect the remaining members in member order (not rank order);
	// identifier and year backfill take the first value found.
	rest := make([]types.Record, 0, len(members)-1)
	for _, i := range members {
		if i != ranked[0] {
			rest = append(rest, records[i])
		}
	}

	steps := []struct {
		name string
		fn   func()
	}{
		{"abstract", func() { fuseAbstract(&fused, rest) }},
		{"identifiers", func() { fuseIdentifiers(&fused, rest) }},
		{"orcids", func() { fuseORCIDs(&fused, rest) }},
		{"citations", func() { fuseCitations(&fused, rest) }},
		{"year", func() { fuseYear(&fused, rest) }},
		{"url", func() { fuseURL(&fused) }},
	}
	for _, step := range steps {
		fuseStep(w, step.name, step.fn)
	}

	return fused
}

// fuseStep runs one field-fusion step, downgrading any panic to a warning
// so a malformed member can never abort the whole clustering run.
func fuseStep(w io.Writer, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			warnf(w, "fusing %s: %v", name, r)
		}
	}()
	fn()
}

// abstractValid reports whether an abstract is usable: at least 20
// characters and not a known placeholder.
func abstractValid(abstract string) bool {
	trimmed := strings.TrimSpace(abstract)
	if len(trimmed) < 20 {
		return false
	}
	_, placeholder := placeholderAbstracts[strings.ToLower(trimmed)]
	return !placeholder
}

// fuseAbstract keeps the base abstract unless another member carries a
// valid, longer one.
func fuseAbstract(fused *types.Record, rest []types.Record) {
	best := ""
	if abstractValid(fused.Abstract) {
		best = fused.Abstract
	}
	for _, rec := range rest {
		if abstractValid(rec.Abstract) && len(rec.Abstract) > len(best) {
			best = rec.Abstract
		}
	}
	if best != "" {
		fused.Abstract = best
	}
}

// fuseIdentifiers backfills each identifier the base lacks with the first
// non-empty value among the other members, in member order.
func fuseIdentifiers(fused *types.Record, rest []types.Record) {
	for _, rec := range rest {
		ids := rec.ExternalIDs
		if fused.ExternalIDs.DOI == "" && ids.DOI != "" {
			fused.ExternalIDs.DOI = ids.DOI
		}
		if fused.ExternalIDs.ArxivID == "" && ids.ArxivID != "" {
			fused.ExternalIDs.ArxivID = ids.ArxivID
		}
		if fused.ExternalIDs.PubmedID == "" && ids.PubmedID != "" {
			fused.ExternalIDs.PubmedID = ids.PubmedID
		}
		if fused.ExternalIDs.OpenAlexID == "" && ids.OpenAlexID != "" {
			fused.ExternalIDs.OpenAlexID = ids.OpenAlexID
		}
		if fused.ExternalIDs.S2ID == "" && ids.S2ID != "" {
			fused.ExternalIDs.S2ID = ids.S2ID
		}
	}
}

// fuseORCIDs copies ORCIDs onto base authors that lack one, matching other
// members' authors by normalized family name plus first-initial, or by
// exact full name.
func fuseORCIDs(fused *types.Record, rest []types.Record) {
	for i := range fused.Authors {
		if fused.Authors[i].ORCID != "" {
			continue
		}
		for _, rec := range rest {
			if orcid := findORCID(fused.Authors[i], rec.Authors); orcid != "" {
				fused.Authors[i].ORCID = orcid
				break
			}
		}
	}
}

func findORCID(target types.Author, candidates []types.Author) string {
	for _, cand := range candidates {
		if cand.ORCID == "" {
			continue
		}
		if authorsMatch(target, cand) {
			return cand.ORCID
		}
	}
	return ""
}

// authorsMatch compares two authors by family name, disambiguating with
// the first initial of the given name when both sides have one. A full
// name match also counts.
func authorsMatch(a, b types.Author) bool {
	if strings.EqualFold(strings.TrimSpace(a.FullName()), strings.TrimSpace(b.FullName())) {
		return true
	}
	fa := strings.ToLower(strings.TrimSpace(a.FamilyName))
	fb := strings.ToLower(strings.TrimSpace(b.FamilyName))
	if fa == "" || fa != fb {
		return false
	}
	ga := strings.TrimSpace(a.GivenName)
	gb := strings.TrimSpace(b.GivenName)
	if ga == "" || gb == "" {
		return true
	}
	return strings.EqualFold(ga[:1], gb[:1])
}

// fuseCitations takes the maximum citation count across all members.
func fuseCitations(fused *types.Record, rest []types.Record) {
	for _, rec := range rest {
		if rec.CitedByCount > fused.CitedByCount {
			fused.CitedByCount = rec.CitedByCount
		}
	}
}

// fuseYear backfills an unknown year with the first known one, in member
// order.
func fuseYear(fused *types.Record, rest []types.Record) {
	if fused.Year != 0 {
		return
	}
	for _, rec := range rest {
		if rec.Year != 0 {
			fused.Year = rec.Year
			return
		}
	}
}

// fuseURL rewrites the URL to the canonical doi.org resolver form when the
// fused record has a DOI that its current URL does not reference.
func fuseURL(fused *types.Record) {
	doi := normalize.DOI(fused.ExternalIDs.DOI)
	if doi == "" {
		return
	}
	if fused.URL != "" && strings.Contains(strings.ToLower(fused.URL), doi) {
		return
	}
	fused.URL = "https://doi.org/" + doi
}

// warnf writes a non-fatal fusion diagnostic.
func warnf(w io.Writer, format string, args ...any) {
	if w != nil {
		fmt.Fprintf(w, "warning: "+format+"\n", args...)
	}
}
