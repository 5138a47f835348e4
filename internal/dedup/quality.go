// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"strings"

	"github.com/pdiddy/slr-engine/pkg/types"
)

// applyQualityFilter drops records that fail their originating query's
// include/exclude keyword criteria. Records without a query ID, or whose
// query ID has no criteria, always pass. Exclusion wins over inclusion.
// Output order matches input order.
// Per prd002-quality R2.1-R2.4.
func applyQualityFilter(records []types.Record, criteria map[string]types.QualityCriterion) ([]types.Record, int) {
	if len(criteria) == 0 {
		return records, 0
	}

	kept := make([]types.Record, 0, len(records))
	removed := 0

	for _, rec := range records {
		if rec.QueryID == "" {
			kept = append(kept, rec)
			continue
		}
		crit, ok := criteria[rec.QueryID]
		if !ok {
			kept = append(kept, rec)
			continue
		}
		if passesCriterion(rec, crit) {
			kept = append(kept, rec)
		} else {
			removed++
		}
	}

	return kept, removed
}

// passesCriterion checks one record against one criterion. Keywords match
// case-insensitively as substrings of title+abstract+venue.
func passesCriterion(rec types.Record, crit types.QualityCriterion) bool {
	searchable := strings.ToLower(rec.Title + " " + rec.Abstract + " " + rec.Venue)

	for _, kw := range crit.ExcludeAny {
		if kw != "" && strings.Contains(searchable, strings.ToLower(kw)) {
			return false
		}
	}

	if len(crit.IncludeAny) > 0 {
		for _, kw := range crit.IncludeAny {
			if kw != "" && strings.Contains(searchable, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	}

	return true
}
