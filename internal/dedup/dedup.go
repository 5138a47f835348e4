// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup identifies bibliographic records that describe the same
// publication and merges them into canonical clusters: quality filtering,
// exact-identifier and exact-title blocking, windowed fuzzy title matching
// over a union-find forest, and golden-record fusion.
// Implements: prd001-dedup (R1-R5), prd002-quality (R1-R2),
//
//	prd003-fusion (R1-R3), prd005-semantic (R1-R4);
//	docs/ARCHITECTURE § Deduplication.
package dedup

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/slr-engine/pkg/types"
)

// ProgressFunc receives observability checkpoints during a run. It may be
// nil; percent is monotonically non-decreasing and is not guaranteed to
// reach 100 before the final return. Per prd001-dedup R5.4.
type ProgressFunc func(message string, percent int)

// Embedder is the external similarity oracle for the semantic strategy.
// Embed returns one vector per input text, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Result holds the clusters of one deduplication run. Cluster member
// indices refer to Records, the post-filter input slice.
type Result struct {
	Clusters []types.Cluster
	Records  []types.Record
	Stats    types.DedupStats
}

// RepresentativeRecords returns one fused record per cluster, in cluster
// order.
func (r Result) RepresentativeRecords() []types.Record {
	reps := make([]types.Record, len(r.Clusters))
	for i, c := range r.Clusters {
		reps[i] = c.Representative
	}
	return reps
}

// Deduplicator runs the configured strategy over a record batch. It is
// stateless between invocations; each Deduplicate call owns its own
// union-find forest, so independent invocations may run concurrently.
type Deduplicator struct {
	cfg      types.DedupConfig
	embedder Embedder
	w        io.Writer
}

// New validates the configuration and builds a Deduplicator. The strategy
// set is closed and dispatched here, not per call: hybrid is rejected as
// reserved, and the semantic strategy requires a non-nil embedder up front
// so a missing dependency fails fast rather than mid-run. Diagnostics go
// to w; pass nil to discard them.
func New(cfg types.DedupConfig, embedder Embedder, w io.Writer) (*Deduplicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Strategy == types.StrategySemantic && embedder == nil {
		return nil, fmt.Errorf("strategy %q requires an embedding client", cfg.Strategy)
	}
	if w == nil {
		w = io.Discard
	}
	return &Deduplicator{cfg: cfg, embedder: embedder, w: w}, nil
}

// Deduplicate clusters records. Input records are never mutated; the result
// is a fresh structure. The conservative pass is a pure synchronous
// computation; only the semantic pass performs I/O, and it fails closed:
// an embedding error surfaces as an error, never as conservative output
// mislabeled semantic.
func (d *Deduplicator) Deduplicate(ctx context.Context, records []types.Record, criteria map[string]types.QualityCriterion, progress ProgressFunc) (Result, error) {
	res := d.conservative(records, criteria, progress)

	if d.cfg.Strategy == types.StrategySemantic {
		report(progress, "embedding cluster representatives", 92)
		merged, err := d.semanticMerge(ctx, res)
		if err != nil {
			return Result{}, fmt.Errorf("semantic merge: %w", err)
		}
		res = merged
		report(progress, "semantic merge complete", 98)
	}

	report(progress, "done", 100)
	return res, nil
}

// conservative runs the three-phase matching pipeline and assembles the
// clusters. It reports progress up to 90 so the semantic pass, when
// enabled, can continue the scale monotonically.
func (d *Deduplicator) conservative(records []types.Record, criteria map[string]types.QualityCriterion, progress ProgressFunc) Result {
	report(progress, "filtering records", 0)
	filtered, removed := applyQualityFilter(records, criteria)

	report(progress, "building blocking index", 10)
	idx := buildBlockingIndex(filtered)
	uf := newUnionFind(len(filtered))

	m := &matcher{
		idx:            idx,
		uf:             uf,
		fuzzyThreshold: d.cfg.FuzzyThreshold,
		maxYearGap:     d.cfg.MaxYearGap,
	}

	m.matchExact()
	report(progress, "exact identifier and title matching complete", 30)

	m.matchFuzzy(func(year, done, total int) {
		report(progress, fmt.Sprintf("fuzzy matched year %d", year), 30+50*done/total)
	})

	report(progress, "assembling clusters", 85)
	clusters := assembleClusters(filtered, uf, d.w)
	stats := computeStats(len(records), removed, clusters)
	report(progress, "clustering complete", 90)

	return Result{Clusters: clusters, Records: filtered, Stats: stats}
}

func report(progress ProgressFunc, message string, percent int) {
	if progress != nil {
		progress(message, percent)
	}
}
