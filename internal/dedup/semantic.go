// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/slr-engine/pkg/types"
)

// semanticMerge further merges conservative clusters whose representatives
// are semantically similar. It embeds each representative's title and
// abstract through the external oracle, computes pairwise cosine
// similarity, and unions clusters at or above the configured threshold.
// Merged clusters are re-assembled and re-fused from their combined
// members. Any oracle failure aborts the pass.
// Per prd005-semantic R1-R4.
func (d *Deduplicator) semanticMerge(ctx context.Context, res Result) (Result, error) {
	if len(res.Clusters) < 2 {
		return res, nil
	}

	texts := make([]string, len(res.Clusters))
	for i, c := range res.Clusters {
		texts[i] = strings.TrimSpace(c.Representative.Title + " " + c.Representative.Abstract)
	}

	embeddings, err := d.embedder.Embed(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embedding %d representatives: %w", len(texts), err)
	}
	if len(embeddings) != len(texts) {
		return Result{}, fmt.Errorf("embedding service returned %d vectors for %d texts", len(embeddings), len(texts))
	}

	uf := newUnionFind(len(res.Clusters))
	for i := 0; i < len(res.Clusters); i++ {
		for j := i + 1; j < len(res.Clusters); j++ {
			if uf.sameSet(i, j) {
				continue
			}
			if cosineSimilarity(embeddings[i], embeddings[j]) >= d.cfg.SemanticThreshold {
				uf.union(i, j)
			}
		}
	}

	// Regroup record indices under the merged roots and rebuild each
	// cluster, so identifier aggregates, confidence, and the golden record
	// reflect the combined membership.
	rootToGroup := make(map[int]int)
	var groups [][]int
	for i := range res.Clusters {
		root := uf.find(i)
		gid, ok := rootToGroup[root]
		if !ok {
			gid = len(groups)
			rootToGroup[root] = gid
			groups = append(groups, nil)
		}
		groups[gid] = append(groups[gid], res.Clusters[i].Members...)
	}

	clusters := make([]types.Cluster, len(groups))
	for gid, members := range groups {
		sort.Ints(members)
		clusters[gid] = buildCluster(gid, members, res.Records, d.w)
	}

	stats := computeStats(res.Stats.InputCount, res.Stats.RemovedByFilter, clusters)
	return Result{Clusters: clusters, Records: res.Records, Stats: stats}, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors, or
// 0 for mismatched or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
