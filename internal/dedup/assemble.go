// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"io"

	"github.com/pdiddy/slr-engine/internal/normalize"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// assembleClusters partitions the union-find forest into clusters. Cluster
// ids are assigned densely, in the order roots are first encountered during
// a left-to-right scan, so the assignment is deterministic for a fixed
// input order and union history. Member lists come out in ascending index
// order as a consequence of the same scan.
// Per prd001-dedup R3.7.
func assembleClusters(records []types.Record, uf *unionFind, w io.Writer) []types.Cluster {
	rootToCluster := make(map[int]int)
	var groups [][]int

	for i := range records {
		root := uf.find(i)
		cid, ok := rootToCluster[root]
		if !ok {
			cid = len(groups)
			rootToCluster[root] = cid
			groups = append(groups, nil)
		}
		groups[cid] = append(groups[cid], i)
	}

	clusters := make([]types.Cluster, len(groups))
	for cid, members := range groups {
		clusters[cid] = buildCluster(cid, members, records, w)
	}
	return clusters
}

// buildCluster aggregates identifiers and provider counts for one member
// group and fuses its golden record.
func buildCluster(id int, members []int, records []types.Record, w io.Writer) types.Cluster {
	c := types.Cluster{
		ID:             id,
		Members:        members,
		ProviderCounts: make(map[string]int),
	}

	seenDOI := make(map[string]struct{})
	seenArxiv := make(map[string]struct{})

	for _, i := range members {
		rec := records[i]
		if doi := normalize.DOI(rec.ExternalIDs.DOI); doi != "" {
			if _, ok := seenDOI[doi]; !ok {
				seenDOI[doi] = struct{}{}
				c.DOIs = append(c.DOIs, doi)
			}
		}
		if arxiv := normalize.ArxivID(rec.ExternalIDs.ArxivID); arxiv != "" {
			if _, ok := seenArxiv[arxiv]; !ok {
				seenArxiv[arxiv] = struct{}{}
				c.ArxivIDs = append(c.ArxivIDs, arxiv)
			}
		}
		c.ProviderCounts[rec.Provider]++
	}

	if len(c.DOIs) > 0 || len(c.ArxivIDs) > 0 {
		c.Confidence = 1.0
	} else {
		c.Confidence = 0.95
	}

	c.Representative = fuseRecords(members, records, w)
	return c
}

// computeStats derives run statistics from the cluster set.
// Per prd001-dedup R5.1-R5.3.
func computeStats(inputCount, removed int, clusters []types.Cluster) types.DedupStats {
	stats := types.DedupStats{
		InputCount:       inputCount,
		RemovedByFilter:  removed,
		ClusterCount:     len(clusters),
		ProviderCounts:   make(map[string]int),
		SizeDistribution: make(map[int]int),
	}

	total := 0
	for _, c := range clusters {
		size := c.Size()
		total += size
		stats.SizeDistribution[size]++
		if size > stats.MaxClusterSize {
			stats.MaxClusterSize = size
		}
		for provider, n := range c.ProviderCounts {
			stats.ProviderCounts[provider] += n
		}
	}

	stats.DuplicateCount = total - len(clusters)
	if total > 0 {
		stats.DuplicateRate = float64(stats.DuplicateCount) / float64(total)
	}
	if len(clusters) > 0 {
		stats.AvgClusterSize = float64(total) / float64(len(clusters))
	}
	return stats
}
