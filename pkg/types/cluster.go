// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Cluster is one group of records identified as the same publication.
// Per prd003-fusion R3.1: the representative is a fresh fused record, not
// an alias of any member; Members holds indices into the filtered input
// record slice.
type Cluster struct {
	// ID is the dense cluster identifier, assigned in first-seen root
	// order during assembly.
	ID int `json:"cluster_id" yaml:"cluster_id"`

	// Members lists the indices of the filtered input records in this
	// cluster, in ascending order.
	Members []int `json:"members" yaml:"members"`

	// Representative is the fused golden record for the cluster.
	Representative Record `json:"representative" yaml:"representative"`

	// DOIs aggregates the unique normalized DOIs of all members, in
	// first-seen order.
	DOIs []string `json:"dois,omitempty" yaml:"dois,omitempty"`

	// ArxivIDs aggregates the unique normalized arXiv IDs of all members,
	// in first-seen order.
	ArxivIDs []string `json:"arxiv_ids,omitempty" yaml:"arxiv_ids,omitempty"`

	// ProviderCounts counts members per source provider.
	ProviderCounts map[string]int `json:"provider_counts,omitempty" yaml:"provider_counts,omitempty"`

	// Confidence is 1.0 when the cluster is backed by at least one DOI or
	// arXiv ID, 0.95 for fuzzy-only matches. Per prd003-fusion R3.4.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Size returns the number of member records.
func (c Cluster) Size() int {
	return len(c.Members)
}

// DedupStats summarizes one deduplication run.
// Per prd001-dedup R5.1-R5.3.
type DedupStats struct {
	// InputCount is the number of records supplied before filtering.
	InputCount int `json:"input_count" yaml:"input_count"`

	// RemovedByFilter is the number of records the quality filter dropped.
	RemovedByFilter int `json:"removed_by_filter" yaml:"removed_by_filter"`

	// ClusterCount is the number of output clusters.
	ClusterCount int `json:"cluster_count" yaml:"cluster_count"`

	// DuplicateCount is filtered records minus clusters.
	DuplicateCount int `json:"duplicate_count" yaml:"duplicate_count"`

	// DuplicateRate is DuplicateCount over filtered records (0 when empty).
	DuplicateRate float64 `json:"duplicate_rate" yaml:"duplicate_rate"`

	// AvgClusterSize is the mean cluster size (0 when no clusters).
	AvgClusterSize float64 `json:"avg_cluster_size" yaml:"avg_cluster_size"`

	// MaxClusterSize is the largest cluster size.
	MaxClusterSize int `json:"max_cluster_size" yaml:"max_cluster_size"`

	// ProviderCounts totals member records per provider across clusters.
	ProviderCounts map[string]int `json:"provider_counts,omitempty" yaml:"provider_counts,omitempty"`

	// SizeDistribution maps cluster size to the number of clusters of
	// that size.
	SizeDistribution map[int]int `json:"size_distribution,omitempty" yaml:"size_distribution,omitempty"`
}
