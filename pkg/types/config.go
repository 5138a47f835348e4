// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings for components that make network
// requests (currently only the embedding client).
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "slr-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Strategy selects the deduplication variant. The set is closed; the
// Deduplicator rejects anything else at construction. Per prd001-dedup R4.1.
type Strategy string

const (
	// StrategyConservative merges on exact identifiers, exact normalized
	// titles, and high-threshold fuzzy titles within a year window.
	StrategyConservative Strategy = "conservative"

	// StrategySemantic runs the conservative pass and then merges clusters
	// whose representatives are semantically similar per an external
	// embedding service.
	StrategySemantic Strategy = "semantic"

	// StrategyHybrid is reserved and currently rejected.
	StrategyHybrid Strategy = "hybrid"
)

// Default thresholds per prd001-dedup R4.2.
const (
	DefaultFuzzyThreshold    = 97
	DefaultMaxYearGap        = 1
	DefaultSemanticThreshold = 0.92
	DefaultEmbeddingModel    = "allenai/specter2"
)

// DedupConfig holds settings for the deduplication engine.
// Per prd001-dedup R4.1-R4.4.
type DedupConfig struct {
	// Strategy selects conservative or semantic deduplication.
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// FuzzyThreshold is the minimum title similarity ratio (0-100) for a
	// fuzzy merge (default 97).
	FuzzyThreshold int `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`

	// MaxYearGap is the maximum publication-year difference for a fuzzy
	// merge (default 1).
	MaxYearGap int `json:"max_year_gap" yaml:"max_year_gap"`

	// SemanticThreshold is the minimum cosine similarity (0.0-1.0) for a
	// semantic cluster merge (default 0.92).
	SemanticThreshold float64 `json:"semantic_threshold" yaml:"semantic_threshold"`

	// EmbeddingModel names the model the embedding service should use
	// (default "allenai/specter2").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`
}

// Validate applies defaults and checks ranges. It returns an error for an
// unknown strategy and for the reserved hybrid strategy.
func (c *DedupConfig) Validate() error {
	if c.Strategy == "" {
		c.Strategy = StrategyConservative
	}
	switch c.Strategy {
	case StrategyConservative, StrategySemantic:
	case StrategyHybrid:
		return fmt.Errorf("strategy %q is reserved and not yet supported", c.Strategy)
	default:
		return fmt.Errorf("unknown deduplication strategy %q", c.Strategy)
	}

	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy_threshold %d out of range [0,100]", c.FuzzyThreshold)
	}
	if c.MaxYearGap < 0 {
		return fmt.Errorf("max_year_gap %d must be >= 0", c.MaxYearGap)
	}

	if c.SemanticThreshold == 0 {
		c.SemanticThreshold = DefaultSemanticThreshold
	}
	if c.SemanticThreshold < 0 || c.SemanticThreshold > 1 {
		return fmt.Errorf("semantic_threshold %g out of range [0,1]", c.SemanticThreshold)
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	return nil
}

// EmbeddingConfig holds settings for the external embedding service used by
// the semantic strategy. Per prd005-semantic R5.1-R5.3.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the embedding service URL (POST, JSON body).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey authenticates against the embedding service, if required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ResultsConfig holds settings for the results store.
// Per prd004-results R1.1.
type ResultsConfig struct {
	// ResultsDir is the base directory for stored runs (contains dedup.db).
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
