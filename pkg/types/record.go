// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the slr-engine pipeline.
// Implements: prd001-dedup (Record, ExternalIDs, Author, R1.1-R1.3);
//
//	prd002-quality (QualityCriterion, R2.1);
//	prd003-fusion (Cluster, R3.1-R3.4);
//	prd006-cli (DedupConfig, EmbeddingConfig, ResultsConfig).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

// ExternalIDs holds the identifiers a record may carry across academic
// databases. Per prd001-dedup R1.2.
type ExternalIDs struct {
	// DOI is the Digital Object Identifier, stored as provided by the
	// source. Comparison uses the normalized form (lowercase, prefix-free).
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier (e.g. "2301.07041").
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// PubmedID is the PubMed identifier.
	PubmedID string `json:"pubmed_id,omitempty" yaml:"pubmed_id,omitempty"`

	// OpenAlexID is the OpenAlex work identifier (e.g. "W123456789").
	OpenAlexID string `json:"openalex_id,omitempty" yaml:"openalex_id,omitempty"`

	// S2ID is the Semantic Scholar corpus identifier.
	S2ID string `json:"s2_id,omitempty" yaml:"s2_id,omitempty"`
}

// Author is one paper author with optional ORCID.
type Author struct {
	// FamilyName is the author's last name.
	FamilyName string `json:"family_name" yaml:"family_name"`

	// GivenName is the author's first/given name(s), if known.
	GivenName string `json:"given_name,omitempty" yaml:"given_name,omitempty"`

	// ORCID is the ORCID identifier (e.g. "0000-0001-2345-6789"), if known.
	ORCID string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
}

// FullName returns "Given Family", or just the family name when no given
// name is known.
func (a Author) FullName() string {
	if a.GivenName != "" {
		return a.GivenName + " " + a.FamilyName
	}
	return a.FamilyName
}

// Record is the unified representation of a bibliographic record across all
// providers. Records are inputs to deduplication and are never mutated by
// it; cluster membership is reported separately. Per prd001-dedup R1.1.
type Record struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year. Zero means unknown; records without a
	// year do not participate in year-window fuzzy matching.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Provider identifies the source database (e.g. "openalex", "crossref",
	// "arxiv", "pubmed", "semantic_scholar").
	Provider string `json:"provider" yaml:"provider"`

	// ProviderID is the original identifier from the provider.
	ProviderID string `json:"provider_id,omitempty" yaml:"provider_id,omitempty"`

	// ExternalIDs holds all known external identifiers.
	ExternalIDs ExternalIDs `json:"external_ids" yaml:"external_ids"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Venue is the publication venue (journal, conference).
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// URL points to the paper landing page or full text.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Language is an ISO 639-1 code (e.g. "en").
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// CitedByCount is the citation count reported by the provider.
	CitedByCount int `json:"cited_by_count,omitempty" yaml:"cited_by_count,omitempty"`

	// QueryID names the search query that retrieved this record. The
	// quality filter looks up per-query criteria by this ID; records
	// without a query ID pass the filter unconditionally.
	QueryID string `json:"query_id,omitempty" yaml:"query_id,omitempty"`
}

// QualityCriterion holds per-query keyword screening rules.
// A record matching any exclude_any keyword is dropped; if include_any is
// set, a record matching none of its keywords is dropped. Keywords match
// case-insensitively as substrings of title+abstract+venue.
// Per prd002-quality R2.1-R2.3.
type QualityCriterion struct {
	IncludeAny []string `json:"include_any,omitempty" yaml:"include_any,omitempty"`
	ExcludeAny []string `json:"exclude_any,omitempty" yaml:"exclude_any,omitempty"`
}
