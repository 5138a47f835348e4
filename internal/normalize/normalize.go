// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw bibliographic text and identifiers into
// comparison-stable forms. All functions are pure; empty input yields the
// empty string, which downstream code treats as "no value" and never
// matches against anything.
// Implements: prd001-dedup R2.1-R2.4.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// doiURLPattern strips resolver prefixes: "https://doi.org/10.1/x",
// "http://dx.doi.org/10.1/x".
var doiURLPattern = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)

// doiSchemePattern strips the bare "doi:" prefix, with optional whitespace.
var doiSchemePattern = regexp.MustCompile(`(?i)^doi:\s*`)

// arxivSchemePattern strips the "arxiv:" prefix.
var arxivSchemePattern = regexp.MustCompile(`(?i)^arxiv:\s*`)

// Title normalizes a paper title for comparison: Unicode-decompose and drop
// combining marks (so "café" and "cafe" compare equal), lowercase, strip
// everything except letters, digits, underscore, and spaces, and collapse
// whitespace runs.
func Title(title string) string {
	if title == "" {
		return ""
	}

	decomposed := norm.NFD.String(title)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// DOI normalizes a DOI for comparison: resolver URL and "doi:" prefixes are
// stripped case-insensitively, the rest is lowercased and trimmed.
func DOI(doi string) string {
	if doi == "" {
		return ""
	}
	doi = strings.TrimSpace(doi)
	doi = doiURLPattern.ReplaceAllString(doi, "")
	doi = doiSchemePattern.ReplaceAllString(doi, "")
	return strings.ToLower(strings.TrimSpace(doi))
}

// ArxivID normalizes an arXiv identifier: the "arXiv:" prefix is stripped,
// the rest is lowercased and trimmed.
func ArxivID(id string) string {
	if id == "" {
		return ""
	}
	id = strings.TrimSpace(id)
	id = arxivSchemePattern.ReplaceAllString(id, "")
	return strings.ToLower(strings.TrimSpace(id))
}

// Words returns the set of whitespace-delimited tokens of the normalized
// title. An empty title yields an empty set, which opts the record out of
// fuzzy matching.
func Words(title string) map[string]struct{} {
	normalized := Title(title)
	if normalized == "" {
		return map[string]struct{}{}
	}
	words := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		words[w] = struct{}{}
	}
	return words
}
