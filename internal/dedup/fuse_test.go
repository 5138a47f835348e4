// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/slr-engine/pkg/types"
)

func fuse(t *testing.T, records []types.Record) types.Record {
	t.Helper()
	members := make([]int, len(records))
	for i := range members {
		members[i] = i
	}
	return fuseRecords(members, records, io.Discard)
}

func TestFuseBaseByProviderPriority(t *testing.T) {
	records := []types.Record{
		{Title: "arXiv version", Provider: "arxiv", CitedByCount: 500},
		{Title: "Crossref version", Provider: "crossref", CitedByCount: 3},
		{Title: "OpenAlex version", Provider: "openalex", CitedByCount: 100},
	}

	fused := fuse(t, records)
	if fused.Title != "Crossref version" {
		t.Errorf("base title = %q, want the crossref member regardless of citations", fused.Title)
	}
}

func TestFuseBaseTieBrokenByCitations(t *testing.T) {
	records := []types.Record{
		{Title: "Less cited", Provider: "openalex", CitedByCount: 10},
		{Title: "More cited", Provider: "openalex", CitedByCount: 50},
	}

	fused := fuse(t, records)
	if fused.Title != "More cited" {
		t.Errorf("base title = %q, want the more-cited member", fused.Title)
	}
}

func TestFuseUnknownProviderRanksLast(t *testing.T) {
	records := []types.Record{
		{Title: "Mystery source", Provider: "dblp"},
		{Title: "arXiv source", Provider: "arxiv"},
	}

	fused := fuse(t, records)
	if fused.Title != "arXiv source" {
		t.Errorf("base title = %q, want the known provider", fused.Title)
	}
}

func TestFuseAbstract(t *testing.T) {
	long := strings.Repeat("Plant disease detection with convolutional networks. ", 3)

	tests := []struct {
		name    string
		records []types.Record
		want    string
	}{
		{
			name: "longer valid abstract wins",
			records: []types.Record{
				{Provider: "crossref", Abstract: "A valid base abstract text."},
				{Provider: "arxiv", Abstract: long},
			},
			want: long,
		},
		{
			name: "placeholder never wins",
			records: []types.Record{
				{Provider: "crossref", Abstract: "A valid base abstract text."},
				{Provider: "arxiv", Abstract: "No Abstract Available"},
			},
			want: "A valid base abstract text.",
		},
		{
			name: "short candidate never wins",
			records: []types.Record{
				{Provider: "crossref", Abstract: "A valid base abstract text."},
				{Provider: "arxiv", Abstract: "too short"},
			},
			want: "A valid base abstract text.",
		},
		{
			name: "invalid base replaced by valid candidate",
			records: []types.Record{
				{Provider: "crossref", Abstract: "n/a"},
				{Provider: "arxiv", Abstract: "A perfectly valid replacement abstract."},
			},
			want: "A perfectly valid replacement abstract.",
		},
		{
			name: "invalid base kept when no candidate is valid",
			records: []types.Record{
				{Provider: "crossref", Abstract: "n/a"},
				{Provider: "arxiv", Abstract: ""},
			},
			want: "n/a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fuse(t, tt.records).Abstract; got != tt.want {
				t.Errorf("fused abstract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFuseIdentifierBackfill(t *testing.T) {
	records := []types.Record{
		{Provider: "crossref", ExternalIDs: types.ExternalIDs{DOI: "10.1/base"}},
		{Provider: "arxiv", ExternalIDs: types.ExternalIDs{ArxivID: "2101.00001", DOI: "10.1/other"}},
		{Provider: "pubmed", ExternalIDs: types.ExternalIDs{PubmedID: "12345", S2ID: "99"}},
		{Provider: "openalex", ExternalIDs: types.ExternalIDs{OpenAlexID: "W1", PubmedID: "67890"}},
	}

	fused := fuse(t, records)
	ids := fused.ExternalIDs
	if ids.DOI != "10.1/base" {
		t.Errorf("DOI = %q, base value must not be overwritten", ids.DOI)
	}
	if ids.ArxivID != "2101.00001" {
		t.Errorf("ArxivID = %q, want backfilled", ids.ArxivID)
	}
	if ids.PubmedID != "12345" {
		t.Errorf("PubmedID = %q, want the first non-empty in member order", ids.PubmedID)
	}
	if ids.OpenAlexID != "W1" || ids.S2ID != "99" {
		t.Errorf("OpenAlexID=%q S2ID=%q, want backfilled", ids.OpenAlexID, ids.S2ID)
	}
}

func TestFuseORCIDs(t *testing.T) {
	records := []types.Record{
		{Provider: "crossref", Authors: []types.Author{
			{FamilyName: "García", GivenName: "María"},
			{FamilyName: "Smith", GivenName: "J."},
			{FamilyName: "Lee"},
		}},
		{Provider: "openalex", Authors: []types.Author{
			{FamilyName: "García", GivenName: "M.", ORCID: "0000-0001-0000-0001"},
			{FamilyName: "Smith", GivenName: "Robert", ORCID: "0000-0002-0000-0002"},
			{FamilyName: "Lee", GivenName: "Ana", ORCID: "0000-0003-0000-0003"},
		}},
	}

	fused := fuse(t, records)
	if fused.Authors[0].ORCID != "0000-0001-0000-0001" {
		t.Errorf("García ORCID = %q, want matched by family name + initial", fused.Authors[0].ORCID)
	}
	if fused.Authors[1].ORCID != "" {
		t.Errorf("Smith ORCID = %q, initials J and R must not match", fused.Authors[1].ORCID)
	}
	if fused.Authors[2].ORCID != "0000-0003-0000-0003" {
		t.Errorf("Lee ORCID = %q, missing given name matches on family name alone", fused.Authors[2].ORCID)
	}
}

func TestFuseORCIDKeepsExisting(t *testing.T) {
	records := []types.Record{
		{Provider: "crossref", Authors: []types.Author{
			{FamilyName: "Smith", GivenName: "Jane", ORCID: "0000-0001-1111-1111"},
		}},
		{Provider: "openalex", Authors: []types.Author{
			{FamilyName: "Smith", GivenName: "Jane", ORCID: "0000-0009-9999-9999"},
		}},
	}

	fused := fuse(t, records)
	if fused.Authors[0].ORCID != "0000-0001-1111-1111" {
		t.Errorf("ORCID = %q, existing value must be kept", fused.Authors[0].ORCID)
	}
}

func TestFuseCitationsAndYear(t *testing.T) {
	records := []types.Record{
		{Provider: "crossref", CitedByCount: 10},
		{Provider: "arxiv", CitedByCount: 42, Year: 2020},
		{Provider: "openalex", Year: 2021},
	}

	fused := fuse(t, records)
	if fused.CitedByCount != 42 {
		t.Errorf("CitedByCount = %d, want maximum 42", fused.CitedByCount)
	}
	if fused.Year != 2020 {
		t.Errorf("Year = %d, want first non-missing in member order", fused.Year)
	}
}

func TestFuseURL(t *testing.T) {
	tests := []struct {
		name    string
		records []types.Record
		want    string
	}{
		{
			name: "doi rewrites unrelated url",
			records: []types.Record{
				{Provider: "crossref", URL: "https://example.com/paper.pdf",
					ExternalIDs: types.ExternalIDs{DOI: "10.1/ABC"}},
			},
			want: "https://doi.org/10.1/abc",
		},
		{
			name: "url already referencing doi kept",
			records: []types.Record{
				{Provider: "crossref", URL: "https://doi.org/10.1/abc",
					ExternalIDs: types.ExternalIDs{DOI: "10.1/abc"}},
			},
			want: "https://doi.org/10.1/abc",
		},
		{
			name: "no doi keeps url",
			records: []types.Record{
				{Provider: "arxiv", URL: "https://arxiv.org/abs/2101.00001"},
			},
			want: "https://arxiv.org/abs/2101.00001",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fuse(t, tt.records).URL; got != tt.want {
				t.Errorf("fused URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFuseStepRecoversPanic(t *testing.T) {
	var buf strings.Builder
	fuseStep(&buf, "demo", func() { panic("boom") })
	if !strings.Contains(buf.String(), "demo") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("fuseStep warning = %q, want step name and panic value", buf.String())
	}
}

func TestAbstractValid(t *testing.T) {
	tests := []struct {
		abstract string
		want     bool
	}{
		{"", false},
		{"short", false},
		{"No Abstract Available", false},
		{"  n/a  ", false},
		{"This is a real abstract describing the work.", true},
	}
	for _, tt := range tests {
		if got := abstractValid(tt.abstract); got != tt.want {
			t.Errorf("abstractValid(%q) = %v, want %v", tt.abstract, got, tt.want)
		}
	}
}
