// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/pdiddy/slr-engine/pkg/types"
)

// --- mock embedder ---

type mockEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.vectors != nil {
		return m.vectors, nil
	}
	// Default: orthogonal unit vectors, one per text.
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, len(texts))
		v[i] = 1
		out[i] = v
	}
	return out, nil
}

func semanticConfig() types.DedupConfig {
	return types.DedupConfig{
		Strategy:          types.StrategySemantic,
		FuzzyThreshold:    97,
		MaxYearGap:        1,
		SemanticThreshold: 0.9,
	}
}

func semanticRecords() []types.Record {
	return []types.Record{
		{Title: "Self-Attention Networks for Vision", Year: 2021, Provider: "arxiv",
			ExternalIDs: types.ExternalIDs{ArxivID: "2101.00001"}},
		{Title: "Vision Transformers: An Alternate View", Year: 2021, Provider: "crossref",
			ExternalIDs: types.ExternalIDs{DOI: "10.1/vit"}},
		{Title: "Soil Moisture Sensing", Year: 2021, Provider: "openalex"},
	}
}

func TestSemanticMergesAboveThreshold(t *testing.T) {
	// Clusters 0 and 1 get near-identical vectors, cluster 2 an orthogonal
	// one: the first two must merge.
	emb := &mockEmbedder{vectors: [][]float32{
		{1, 0, 0},
		{0.999, 0.01, 0},
		{0, 0, 1},
	}}
	d, err := New(semanticConfig(), emb, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	res, err := d.Deduplicate(context.Background(), semanticRecords(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Clusters) != 2 {
		t.Fatalf("cluster count = %d, want 2 after semantic merge", len(res.Clusters))
	}
	merged := clusterOf(t, res, 0)
	if merged.ID != clusterOf(t, res, 1).ID {
		t.Error("semantically similar clusters should merge")
	}
	// Combined cluster carries both identifiers and full confidence.
	if len(merged.DOIs) != 1 || len(merged.ArxivIDs) != 1 {
		t.Errorf("merged identifiers: DOIs=%v ArxivIDs=%v", merged.DOIs, merged.ArxivIDs)
	}
	if merged.Confidence != 1.0 {
		t.Errorf("merged confidence = %v, want 1.0", merged.Confidence)
	}
	if emb.calls != 1 {
		t.Errorf("embedder called %d times, want 1 batch call", emb.calls)
	}
}

func TestSemanticNoMergeBelowThreshold(t *testing.T) {
	d, err := New(semanticConfig(), &mockEmbedder{}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	res, err := d.Deduplicate(context.Background(), semanticRecords(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Clusters) != 3 {
		t.Errorf("cluster count = %d, want 3 with orthogonal embeddings", len(res.Clusters))
	}
}

func TestSemanticFailsClosed(t *testing.T) {
	d, err := New(semanticConfig(), &mockEmbedder{err: fmt.Errorf("service unavailable")}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	_, err = d.Deduplicate(context.Background(), semanticRecords(), nil, nil)
	if err == nil {
		t.Fatal("embedding failure must surface as an error, not as conservative output")
	}
}

func TestSemanticRejectsVectorCountMismatch(t *testing.T) {
	d, err := New(semanticConfig(), &mockEmbedder{vectors: [][]float32{{1}}}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	_, err = d.Deduplicate(context.Background(), semanticRecords(), nil, nil)
	if err == nil {
		t.Fatal("vector count mismatch must surface as an error")
	}
}

func TestSemanticSingleClusterSkipsOracle(t *testing.T) {
	emb := &mockEmbedder{}
	d, err := New(semanticConfig(), emb, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	res, err := d.Deduplicate(context.Background(), []types.Record{
		{Title: "Only Paper", Year: 2021, Provider: "arxiv"},
	}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Clusters) != 1 {
		t.Fatalf("cluster count = %d, want 1", len(res.Clusters))
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times for a single cluster, want 0", emb.calls)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
