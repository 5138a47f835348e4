// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed provides the HTTP client for the external embedding service
// used by the semantic deduplication strategy.
// Implements: prd005-semantic (R5.1-R5.3);
//
//	docs/ARCHITECTURE § Semantic Extension.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/slr-engine/internal/httputil"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// Client calls an embedding service over HTTP. It implements the
// dedup.Embedder interface: one POST per batch, texts in, vectors out.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	userAgent  string
	model      string
}

// NewClient builds a Client from the embedding configuration. The endpoint
// is required; the model names what the service should embed with
// (R5.1).
func NewClient(cfg types.EmbeddingConfig, model string) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required for the semantic strategy")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		model:      model,
	}, nil
}

// Embedding service JSON structures.
type embedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed requests one vector per input text in a single batch call (R5.2).
// It returns an error when the service responds with a non-200 status or
// when the vector count does not match the text count.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("embedding service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned HTTP %d", resp.StatusCode)
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing embedding response: %w", err)
	}

	if len(er.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts",
			len(er.Embeddings), len(texts))
	}
	return er.Embeddings, nil
}
