package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// VectorClient queries the vector-search service over HTTP JSON.
type VectorClient struct {
	baseURL string
	http    *http.Client
}

// NewVector creates a client for the vector-search service.
func NewVector(baseURL string, timeout time.Duration) *VectorClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VectorClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type vectorSearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type vectorSearchResponse struct {
	Results []Document `json:"results"`
}

// SemanticSearch returns the topK documents most similar to query.
func (c *VectorClient) SemanticSearch(ctx context.Context, query string, topK int) ([]Document, error) {
	payload, err := json.Marshal(vectorSearchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic search: unexpected status %d", resp.StatusCode)
	}

	var out vectorSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return out.Results, nil
}
