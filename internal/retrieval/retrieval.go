// Package retrieval provides clients for the semantic-search and case-law
// backends that ground legal responses in real source material.
package retrieval

import "context"

// Document is one semantic-search hit from the legal knowledge corpus.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// CaseLaw is one case-law search result.
type CaseLaw struct {
	Title     string  `json:"title"`
	Court     string  `json:"court,omitempty"`
	Date      string  `json:"date,omitempty"`
	Summary   string  `json:"summary,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
}

// Searcher retrieves relevant documents from the vector index.
type Searcher interface {
	SemanticSearch(ctx context.Context, query string, topK int) ([]Document, error)
}

// CaseLawSearcher retrieves case law for a query within a jurisdiction.
type CaseLawSearcher interface {
	CaseLawSearch(ctx context.Context, query, jurisdiction string, limit int) ([]CaseLaw, error)
}
