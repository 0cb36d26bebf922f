package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// KanoonClient queries an Indian Kanoon style case-law API.
type KanoonClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewKanoon creates a case-law search client. The API key is optional for
// self-hosted mirrors.
func NewKanoon(baseURL, apiKey string, timeout time.Duration) *KanoonClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KanoonClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type kanoonSearchResponse struct {
	Cases []CaseLaw `json:"cases"`
}

// CaseLawSearch returns up to limit cases relevant to query. Jurisdiction
// narrows results to a court system when the backend supports it.
func (c *KanoonClient) CaseLawSearch(ctx context.Context, query, jurisdiction string, limit int) ([]CaseLaw, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	if jurisdiction != "" {
		params.Set("jurisdiction", jurisdiction)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build case-law request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("case-law search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("case-law search: unexpected status %d", resp.StatusCode)
	}

	var out kanoonSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode case-law response: %w", err)
	}
	return out.Cases, nil
}
