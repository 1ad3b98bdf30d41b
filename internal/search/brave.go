// Package search provides the web-search adapter: a typed client for the
// Brave web search API, a TTL-bounded query cache, and the orchestrated
// entry point that records each query as a user memory before searching.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Result is a single web search hit, ordered by the provider's ranking.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Web is the web-results section of a search response.
type Web struct {
	Results []Result `json:"results"`
}

// Query carries provider metadata about the executed query.
type Query struct {
	Original string `json:"original,omitempty"`
	Altered  string `json:"altered,omitempty"`
}

// Response is the full result envelope for one query.
type Response struct {
	Query Query `json:"query,omitempty"`
	Web   Web   `json:"web"`
}

// Client issues web search requests against a Brave-compatible endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a search client. An empty apiKey is allowed at
// construction time; Search reports it as an error per request.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the client has a subscription token.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Search issues the query and decodes the result envelope.
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("search: missing provider API key")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("search: provider returned %d: %s", resp.StatusCode, string(body))
	}

	var envelope Response
	if err = json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	return &envelope, nil
}
