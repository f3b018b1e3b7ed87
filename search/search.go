// Package search wraps the web-search API used to discover candidate
// builder pages. Errors are logged and swallowed: a failed search yields
// zero candidates, never an error to the caller.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

	// The provider's page size; we never ask for more.
	pageSize = 10
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"description"`
}

type searchResponse struct {
	Web struct {
		Results []Result `json:"results"`
	} `json:"web"`
}

type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type ClientOption func(*Client)

func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	ans := &Client{
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(ans)
	}

	return ans
}

// Search runs one query and returns up to pageSize results. Transport,
// HTTP and decode failures all return an empty slice.
func (c *Client) Search(ctx context.Context, query string) []Result {
	results, err := c.search(ctx, query)
	if err != nil {
		log.Printf("search %q failed: %v", query, err)

		return nil
	}

	return results
}

func (c *Client) search(ctx context.Context, query string) ([]Result, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := payload.Web.Results
	if len(results) > pageSize {
		results = results[:pageSize]
	}

	return results, nil
}

// StateQueries is the query set issued per target state.
func StateQueries(state string) []string {
	return []string{
		fmt.Sprintf("custom camper van builders in %s", state),
		fmt.Sprintf("sprinter van conversion company %s", state),
		fmt.Sprintf("camper van conversion %s", state),
	}
}
