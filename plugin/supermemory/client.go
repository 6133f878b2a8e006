// Package supermemory is a client for the remote knowledge store. The
// store is an opaque service reached over REST: the pipeline only
// depends on its search and addMemory contracts.
package supermemory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the knowledge store API.
type Client struct {
	http *resty.Client
}

// NewClient constructs a client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	return &Client{http: httpClient}
}

// APIError is a non-2xx response from the knowledge store.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("knowledge store returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("knowledge store returned %d", e.StatusCode)
}

// Search performs a semantic search scoped by container tags.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	result := &SearchResponse{}
	apiErr := &APIError{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post("/v3/search")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, apiErr
	}

	if result.Results == nil {
		result.Results = []Result{}
	}
	return result, nil
}

// AddMemory writes a new memory into the store under the given
// container tags.
func (c *Client) AddMemory(ctx context.Context, req *AddMemoryRequest) (*Memory, error) {
	result := &Memory{}
	apiErr := &APIError{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post("/v3/memories")
	if err != nil {
		return nil, fmt.Errorf("add memory request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, apiErr
	}
	return result, nil
}
