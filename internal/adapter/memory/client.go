// Package memory provides the client for the content memory service, a
// vector similarity store holding past campaign content. Agents query it for
// high-performing posts on similar topics and write finished content back so
// later campaigns can learn from it.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Match is one ranked similarity search result.
type Match struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store defines the interface for the content memory service.
type Store interface {
	// Query returns up to topK past content entries ranked by similarity.
	Query(ctx context.Context, text string, topK int) ([]Match, error)

	// Upsert embeds and stores a content entry under the given id.
	Upsert(ctx context.Context, id, content string, metadata map[string]string) error
}

// Client calls the memory service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new memory client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure Client implements Store interface.
var _ Store = (*Client)(nil)

type queryRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

type upsertRequest struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Query returns ranked similar past content.
func (c *Client) Query(ctx context.Context, text string, topK int) ([]Match, error) {
	var resp queryResponse
	if err := c.post(ctx, "/v1/query", queryRequest{Text: text, TopK: topK}, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Upsert stores a content entry.
func (c *Client) Upsert(ctx context.Context, id, content string, metadata map[string]string) error {
	return c.post(ctx, "/v1/upsert", upsertRequest{ID: id, Content: content, Metadata: metadata}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("memory API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
