package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"articleforge/internal/ports"
)

// GoogleClient queries a Google Custom Search-compatible endpoint.
type GoogleClient struct {
	endpoint string
	apiKey   string
	engineID string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.SearchProvider = (*GoogleClient)(nil)

// NewGoogleClient builds a search client from provider credentials.
func NewGoogleClient(endpoint, apiKey, engineID string, client *http.Client, logger *slog.Logger) *GoogleClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GoogleClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		engineID: engineID,
		client:   client,
		logger:   logger,
	}
}

type searchItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

// Search performs one provider call and filters the response: candidates
// with a missing or malformed link, or a link hosted on excludeHost, are
// logged and dropped. A provider failure is returned as-is; there is no
// retry or caching at this layer.
func (g *GoogleClient) Search(ctx context.Context, query, excludeHost string, count int) ([]ports.SearchResult, error) {
	endpoint, err := url.Parse(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}

	params := endpoint.Query()
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(count))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned %s", resp.Status)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]ports.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Link == "" {
			continue
		}
		link, err := url.Parse(item.Link)
		if err != nil || link.Host == "" {
			g.warn("skipping malformed search result", "link", item.Link)
			continue
		}
		if link.Host == excludeHost {
			continue
		}
		results = append(results, ports.SearchResult{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		})
	}

	return results, nil
}

func (g *GoogleClient) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
