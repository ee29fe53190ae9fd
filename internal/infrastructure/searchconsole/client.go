// Package searchconsole implements the search-source port against the
// search analytics API.
package searchconsole

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
)

// Client talks to the search analytics query endpoint.
type Client struct {
	endpoint string
	property string
	apiKey   string
	http     *http.Client
	clock    func() time.Time
}

var _ ports.SearchSource = (*Client)(nil)

// NewClient creates a reusable HTTP client from configuration.
func NewClient(cfg config.SearchConsoleConfig, httpClient *http.Client, clock func() time.Time) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Client{
		endpoint: cfg.Endpoint,
		property: cfg.Property,
		apiKey:   cfg.APIKey,
		http:     httpClient,
		clock:    clock,
	}
}

// Fetch queries search metrics for the trailing window. Row keys come
// back as full page URLs; they are rewritten to site-relative paths so
// they join with the traffic data.
func (c *Client) Fetch(ctx context.Context, days, limit int) (map[string]domain.SearchMetrics, error) {
	end := c.clock()
	start := end.AddDate(0, 0, -days)

	payload := map[string]any{
		"siteUrl":    c.property,
		"startDate":  start.Format("2006-01-02"),
		"endDate":    end.Format("2006-01-02"),
		"dimensions": []string{"page"},
		"rowLimit":   limit,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/searchanalytics:query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search console returned %s", resp.Status)
	}

	var report struct {
		Rows []struct {
			Keys        []string `json:"keys"`
			Clicks      int      `json:"clicks"`
			Impressions int      `json:"impressions"`
			CTR         float64  `json:"ctr"`
			Position    float64  `json:"position"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	data := make(map[string]domain.SearchMetrics, len(report.Rows))
	for _, row := range report.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		path := c.pagePath(row.Keys[0])
		data[path] = domain.SearchMetrics{
			Clicks:      row.Clicks,
			Impressions: row.Impressions,
			CTR:         row.CTR,
			Position:    row.Position,
		}
	}
	return data, nil
}

// pagePath rewrites a property-prefixed URL to a site-relative path.
func (c *Client) pagePath(pageURL string) string {
	return strings.Replace(pageURL, c.property, "/", 1)
}
