// Package analytics implements the traffic-source port against the
// analytics reporting API.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lubosr/linuxconfig-toolkit/internal/config"
	"github.com/lubosr/linuxconfig-toolkit/internal/domain"
	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
)

// nonArticlePaths are service pages excluded from every report.
var nonArticlePaths = map[string]struct{}{
	"/":           {},
	"/index.html": {},
	"/about":      {},
	"/contact":    {},
}

// Client talks to the traffic analytics reporting endpoint.
type Client struct {
	endpoint string
	property string
	apiKey   string
	http     *http.Client
}

var _ ports.TrafficSource = (*Client)(nil)

// NewClient creates a reusable HTTP client from configuration.
func NewClient(cfg config.AnalyticsConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		property: cfg.Property,
		apiKey:   cfg.APIKey,
		http:     httpClient,
	}
}

// Fetch requests page metrics for the trailing window, ordered by
// pageviews descending, and filters out non-article pages.
func (c *Client) Fetch(ctx context.Context, days, limit int) (map[string]domain.TrafficMetrics, error) {
	payload := map[string]any{
		"property":  c.property,
		"days":      days,
		"limit":     limit,
		"dimension": "pagePath",
		"metrics":   []string{"screenPageViews", "sessions", "averageSessionDuration"},
		"orderBy":   "screenPageViews",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal report request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/reports:run", bytes.NewReader(body))
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
		return nil, fmt.Errorf("analytics returned %s", resp.Status)
	}

	var report struct {
		Rows []struct {
			PagePath    string  `json:"pagePath"`
			Pageviews   int     `json:"pageviews"`
			Sessions    int     `json:"sessions"`
			AvgDuration float64 `json:"avgDuration"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	data := make(map[string]domain.TrafficMetrics, len(report.Rows))
	for _, row := range report.Rows {
		if _, skip := nonArticlePaths[row.PagePath]; skip {
			continue
		}
		data[row.PagePath] = domain.TrafficMetrics{
			Pageviews:   row.Pageviews,
			Sessions:    row.Sessions,
			AvgDuration: row.AvgDuration,
		}
	}
	return data, nil
}
