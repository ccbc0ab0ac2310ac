// Package api is the map client's transport to the accident query endpoint.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/accident-map/internal/domain"
)

// maxBodyBytes bounds a single /geojson response.
const maxBodyBytes = 256 << 20

// Client fetches accident data from the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch issues GET baseURL+query and decodes the body. The status code is not
// inspected: a backend error body decodes to a KindError response whatever the
// status. Transport failures and non-JSON bodies return an error.
func (c *Client) Fetch(ctx context.Context, query string) (domain.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+query, nil)
	if err != nil {
		return domain.Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Response{}, fmt.Errorf("fetch accidents: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Response{}, fmt.Errorf("read response: %w", err)
	}

	decoded, err := domain.DecodeResponse(body)
	if err != nil {
		c.logger.Warn("undecodable backend response", "status", resp.StatusCode, "query", query)
		return domain.Response{}, err
	}
	c.logger.Debug("backend response", "status", resp.StatusCode, "features", decoded.FeatureCount())
	return decoded, nil
}
