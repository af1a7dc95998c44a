package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/quake-map/internal/observability"
)

// Client checks Mapbox access tokens against the Tokens API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox tokens client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/tokens/v2",
		metrics: metrics,
		logger:  logger,
	}
}

// TokenStatus is the outcome of a token check.
type TokenStatus struct {
	Valid bool
	Code  string
}

// ValidateToken asks Mapbox whether the configured token is usable. A
// well-formed rejection is reported as an invalid status, not an error; errors
// are reserved for transport and decoding failures.
func (c *Client) ValidateToken(ctx context.Context) (TokenStatus, error) {
	params := url.Values{"access_token": {c.token}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return TokenStatus{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(false)
		return TokenStatus{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(resp.Body)
		c.record(false)
		return TokenStatus{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		c.record(false)
		return TokenStatus{}, fmt.Errorf("decode response: %w", err)
	}

	status := TokenStatus{Valid: tr.Code == "TokenValid", Code: tr.Code}
	c.record(status.Valid)
	if !status.Valid {
		c.logger.Warn("mapbox token rejected", "code", tr.Code, "status", resp.StatusCode)
	}
	return status, nil
}

func (c *Client) record(valid bool) {
	if c.metrics == nil {
		return
	}
	if valid {
		c.metrics.TileTokenValid.Set(1)
	} else {
		c.metrics.TileTokenValid.Set(0)
	}
}

type tokenResponse struct {
	Code string `json:"code"`
}
