package usgs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/sony/gobreaker"
)

// maxFeedBytes bounds the response body. The all_month feed is roughly 10 MB.
const maxFeedBytes = 64 << 20

// Client fetches and parses the USGS GeoJSON summary feed.
type Client struct {
	url        string
	httpClient *http.Client
	backoff    BackoffConfig
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. timeout bounds each attempt; maxRetries is
// the number of additional attempts after the first.
func NewClient(feedURL string, timeout time.Duration, maxRetries int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url:        feedURL,
		httpClient: &http.Client{Timeout: timeout},
		backoff: BackoffConfig{
			MaxRetries:      maxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		breaker: newBreaker(),
		metrics: metrics,
		logger:  logger,
	}
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "usgs-feed",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
}

// Fetch downloads the feed and returns its earthquakes. Features without a
// point geometry are skipped and counted.
func (c *Client) Fetch(ctx context.Context) ([]domain.Earthquake, error) {
	start := time.Now()
	quakes, err := c.fetch(ctx)
	c.metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.FeedFetches.WithLabelValues("success").Inc()
	case errors.Is(err, ErrCircuitOpen):
		c.metrics.FeedFetches.WithLabelValues("circuit_open").Inc()
	default:
		c.metrics.FeedFetches.WithLabelValues("error").Inc()
	}
	return quakes, err
}

func (c *Client) fetch(ctx context.Context) ([]domain.Earthquake, error) {
	resp, err := getWithResilience(ctx, c.httpClient, c.backoff, c.breaker, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/geo+json, application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	quakes, skipped, err := ParseFeed(data)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.metrics.FeedFeaturesSkipped.Add(float64(skipped))
		c.logger.Warn("skipped feed features without point geometry", "skipped", skipped)
	}
	c.logger.Debug("feed fetched", "earthquakes", len(quakes), "bytes", len(data))
	return quakes, nil
}
