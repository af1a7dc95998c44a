//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T, token string) *Client {
	t.Helper()
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.mapbox.com/tokens/v2",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_ValidateToken(t *testing.T) {
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}

	status, err := smokeClient(t, token).ValidateToken(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Valid, "code %s", status.Code)
}

func TestSmoke_ValidateToken_Garbage(t *testing.T) {
	status, err := smokeClient(t, "pk.not-a-real-token").ValidateToken(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Valid)
}

func TestSmoke_StreetTileReachable(t *testing.T) {
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}

	u := "https://api.mapbox.com/styles/v1/" + StreetsStyle + "/tiles/5/7/12?access_token=" + token
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
