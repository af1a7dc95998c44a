package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_ValidateToken_Valid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(tokenResponse{Code: "TokenValid"}))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	status, err := testClient(srv.URL, m).ValidateToken(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Valid)
	assert.Equal(t, "TokenValid", status.Code)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TileTokenValid), 0)
}

func TestClient_ValidateToken_Rejected(t *testing.T) {
	for _, code := range []string{"TokenInvalid", "TokenExpired", "TokenRevoked", "TokenMalformed"} {
		t.Run(code, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set(headerContentType, contentTypeJSON)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":"` + code + `"}`))
			}))
			defer srv.Close()

			m := observability.NewMetricsForTesting()
			m.TileTokenValid.Set(1)

			status, err := testClient(srv.URL, m).ValidateToken(context.Background())
			require.NoError(t, err)
			assert.False(t, status.Valid)
			assert.Equal(t, code, status.Code)
			assert.InDelta(t, 0, testutil.ToFloat64(m.TileTokenValid), 0)
		})
	}
}

func TestClient_ValidateToken_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, observability.NewMetricsForTesting()).ValidateToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_ValidateToken_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, nil).ValidateToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ValidateToken_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.ValidateToken(context.Background())
	require.Error(t, err)
}

func TestBaseLayers(t *testing.T) {
	layers := BaseLayers(testToken)
	require.Len(t, layers, 2)

	street, dark := layers[0], layers[1]
	assert.Equal(t, "Street Map", street.Name)
	assert.Equal(t, StreetsStyle, street.StyleID)
	assert.True(t, street.Default)
	assert.Equal(t, "Dark Map", dark.Name)
	assert.Equal(t, DarkStyle, dark.StyleID)
	assert.False(t, dark.Default)

	for _, l := range layers {
		assert.Equal(t, TileURLTemplate, l.URL)
		assert.Equal(t, testToken, l.AccessToken)
		assert.Equal(t, 18, l.MaxZoom)
		assert.Equal(t, 512, l.TileSize)
		assert.Equal(t, -1, l.ZoomOffset)
		assert.Contains(t, l.Attribution, "OpenStreetMap")
		assert.Contains(t, l.Attribution, "Mapbox")
	}
}
