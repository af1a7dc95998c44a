package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 3, cfg.FeedMaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.FeedRefreshInterval)
	assert.Empty(t, cfg.MapboxToken)
	assert.False(t, cfg.MapboxValidate)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.InDelta(t, 37.09, cfg.MapCenterLat, 1e-9)
	assert.InDelta(t, -95.71, cfg.MapCenterLon, 1e-9)
	assert.Equal(t, 5, cfg.MapZoom)
	assert.Equal(t, time.UTC, cfg.DisplayTZ)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "earthquake-events", cfg.KafkaTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FEED_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/4.5_day.geojson")
	t.Setenv("FEED_TIMEOUT", "20s")
	t.Setenv("FEED_MAX_RETRIES", "5")
	t.Setenv("FEED_REFRESH_INTERVAL", "1m")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAP_CENTER", "35.68, 139.69")
	t.Setenv("MAP_ZOOM", "7")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "quakes")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/4.5_day.geojson", cfg.FeedURL)
	assert.Equal(t, 20*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 5, cfg.FeedMaxRetries)
	assert.Equal(t, time.Minute, cfg.FeedRefreshInterval)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.True(t, cfg.MapboxValidate)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.InDelta(t, 35.68, cfg.MapCenterLat, 1e-9)
	assert.InDelta(t, 139.69, cfg.MapCenterLon, 1e-9)
	assert.Equal(t, 7, cfg.MapZoom)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "quakes", cfg.KafkaTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_OnDemandRefresh(t *testing.T) {
	t.Setenv("FEED_REFRESH_INTERVAL", "0s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.FeedRefreshInterval)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"shutdown timeout not a duration", "SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"feed timeout not a duration", "FEED_TIMEOUT", "soon"},
		{"feed timeout zero", "FEED_TIMEOUT", "0s"},
		{"refresh interval negative", "FEED_REFRESH_INTERVAL", "-1m"},
		{"mapbox timeout", "MAPBOX_TIMEOUT", "bad"},
		{"retries not a number", "FEED_MAX_RETRIES", "three"},
		{"retries negative", "FEED_MAX_RETRIES", "-1"},
		{"retries too many", "FEED_MAX_RETRIES", "11"},
		{"feed url", "FEED_URL", "not a url"},
		{"center missing lon", "MAP_CENTER", "37.09"},
		{"center bad lat", "MAP_CENTER", "north,-95.71"},
		{"center lat out of range", "MAP_CENTER", "91,0"},
		{"zoom too deep", "MAP_ZOOM", "19"},
		{"zoom not a number", "MAP_ZOOM", "close"},
		{"display tz", "DISPLAY_TZ", "Mars/Olympus_Mons"},
		{"log level", "LOG_LEVEL", "loud"},
		{"log format", "LOG_FORMAT", "xml"},
		{"mapbox validate", "MAPBOX_VALIDATE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_MapboxValidateWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_VALIDATE", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesValidate(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxValidate)
}

func TestLoad_MapboxValidateExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_VALIDATE", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxValidate)
}
