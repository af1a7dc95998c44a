//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/feed"
	"github.com/couchcryptid/quake-map/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-earthquake-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// feedServer serves the usgs package fixture.
func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile("../adapter/usgs/testdata/all_hour.geojson")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestRefreshPublishesToKafka runs a refresh against a fixture feed and reads
// the published events back from a real broker.
func TestRefreshPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	client := usgs.NewClient(feedServer(t).URL, 5*time.Second, 0, metrics, discardLogger())
	r := feed.New(client, writer, false, discardLogger(), metrics)

	require.NoError(t, r.Refresh(ctx))
	require.NoError(t, r.Refresh(ctx), "second refresh publishes nothing new")

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	seen := map[string]map[string]string{}
	for len(seen) < 5 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read event %d", len(seen)+1)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var body map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &body))
		assert.Equal(t, string(msg.Key), body["id"])

		_, dup := seen[string(msg.Key)]
		require.False(t, dup, "event %s published twice", msg.Key)
		seen[string(msg.Key)] = headers
	}

	assert.Equal(t, "5+", seen["us7000test"]["magnitude_bucket"])
	assert.Equal(t, "2023-11-14T22:13:20Z", seen["us7000test"]["event_time"])
	assert.Equal(t, "0–1", seen["ak023f1bq9x"]["magnitude_bucket"])

	// Nothing beyond the five fixture earthquakes.
	readCtx, readCancel := context.WithTimeout(ctx, 3*time.Second)
	defer readCancel()
	_, err := consumer.ReadMessage(readCtx)
	assert.Error(t, err)
}
