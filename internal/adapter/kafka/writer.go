package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes earthquakes to a Kafka topic.
// It implements feed.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured earthquake topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes the earthquakes in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, quakes []domain.Earthquake) error {
	if len(quakes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(quakes))
	for i := range quakes {
		msg, err := serializeToMessage(quakes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write earthquake events: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// eventPayload is the message body. Magnitude is null when the feed had none.
type eventPayload struct {
	ID            string    `json:"id"`
	Place         string    `json:"place"`
	Magnitude     *float64  `json:"mag"`
	MagnitudeType string    `json:"mag_type,omitempty"`
	Time          time.Time `json:"time"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	URL           string    `json:"url,omitempty"`
	Color         string    `json:"color"`
	Radius        float64   `json:"radius"`
}

// serializeToMessage marshals an Earthquake into a Kafka message keyed by its ID.
func serializeToMessage(q domain.Earthquake) (kafkago.Message, error) {
	b := q.Bucket()
	p := eventPayload{
		ID:            q.ID,
		Place:         q.Place,
		MagnitudeType: q.MagnitudeType,
		Time:          q.Time,
		Lat:           q.Lat,
		Lon:           q.Lon,
		URL:           q.URL,
		Color:         b.Color,
		Radius:        b.Radius,
	}
	if q.HasMagnitude {
		mag := q.Magnitude
		p.Magnitude = &mag
	}

	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize earthquake: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(q.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "magnitude_bucket", Value: []byte(b.Label)},
			{Key: "event_time", Value: []byte(q.Time.UTC().Format(time.RFC3339))},
		},
	}, nil
}
