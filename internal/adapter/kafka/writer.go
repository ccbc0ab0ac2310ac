package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/accident-map/internal/config"
	"github.com/couchcryptid/accident-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes query audit events to a Kafka topic.
// It implements accidents.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured audit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		// Events are written one per request; don't hold them for a batch.
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishQuery serializes and writes one audit event, keyed by location so a
// place's queries land on one partition in order.
func (w *Writer) PublishQuery(ctx context.Context, ev domain.QueryEvent) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write query event: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a QueryEvent into a Kafka message.
func serializeToMessage(ev domain.QueryEvent) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize query event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.Location),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(ev.Outcome)},
			{Key: "executed_at", Value: []byte(ev.ExecutedAt.Format(time.RFC3339))},
		},
	}, nil
}
