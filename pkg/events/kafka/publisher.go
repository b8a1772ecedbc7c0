// Package kafka publishes replay events to a Kafka topic. Events are
// keyed by episode id so per-episode ordering survives partitioning.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/knowrobco/neemsim/pkg/events"
	"github.com/knowrobco/neemsim/pkg/logger"
)

// Publisher writes replay events to Kafka.
type Publisher struct {
	writer *kafkago.Writer
	log    *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the publisher logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Publisher) { p.log = log }
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkago.Hash{},
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish serializes the event and writes it keyed by episode id.
func (p *Publisher) Publish(ctx context.Context, event *events.ReplayEvent) error {
	if event == nil {
		return events.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: encode event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Episode.ID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write event: %w", err)
	}

	p.log.Debug("published replay event", "type", event.EventType, "episode", event.Episode.ID)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
