package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/events"
	pkgkafka "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/kafka"
)

// MessageWriter is the subset of pkg/kafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher implements port.EventPublisher using Kafka.
type Publisher struct {
	producer MessageWriter
	logger   *slog.Logger
	topic    string
}

// NewPublisher creates a new Kafka event publisher.
func NewPublisher(producer MessageWriter, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends domain events to the configured topic, keyed by aggregate ID.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		eventType := evt.EventType()

		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", eventType),
			slog.String("topic", p.topic),
			slog.String("aggregate_id", evt.AggregateID().String()),
			slog.Int("payload_size", len(payload)),
		)

		messages = append(messages, pkgkafka.Message{
			Key:     events.PartitionKey(evt),
			Value:   payload,
			Headers: events.Headers(evt),
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}

	return nil
}
