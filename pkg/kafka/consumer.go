package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// DeadLetterFunc receives a message whose handler kept failing.
type DeadLetterFunc func(ctx context.Context, msg Message, cause error) error

// HeaderDeadLetterReason carries the last handler error on dead-lettered messages.
const HeaderDeadLetterReason = "dead_letter_reason"

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ConsumerOption customises a Consumer.
type ConsumerOption func(*Consumer)

// WithRetry re-runs a failing handler up to attempts times in total, doubling
// backoff after each failure.
func WithRetry(attempts int, backoff time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.attempts = max(attempts, 1)
		c.backoff = backoff
	}
}

// WithDeadLetter routes messages that exhausted their retries to fn before
// the offset is committed.
func WithDeadLetter(fn DeadLetterFunc) ConsumerOption {
	return func(c *Consumer) { c.deadLetter = fn }
}

// DeadLetterTo returns a DeadLetterFunc that republishes onto topic with the
// failure reason in a header.
func DeadLetterTo(p *Producer, topic string) DeadLetterFunc {
	return func(ctx context.Context, msg Message, cause error) error {
		headers := make(map[string]string, len(msg.Headers)+1)
		for k, v := range msg.Headers {
			headers[k] = v
		}
		headers[HeaderDeadLetterReason] = cause.Error()
		return p.Publish(ctx, topic, Message{Key: msg.Key, Value: msg.Value, Headers: headers})
	}
}

// Consumer reads one topic within a consumer group. Offsets advance once the
// handler succeeds or the message has been given up on.
type Consumer struct {
	reader     messageReader
	handler    Handler
	logger     *slog.Logger
	deadLetter DeadLetterFunc
	topic      string
	group      string
	attempts   int
	backoff    time.Duration
}

// NewConsumer creates a Consumer for the given topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger, opts ...ConsumerOption) (*Consumer, error) {
	readerCfg, err := readerConfig(cfg, topic)
	if err != nil {
		return nil, err
	}
	return newConsumer(kafkago.NewReader(readerCfg), topic, cfg.ConsumerGroup, handler, logger, opts...), nil
}

func newConsumer(r messageReader, topic, group string, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader:   r,
		handler:  handler,
		logger:   logger,
		topic:    topic,
		group:    group,
		attempts: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func readerConfig(cfg Config, topic string) (kafkago.ReaderConfig, error) {
	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 << 20,
	}

	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return kafkago.ReaderConfig{}, err
	}
	if cfg.TLS || mechanism != nil || cfg.ClientID != "" {
		readerCfg.Dialer = &kafkago.Dialer{
			ClientID:      cfg.ClientID,
			DualStack:     true,
			Timeout:       10 * time.Second,
			TLS:           cfg.tlsConfig(),
			SASLMechanism: mechanism,
		}
	}
	return readerCfg, nil
}

// Start consumes until ctx is canceled. A canceled context is a clean stop.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.topic, "group", c.group, "attempts", c.attempts)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping", "topic", c.topic)
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if !c.process(ctx, m) {
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit failed",
				"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
		}
	}
}

// process runs the handler with retries and reports whether the offset may
// be committed.
func (c *Consumer) process(ctx context.Context, m kafkago.Message) bool {
	msg := fromKafkaMessage(m)
	delay := c.backoff

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return true
		}
		c.logger.Warn("handler failed",
			"topic", m.Topic, "partition", m.Partition, "offset", m.Offset,
			"attempt", attempt, "error", err)

		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay *= 2
	}

	if c.deadLetter == nil {
		c.logger.Error("dropping message after retries",
			"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
		return true
	}
	if dlErr := c.deadLetter(ctx, msg, err); dlErr != nil {
		c.logger.Error("dead letter failed, offset left uncommitted",
			"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", dlErr)
		return false
	}
	return true
}

func fromKafkaMessage(m kafkago.Message) Message {
	msg := Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
