// Package kafka publishes kauni events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/kauni/pkg/eventstream"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config configures a Kafka publisher.
type Config struct {
	// Brokers is a comma separated list of broker addresses.
	Brokers string
	Topic   string
}

// Publisher writes events as JSON messages keyed by event type.
type Publisher struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewPublisher creates a publisher backed by a kafka-go Writer.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	var brokers []string
	for b := range strings.SplitSeq(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka publisher configured",
		"brokers", brokers,
		"topic", cfg.Topic,
	)

	return NewPublisherWithWriter(writer, logger), nil
}

// NewPublisherWithWriter creates a publisher over an existing writer.
func NewPublisherWithWriter(writer MessageWriter, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// PublishChat writes a chat answered event.
func (p *Publisher) PublishChat(ctx context.Context, event *eventstream.ChatAnsweredEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.write(ctx, event.Envelope, event)
}

// PublishFeedback writes a feedback event.
func (p *Publisher) PublishFeedback(ctx context.Context, event *eventstream.FeedbackEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return p.write(ctx, event.Envelope, event)
}

func (p *Publisher) write(ctx context.Context, env eventstream.Envelope, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", env.EventType, err)
	}

	msg := kafkago.Message{
		Key:   []byte(env.EventID),
		Value: value,
		Time:  env.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", env.EventType, err)
	}

	p.logger.Debug("published event",
		"event_type", env.EventType,
		"event_id", env.EventID,
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
