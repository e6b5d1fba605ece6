// Package events publishes quote and order domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Event types.
const (
	QuoteCreated       = "quote.created"
	QuoteApproved      = "quote.approved"
	QuoteRejected      = "quote.rejected"
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// Event is the envelope written to the topic. Key partitions events of the
// same aggregate together.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New builds an event keyed by the aggregate id.
func New(eventType string, aggregateID int64, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        strconv.FormatInt(aggregateID, 10),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// KafkaPublisher writes events with a sarama SyncProducer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewProducerConfig returns the producer settings used in production.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	return config
}

// NewKafkaPublisher dials brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("events: start producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic, logger), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
			{Key: []byte("event-id"), Value: []byte(event.ID)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("events: send %s: %w", event.Type, err)
	}
	p.logger.Debug("event published", slog.String("type", event.Type), slog.Int("partition", int(partition)), slog.Int64("offset", offset))
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Emit publishes event and logs a failure instead of returning it. Domain
// operations have already committed when events go out.
func Emit(ctx context.Context, pub Publisher, logger *slog.Logger, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("publish domain event", slog.String("type", event.Type), slog.String("key", event.Key), slog.Any("error", err))
	}
}
