package notifications

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"movitex/internal/shared/config"
	"movitex/pkg/logger"
)

// EventProducer publishes reservation lifecycle events
type EventProducer interface {
	PublishReservationEvent(ctx context.Context, event *ReservationEvent) error
	Close() error
}

// KafkaEventProducer handles publishing reservation events to Kafka
type KafkaEventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaEventProducer connects a sync producer to the configured brokers
func NewKafkaEventProducer(cfg config.KafkaConfig) (*KafkaEventProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner routes by reservation id
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("Kafka reservation producer created", "topic", cfg.Topic)
	return NewKafkaEventProducerWith(producer, cfg.Topic), nil
}

// NewKafkaEventProducerWith wraps an existing sync producer
func NewKafkaEventProducerWith(producer sarama.SyncProducer, topic string) *KafkaEventProducer {
	return &KafkaEventProducer{producer: producer, topic: topic}
}

// PublishReservationEvent publishes a single event to Kafka
func (p *KafkaEventProducer) PublishReservationEvent(ctx context.Context, event *ReservationEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal reservation event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(event),
		Timestamp: event.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send reservation event to Kafka: %w", err)
	}

	logger.GetDefault().InfoContext(ctx, "Reservation event published",
		"topic", p.topic, "partition", partition, "offset", offset,
		"type", event.Type, "reservation_id", event.ReservationID)
	return nil
}

func (p *KafkaEventProducer) createHeaders(event *ReservationEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("reservation_id"), Value: []byte(event.ReservationID)},
		{Key: []byte("authenticated"), Value: []byte(strconv.FormatBool(event.Authenticated))},
		{Key: []byte("producer"), Value: []byte("movitex-reservations")},
		{Key: []byte("created_at"), Value: []byte(event.CreatedAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (p *KafkaEventProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
		logger.GetDefault().Info("Kafka reservation producer closed")
	}
	return nil
}

// NoopProducer is used when Kafka is disabled
type NoopProducer struct{}

func (NoopProducer) PublishReservationEvent(context.Context, *ReservationEvent) error { return nil }
func (NoopProducer) Close() error                                                      { return nil }
