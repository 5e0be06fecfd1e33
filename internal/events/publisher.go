package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// RatesIngestedEvent is emitted after new observations for a currency were stored.
type RatesIngestedEvent struct {
	EventID    string    `json:"eventId"`
	Currency   string    `json:"currency"`
	Inserted   int       `json:"inserted"`
	FirstDate  string    `json:"firstDate"`
	LastDate   string    `json:"lastDate"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers ingestion events. Implementations must honour ctx.
type Publisher interface {
	PublishRatesIngested(ctx context.Context, event RatesIngestedEvent) error
	Close() error
}

// NewSaramaConfig returns the producer config used for rate events.
func NewSaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Timeout = 5 * time.Second
	return config
}

// KafkaPublisher publishes events with a sarama SyncProducer, keyed by currency.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

// NewKafkaPublisher connects a SyncProducer to brokers.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	log.Info("Kafka producer created", slog.String("topic", topic), slog.Any("brokers", brokers))
	return NewKafkaPublisherWithProducer(producer, topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

func (p *KafkaPublisher) PublishRatesIngested(ctx context.Context, event RatesIngestedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal rates ingested event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Currency),
		Value: sarama.ByteEncoder(payload),
	}

	type result struct {
		partition int32
		offset    int64
		err       error
	}
	resultCh := make(chan result, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		resultCh <- result{partition, offset, err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			p.log.Error("Kafka send failed", slog.String("currency", event.Currency), slog.String("error", res.err.Error()))
			return res.err
		}
		p.log.Debug("Kafka send succeeded",
			slog.String("currency", event.Currency),
			slog.Int("partition", int(res.partition)),
			slog.Int64("offset", res.offset))
		return nil
	case <-ctx.Done():
		p.log.Warn("Kafka send cancelled", slog.String("currency", event.Currency))
		return ctx.Err()
	}
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	p.log.Info("Closing kafka producer")
	return p.producer.Close()
}

// NoopPublisher drops events; used when Kafka is disabled.
type NoopPublisher struct {
	log *slog.Logger
}

func NewNoopPublisher(log *slog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) PublishRatesIngested(_ context.Context, event RatesIngestedEvent) error {
	p.log.Debug("Kafka disabled, event not sent", slog.String("currency", event.Currency), slog.Int("inserted", event.Inserted))
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
