package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	ClientID     string
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	Compression  kafka.Compression
}

// DefaultProducerConfig returns the settings used for payment events: small
// batches flushed quickly, acknowledged by every in-sync replica.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		ClientID:     "payment-service",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Compression:  kafka.Snappy,
	}
}

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes Event envelopes.
type Producer struct {
	writer  MessageWriter
	brokers []string
	dialer  *kafka.Dialer
	logger  *slog.Logger
}

// NewProducer builds a synchronous kafka-go writer. Nothing is dialled until
// the first Publish.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Compression:  cfg.Compression,
		RequiredAcks: kafka.RequireAll,
		Transport:    &kafka.Transport{ClientID: cfg.ClientID},
	}

	p := NewProducerWithWriter(w, cfg.Brokers, logger)
	p.dialer = &kafka.Dialer{ClientID: cfg.ClientID, Timeout: 5 * time.Second}
	return p
}

// NewProducerWithWriter creates a producer over an existing writer.
func NewProducerWithWriter(w MessageWriter, brokers []string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		writer:  w,
		brokers: brokers,
		dialer:  kafka.DefaultDialer,
		logger:  logger,
	}
}

// Publish writes event to topic, keyed by PartitionKey, with the caller's
// trace context injected into the message headers.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	if err := event.Validate(); err != nil {
		publishErrorsTotal.WithLabelValues(topic, reasonInvalid).Inc()
		return err
	}
	value, err := event.Marshal()
	if err != nil {
		publishErrorsTotal.WithLabelValues(topic, reasonMarshal).Inc()
		return fmt.Errorf("marshal event: %w", err)
	}
	messageBytes.WithLabelValues(topic).Observe(float64(len(value)))

	msg := kafka.Message{
		Topic:   topic,
		Key:     event.PartitionKey(),
		Value:   value,
		Headers: event.headers(),
	}
	otel.GetTextMapPropagator().Inject(ctx, NewHeaderCarrier(&msg.Headers))

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	publishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())

	log := p.logger.With(
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
	)
	if err != nil {
		publishErrorsTotal.WithLabelValues(topic, reasonWrite).Inc()
		log.ErrorContext(ctx, "kafka publish failed", slog.String("error", err.Error()))
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	publishedTotal.WithLabelValues(topic, event.EventType).Inc()
	log.DebugContext(ctx, "kafka event published")
	return nil
}

// Ping reports whether any configured broker answers a metadata request.
func (p *Producer) Ping(ctx context.Context) error {
	return pingBrokers(ctx, p.dialer, p.brokers)
}

// PingBrokers dials brokers in order and returns nil on the first one that
// answers a metadata request.
func PingBrokers(ctx context.Context, brokers []string) error {
	return pingBrokers(ctx, kafka.DefaultDialer, brokers)
}

func pingBrokers(ctx context.Context, dialer *kafka.Dialer, brokers []string) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}

	var errs []error
	for _, addr := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", errors.Join(errs...))
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
