package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/careloop/appealgen/internal/config"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/pkg/errors"
)

// messageWriter abstracts kafka.Writer for testing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes event envelopes to Kafka.  A single producer serves all
// topics; messages carry their topic explicitly.
type Producer struct {
	writer messageWriter
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a producer from configuration.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	acks := kafka.RequireOne
	switch cfg.RequiredAcks {
	case 0:
		acks = kafka.RequireNone
	case -1:
		acks = kafka.RequireAll
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	maxAttempts := cfg.ProducerRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		MaxAttempts:  maxAttempts,
		BatchSize:    cfg.BatchSize,
		WriteTimeout: writeTimeout,
		Async:        cfg.Async,
	}

	return &Producer{writer: writer, logger: logger.Named("kafka")}
}

// Publish serialises the envelope and writes it to the topic, keyed by the
// envelope's event ID so retries of the same event land on one partition.
func (p *Producer) Publish(ctx context.Context, topic string, envelope *EventEnvelope) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeAppealEventFailed, "producer closed")
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(envelope.EventID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(envelope.EventType)},
			{Key: "source", Value: []byte(envelope.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			logging.String("topic", topic),
			logging.String("event_type", envelope.EventType),
			logging.Err(err),
		)
		return errors.Wrap(err, errors.ErrCodeAppealEventFailed, "failed to publish event")
	}

	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_id", envelope.EventID),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
