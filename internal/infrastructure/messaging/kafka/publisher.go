package kafka

import (
	"context"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/config"
	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/pkg/errors"
)

// EventPublisher maps appeal domain events onto their topics.  It satisfies
// the orchestrator's publisher contract; the orchestrator treats failures as
// best effort, so errors here never fail a request.
type EventPublisher struct {
	producer       *Producer
	generatedTopic string
	failedTopic    string
}

// NewEventPublisher builds the publisher over a producer.
func NewEventPublisher(producer *Producer, cfg config.KafkaConfig) *EventPublisher {
	generated := cfg.GeneratedTopic
	if generated == "" {
		generated = TopicAppealGenerated
	}
	failed := cfg.FailedTopic
	if failed == "" {
		failed = TopicAppealFailed
	}
	return &EventPublisher{
		producer:       producer,
		generatedTopic: generated,
		failedTopic:    failed,
	}
}

var _ appeal.EventPublisher = (*EventPublisher)(nil)

// PublishGenerated publishes an appeal.generated event.
func (p *EventPublisher) PublishGenerated(ctx context.Context, ev *denial.AppealGeneratedEvent) error {
	envelope, err := NewEnvelope(ev.EventID, EventTypeAppealGenerated, ev)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode generated event")
	}
	return p.producer.Publish(ctx, p.generatedTopic, envelope)
}

// PublishFailed publishes an appeal.failed event.
func (p *EventPublisher) PublishFailed(ctx context.Context, ev *denial.AppealFailedEvent) error {
	envelope, err := NewEnvelope(ev.EventID, EventTypeAppealFailed, ev)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode failed event")
	}
	return p.producer.Publish(ctx, p.failedTopic, envelope)
}
