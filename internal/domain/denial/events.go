package denial

import (
	"time"

	"github.com/google/uuid"
)

// BaseEvent carries the envelope fields common to all appeal lifecycle
// events published to the message bus.
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewBaseEvent constructs an envelope for the given aggregate.
func NewBaseEvent(aggregateID string) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
	}
}

// AppealGeneratedEvent is published after an appeal is successfully
// generated.
type AppealGeneratedEvent struct {
	BaseEvent
	PayerName       string       `json:"payer_name,omitempty"`
	Reason          ReasonType   `json:"denial_reason"`
	ConfidenceScore float64      `json:"confidence_score"`
	LetterSource    LetterSource `json:"letter_source"`
}

// NewAppealGeneratedEvent builds the event from a pipeline result.
func NewAppealGeneratedEvent(res *AppealResult) *AppealGeneratedEvent {
	ev := &AppealGeneratedEvent{
		BaseEvent:       NewBaseEvent(res.AppealID),
		ConfidenceScore: res.ConfidenceScore,
		LetterSource:    res.LetterSource,
	}
	if res.DenialInfo != nil {
		ev.PayerName = res.DenialInfo.PayerName
		ev.Reason = res.DenialInfo.Reason
	}
	return ev
}

// AppealFailedEvent is published when a request fails before a result is
// produced (validation, conversion, persistence).
type AppealFailedEvent struct {
	BaseEvent
	Stage string `json:"stage"`
	Code  string `json:"code"`
}

// NewAppealFailedEvent builds a failure event.  aggregateID may be empty when
// the failure happened before an appeal ID was assigned.
func NewAppealFailedEvent(aggregateID, stage, code string) *AppealFailedEvent {
	return &AppealFailedEvent{
		BaseEvent: NewBaseEvent(aggregateID),
		Stage:     stage,
		Code:      code,
	}
}
