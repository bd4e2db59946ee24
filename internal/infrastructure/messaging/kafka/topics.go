// Package kafka publishes appeal lifecycle events to the message bus.
package kafka

import (
	"encoding/json"
	"time"
)

// Appeal lifecycle topics.
const (
	TopicAppealGenerated = "appeal.generated"
	TopicAppealFailed    = "appeal.failed"
)

// Event types carried in the envelope.
const (
	EventTypeAppealGenerated = "appeal.generated.v1"
	EventTypeAppealFailed    = "appeal.failed.v1"
)

// envelopeSource identifies this service as the event producer.
const envelopeSource = "appealgen"

// EventEnvelope is the standard wire form for every published event.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload for publication.
func NewEnvelope(eventID, eventType string, payload interface{}) (*EventEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		Source:        envelopeSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       body,
	}, nil
}
