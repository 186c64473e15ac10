package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "AGENT_REQUEST_PROCESSED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewRequestProcessed builds the event emitted after each answered question.
func NewRequestProcessed(sessionId, question, answer string, categories []string, errs []map[string]interface{}, elapsedMs int64) Event {
	return BaseEvent{
		Type: "AGENT_REQUEST_PROCESSED",
		Data: map[string]interface{}{
			"session_id": sessionId,
			"question":   question,
			"answer":     answer,
			"categories": categories,
			"errors":     errs,
			"elapsed_ms": elapsedMs,
		},
		OccurredAt: time.Now().UTC(),
	}
}
