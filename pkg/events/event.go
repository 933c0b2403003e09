package events

import (
	"context"
	"time"
)

// Event type codes, published on "events.<type>"
const (
	TypeJobSearchPerformed = "JOB_SEARCH_PERFORMED"
	TypeSessionCleared     = "SESSION_CLEARED"
	TypeKnowledgeIndexed   = "KNOWLEDGE_INDEXED"
	TypeKnowledgeReset     = "KNOWLEDGE_RESET"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_CLEARED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher sends events to the bus. Publishing is best effort for callers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event, used when no bus is configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

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

// Envelope is the wire form of an event
type Envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), OccurredAt: e.Timestamp().UTC(), Data: e.Payload()}
}

func (env Envelope) Event() BaseEvent {
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
}

func NewJobSearchPerformed(sessionID, query, country string, total, kept int) BaseEvent {
	return BaseEvent{
		Type: TypeJobSearchPerformed,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"query":      query,
			"country":    country,
			"total":      total,
			"kept":       kept,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionCleared(sessionID string) BaseEvent {
	return BaseEvent{
		Type:       TypeSessionCleared,
		Data:       map[string]interface{}{"session_id": sessionID},
		OccurredAt: time.Now(),
	}
}

func NewKnowledgeIndexed(documentID string, chunks int) BaseEvent {
	return BaseEvent{
		Type:       TypeKnowledgeIndexed,
		Data:       map[string]interface{}{"document_id": documentID, "chunks": chunks},
		OccurredAt: time.Now(),
	}
}

func NewKnowledgeReset() BaseEvent {
	return BaseEvent{
		Type:       TypeKnowledgeReset,
		Data:       map[string]interface{}{},
		OccurredAt: time.Now(),
	}
}
