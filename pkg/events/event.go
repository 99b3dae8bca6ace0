// Package events carries the domain-event contract shared by aggregates and
// the Kafka publisher.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Header names attached to every published event.
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderOccurredAt    = "occurred_at"
)

// DomainEvent is something an aggregate reports after a state change.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent holds the identity and routing fields of an event. Concrete events
// embed it and contribute their own JSON payload.
type BaseEvent struct {
	occurredAt    time.Time
	eventType     string
	aggregateType string
	id            uuid.UUID
	aggregateID   uuid.UUID
}

// NewBaseEvent stamps a fresh event ID and normalises occurredAt to UTC.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.id }
func (e BaseEvent) EventType() string      { return e.eventType }
func (e BaseEvent) AggregateID() uuid.UUID { return e.aggregateID }
func (e BaseEvent) AggregateType() string  { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time  { return e.occurredAt }

// PartitionKey returns the message key for e. Events from the same aggregate
// share a key so consumers see them in order.
func PartitionKey(e DomainEvent) []byte {
	return []byte(e.AggregateID().String())
}

// Headers returns the metadata published next to the event payload.
func Headers(e DomainEvent) map[string]string {
	return map[string]string{
		HeaderEventID:       e.EventID().String(),
		HeaderEventType:     e.EventType(),
		HeaderAggregateType: e.AggregateType(),
		HeaderOccurredAt:    e.OccurredAt().Format(time.RFC3339Nano),
	}
}
