// Package events defines the domain events consumed and produced by the workflow engine.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic is the single Kafka topic carrying every event; consumers route by EventTypeMetadataKey.
const Topic = "hireflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	RuleID      string         `json:"rule_id,omitempty"`
	ExecutionID string         `json:"execution_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, ruleID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RuleID:    ruleID,
		Metadata:  make(map[string]any),
	}
}

// WithExecution returns a copy of the base event bound to an execution.
func (b BaseEvent) WithExecution(executionID string) BaseEvent {
	b.ExecutionID = executionID

	return b
}

var factories = map[EventType]func() any{}

func register(eventType EventType, factory func() any) {
	factories[eventType] = factory
}

// New returns a pointer to a zero value of the struct carried by eventType,
// ready to be unmarshalled. ok is false for unknown types.
func New(eventType EventType) (event any, ok bool) {
	factory, ok := factories[eventType]
	if !ok {
		return nil, false
	}

	return factory(), true
}

// Known reports whether eventType has a registered payload struct.
func Known(eventType EventType) bool {
	_, ok := factories[eventType]

	return ok
}
