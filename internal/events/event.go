// Package events provides the domain event bus connecting workflow progress
// to downstream handlers. Handlers run in ascending priority order;
// synchronous handlers complete before Dispatch returns, asynchronous
// handlers run on a bounded worker lane.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies a kind of domain event.
type Type string

const (
	TranscriptionCreated   Type = "transcription.created"
	TranscriptionStarted   Type = "transcription.started"
	TranscriptionCompleted Type = "transcription.completed"
	TranscriptionFailed    Type = "transcription.failed"
	TranslationCompleted   Type = "translation.completed"
)

// Event is an immutable record of something that happened to an aggregate.
type Event struct {
	ID          string
	Type        Type
	AggregateID int64
	Version     int
	OccurredAt  time.Time
	Metadata    map[string]string
}

// New constructs an event with a fresh identifier and the current time.
func New(eventType Type, aggregateID int64, metadata map[string]string) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Version:     1,
		OccurredAt:  time.Now().UTC(),
		Metadata:    metadata,
	}
}

// Meta returns a metadata value, or empty string when absent.
func (e Event) Meta(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}
