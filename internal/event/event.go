package event

import (
	"time"

	"github.com/google/uuid"
)

// Meta carries standard information attached to every event.
type Meta struct {
	// ID uniquely identifies this event instance.
	ID string

	// Time is when the event was created.
	Time time.Time

	// Source identifies the component that published the event.
	Source string

	// Revision is the engine revision the event describes.
	Revision uint64
}

// Event is one notification delivered to subscribers. Events are values
// and immutable once published.
type Event struct {
	Topic   Topic
	Payload any
	Meta    Meta
}

// New creates an event with a fresh id and the current time.
func New(topic Topic, payload any, source string) Event {
	return Event{
		Topic:   topic,
		Payload: payload,
		Meta: Meta{
			ID:     uuid.New().String(),
			Time:   time.Now(),
			Source: source,
		},
	}
}

// WithRevision returns a copy of the event stamped with an engine revision.
func (e Event) WithRevision(rev uint64) Event {
	e.Meta.Revision = rev
	return e
}
