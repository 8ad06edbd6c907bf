package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrInvalidTopic is returned when a subscription names an empty topic.
	ErrInvalidTopic = errors.New("event: invalid topic")

	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("event: handler cannot be nil")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown id.
	ErrSubscriptionNotFound = errors.New("event: subscription not found")
)
