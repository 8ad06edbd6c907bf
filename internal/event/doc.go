// Package event provides a synchronous publish/subscribe bus carrying
// tree-change and notation notifications from the engine to interested
// host components.
//
// Delivery is strictly synchronous: Publish invokes every matching
// subscriber in the caller's goroutine before returning, so subscribers
// observe engine state exactly as it was when the event fired. Subscriber
// panics are recovered and counted, never propagated to the publisher.
//
// Events carry a hierarchical topic (see topics.go), an arbitrary payload,
// and metadata with a unique id, timestamp, source, and the engine revision
// the event describes.
package event
