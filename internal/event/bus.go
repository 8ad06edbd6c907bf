package event

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// HandlerFunc receives a published event. Handlers run synchronously in
// the publisher's goroutine and must not call back into the publisher's
// locked state.
type HandlerFunc func(Event)

// SubscriptionID identifies one subscription for Unsubscribe.
type SubscriptionID uint64

// subscription pairs a handler with its registration order.
type subscription struct {
	id SubscriptionID
	fn HandlerFunc
}

// Stats is a point-in-time snapshot of bus counters.
type Stats struct {
	Published uint64 // events handed to Publish
	Delivered uint64 // handler invocations that returned normally
	Panics    uint64 // handler invocations recovered from panic
}

// Bus is a synchronous fan-out event bus. The zero value is not usable;
// create one with NewBus.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscription
	byID   map[SubscriptionID]Topic
	nextID uint64

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64

	log zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the bus logger, used only to report recovered
// subscriber panics. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bus) {
		b.log = log
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs: make(map[Topic][]subscription),
		byID: make(map[SubscriptionID]Topic),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for every event published on topic. Handlers for
// one topic run in subscription order.
func (b *Bus) Subscribe(topic Topic, fn HandlerFunc) (SubscriptionID, error) {
	if topic == "" {
		return 0, ErrInvalidTopic
	}
	if fn == nil {
		return 0, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := SubscriptionID(b.nextID)
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	b.byID[id] = topic
	return id, nil
}

// Unsubscribe removes a subscription. Unknown ids return
// ErrSubscriptionNotFound.
func (b *Bus) Unsubscribe(id SubscriptionID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	topic, ok := b.byID[id]
	if !ok {
		return ErrSubscriptionNotFound
	}
	delete(b.byID, id)

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
	return nil
}

// Publish delivers ev to every subscriber of its topic, synchronously, in
// subscription order. A panicking subscriber is recovered, counted, and
// logged; remaining subscribers still run. Publishing to a topic with no
// subscribers is a no-op.
func (b *Bus) Publish(ev Event) {
	b.published.Add(1)

	b.mu.RLock()
	subs := b.subs[ev.Topic]
	// Copy so a handler that subscribes or unsubscribes cannot shift the
	// slice out from under the loop.
	active := make([]subscription, len(subs))
	copy(active, subs)
	b.mu.RUnlock()

	for _, s := range active {
		b.deliver(s, ev)
	}
}

// deliver runs one handler with panic recovery.
func (b *Bus) deliver(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.log.Error().
				Str("topic", string(ev.Topic)).
				Uint64("subscription", uint64(s.id)).
				Interface("panic", r).
				Msg("event subscriber panicked")
		}
	}()
	s.fn(ev)
	b.delivered.Add(1)
}

// SubscriberCount returns the number of subscriptions for a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Panics:    b.panics.Load(),
	}
}
