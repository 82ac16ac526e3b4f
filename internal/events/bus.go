package events

import (
	"sync"
)

// SubscriptionID identifies one registered handler within a topic.
type SubscriptionID uint64

// Handler receives an event payload. Handlers run synchronously in the
// emitting goroutine.
type Handler func(payload any)

// Bus is a concurrency-safe publish/subscribe dispatcher for the ledger's
// observable events. Handler references are snapshotted before dispatch, so
// a handler may subscribe or unsubscribe without deadlocking an Emit in
// progress.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[SubscriptionID]Handler
	nextID SubscriptionID
}

func NewBus() *Bus {
	return &Bus{
		topics: make(map[string]map[SubscriptionID]Handler),
	}
}

// Subscribe registers handler for the topic and returns its subscription id.
func (b *Bus) Subscribe(topic string, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.topics[topic] == nil {
		b.topics[topic] = make(map[SubscriptionID]Handler)
	}
	b.topics[topic][id] = handler

	return id
}

// Unsubscribe drops the handler registered under id for the topic.
func (b *Bus) Unsubscribe(topic string, id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers, ok := b.topics[topic]
	if !ok {
		return
	}

	delete(handlers, id)
	if len(handlers) == 0 {
		delete(b.topics, topic)
	}
}

// Emit delivers payload to every handler subscribed to the topic.
func (b *Bus) Emit(topic string, payload any) {
	b.mu.RLock()
	snapshot := make([]Handler, 0, len(b.topics[topic]))
	for _, handler := range b.topics[topic] {
		snapshot = append(snapshot, handler)
	}
	b.mu.RUnlock()

	for _, handler := range snapshot {
		handler(payload)
	}
}

// SubscriberCount reports the number of handlers registered for the topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
