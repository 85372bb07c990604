// Package bus is a small in-process publish/subscribe channel that lets page
// components report events to the engine without sharing any state with it.
package bus

import "sync"

// TopicUnlock carries a single achievement id reported by another component.
const TopicUnlock = "ee-unlock"

type Handler func(payload string)

type subscription struct {
	handle  int
	handler Handler
}

type Bus struct {
	mu     sync.RWMutex
	next   int
	topics map[string][]subscription
}

func New() *Bus {
	return &Bus{topics: map[string][]subscription{}}
}

// Subscribe registers h for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic string, h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	handle := b.next
	b.topics[topic] = append(b.topics[topic], subscription{handle: handle, handler: h})
	return func() { b.unsubscribe(topic, handle) }
}

func (b *Bus) unsubscribe(topic string, handle int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[topic]
	for i, s := range subs {
		if s.handle == handle {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers payload to every subscriber of topic in subscription
// order, synchronously, and reports how many received it. Handlers run
// outside the bus lock so they may subscribe or publish themselves.
func (b *Bus) Publish(topic, payload string) int {
	b.mu.RLock()
	subs := append([]subscription(nil), b.topics[topic]...)
	b.mu.RUnlock()
	for _, s := range subs {
		s.handler(payload)
	}
	return len(subs)
}

// Subscribers reports the number of handlers on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
