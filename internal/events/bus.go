// Package events provides the in-process event bus carrying configuration
// state transitions to interested subscribers (logging sinks, the
// WebSocket feed).
package events

import (
	"sync"
	"time"
)

// EventType identifies a configuration event.
type EventType string

const (
	EventConfigLoaded     EventType = "CONFIG_LOADED"
	EventConfigSaved      EventType = "CONFIG_SAVED"
	EventConfigSaveFailed EventType = "CONFIG_SAVE_FAILED"
	EventExchangeAdded    EventType = "EXCHANGE_ADDED"
	EventValidationFailed EventType = "VALIDATION_FAILED"
)

// Event is one configuration state transition or failure.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Subscriber handles events. Subscribers run on their own goroutines, so
// publishing never blocks configuration operations.
type Subscriber func(Event)

// Bus manages event publishing and subscriptions.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[EventType][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific event type.
func (b *Bus) Subscribe(eventType EventType, subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for every event.
func (b *Bus) SubscribeAll(subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allSubs = append(b.allSubs, subscriber)
}

// Publish delivers an event to all matching subscribers.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers[event.Type] {
		go sub(event)
	}
	for _, sub := range b.allSubs {
		go sub(event)
	}
}
