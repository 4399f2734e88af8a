package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishToTypedSubscriber(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(EventConfigSaved, func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		wg.Done()
	})

	bus.Publish(Event{Type: EventConfigSaved, Data: map[string]interface{}{"exchanges": 2}})
	bus.Publish(Event{Type: EventValidationFailed}) // different type, not delivered

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventConfigSaved {
		t.Errorf("Expected CONFIG_SAVED, got %s", received[0].Type)
	}
	if received[0].Data["exchanges"] != 2 {
		t.Errorf("Expected event data preserved, got %v", received[0].Data)
	}
}

func TestPublishToAllSubscriber(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(3)

	var mu sync.Mutex
	seen := make(map[EventType]bool)

	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		seen[e.Type] = true
		mu.Unlock()
		wg.Done()
	})

	bus.Publish(Event{Type: EventConfigLoaded})
	bus.Publish(Event{Type: EventExchangeAdded})
	bus.Publish(Event{Type: EventConfigSaveFailed})

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, et := range []EventType{EventConfigLoaded, EventExchangeAdded, EventConfigSaveFailed} {
		if !seen[et] {
			t.Errorf("SubscribeAll missed %s", et)
		}
	}
}

func TestPublishStampsTimestamp(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	var got Event
	bus.Subscribe(EventConfigLoaded, func(e Event) {
		got = e
		wg.Done()
	})

	before := time.Now().UTC()
	bus.Publish(Event{Type: EventConfigLoaded})
	wg.Wait()

	if got.Timestamp.IsZero() {
		t.Fatal("Expected timestamp to be stamped")
	}
	if got.Timestamp.Before(before.Add(-time.Second)) {
		t.Errorf("Timestamp too old: %v", got.Timestamp)
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic or block.
	bus.Publish(Event{Type: EventConfigSaved})
}
