package event

import (
	"sync"
	"testing"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var received Event
	bus.Subscribe(TypeComponentMounted, func(e Event) {
		received = e
	})

	bus.Publish(NewComponentMountedEvent("counter-1", []string{"value"}))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	mounted, ok := received.(ComponentMountedEvent)
	if !ok {
		t.Fatalf("Expected ComponentMountedEvent, got %T", received)
	}
	if mounted.ComponentID != "counter-1" {
		t.Errorf("Expected component ID 'counter-1', got %q", mounted.ComponentID)
	}
	if mounted.Timestamp().IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestBus_PublishNil(t *testing.T) {
	bus := NewBus()
	bus.SubscribeAll(func(e Event) {
		t.Error("Handler should not be called for a nil event")
	})
	bus.Publish(nil)
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var events []string
	bus.SubscribeAll(func(e Event) {
		events = append(events, e.EventType())
	})

	bus.Publish(newBaseEvent("event.one"))
	bus.Publish(newBaseEvent("event.two"))
	bus.Publish(newBaseEvent("event.three"))

	expected := []string{"event.one", "event.two", "event.three"}
	if len(events) != len(expected) {
		t.Fatalf("Expected %d events, got %d", len(expected), len(events))
	}
	for i, e := range expected {
		if events[i] != e {
			t.Errorf("Expected event %d to be '%s', got '%s'", i, e, events[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.Unsubscribe(id) {
		t.Error("Second Unsubscribe should return false")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after unsubscribe, got %d", bus.SubscriptionCount())
	}

	bus.Publish(newBaseEvent("test.event"))
	if called {
		t.Error("Handler should not be called after unsubscribing")
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	calls := make(map[string]int)
	var secondID string
	bus.Subscribe("test.event", func(e Event) {
		calls["first"]++
		bus.Unsubscribe(secondID)
	})
	secondID = bus.Subscribe("test.event", func(e Event) {
		calls["second"]++
	})

	// The snapshot taken by Publish still includes the second handler.
	bus.Publish(newBaseEvent("test.event"))
	bus.Publish(newBaseEvent("test.event"))

	if calls["first"] != 2 {
		t.Errorf("Expected first handler twice, got %d", calls["first"])
	}
	if calls["second"] != 1 {
		t.Errorf("Expected second handler once, got %d", calls["second"])
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()

	bus.Subscribe("event.one", func(e Event) {})
	bus.Subscribe("event.two", func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 3 {
		t.Errorf("Expected 3 subscriptions before clear, got %d", bus.SubscriptionCount())
	}

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after clear, got %d", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe("test.event", func(e Event) {
		calls++
	})

	bus.Publish(newBaseEvent("test.event"))

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(newBaseEvent("test.event"))
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("Expected 100 calls, got %d", calls)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			id := bus.Subscribe("test.event", func(e Event) {})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after concurrent add/remove, got %d", bus.SubscriptionCount())
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus()

	ids := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe("test.event", func(e Event) {})
		if ids[id] {
			t.Errorf("Duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}

func TestBus_SubscribePattern(t *testing.T) {
	bus := NewBus()

	var lifecycle, channels, order []string
	if _, err := bus.SubscribePattern("component.*", func(e Event) {
		lifecycle = append(lifecycle, e.EventType())
		order = append(order, "pattern")
	}); err != nil {
		t.Fatalf("SubscribePattern() = %v", err)
	}
	if _, err := bus.SubscribePattern("channel.**", func(e Event) {
		channels = append(channels, e.EventType())
	}); err != nil {
		t.Fatalf("SubscribePattern() = %v", err)
	}
	bus.Subscribe(TypeComponentMounted, func(Event) { order = append(order, "specific") })
	bus.SubscribeAll(func(Event) { order = append(order, "all") })

	bus.Publish(NewComponentMountedEvent("c-1", nil))
	bus.Publish(NewComponentUnmountedEvent("c-1", 0))
	bus.Publish(NewEffectDispatchedEvent("c-1", "x"))
	bus.Publish(NewChannelEvent("channel.1.2.value", "value", ChannelNext, 3))

	if len(lifecycle) != 2 {
		t.Errorf("component.* matched %v", lifecycle)
	}
	if len(channels) != 1 || channels[0] != "channel.1.2.value" {
		t.Errorf("channel.** matched %v", channels)
	}
	if got := order[:3]; got[0] != "specific" || got[1] != "pattern" || got[2] != "all" {
		t.Errorf("delivery order = %v, want specific, pattern, all", got)
	}
}

func TestBus_SubscribePatternSegments(t *testing.T) {
	bus := NewBus()
	matched := 0
	if _, err := bus.SubscribePattern("channel.*", func(Event) { matched++ }); err != nil {
		t.Fatalf("SubscribePattern() = %v", err)
	}
	bus.Publish(NewChannelEvent("channel.1.2.value", "value", ChannelNext, 1))
	if matched != 0 {
		t.Error("a single * should not cross '.' separators")
	}
}

func TestBus_SubscribePatternInvalid(t *testing.T) {
	bus := NewBus()
	if _, err := bus.SubscribePattern("component.[", func(Event) {}); err == nil {
		t.Error("expected an error for a malformed pattern")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("failed pattern should not register, count = %d", bus.SubscriptionCount())
	}
}

func TestBus_UnsubscribePattern(t *testing.T) {
	bus := NewBus()
	called := false
	id, err := bus.SubscribePattern("component.*", func(Event) { called = true })
	if err != nil {
		t.Fatalf("SubscribePattern() = %v", err)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should find the pattern subscription")
	}
	bus.Publish(NewComponentMountedEvent("c-1", nil))
	if called {
		t.Error("handler called after Unsubscribe")
	}

	if _, err := bus.SubscribePattern("channel.**", func(Event) {}); err != nil {
		t.Fatalf("SubscribePattern() = %v", err)
	}
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Clear should drop pattern subscriptions, count = %d", bus.SubscriptionCount())
	}
}
