package event

import (
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/refract/internal/logging"
)

// Handler is a function that handles an event.
type Handler func(Event)

// subscription represents a registered event handler.
type subscription struct {
	id        string
	eventType string
	handler   Handler
}

// patternSubscription matches event types against a compiled glob.
type patternSubscription struct {
	subscription
	glob glob.Glob
}

// wildcard is the pseudo event type used by SubscribeAll.
const wildcard = "*"

// Bus is a simple synchronous pub-sub event bus.
// It allows components to communicate without direct dependencies.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	patterns      []patternSubscription
	nextID        atomic.Uint64
	logger        *logging.Logger
}

// BusOption customizes Bus construction.
type BusOption func(*Bus)

// WithLogger routes handler panic reports to logger.
func WithLogger(logger *logging.Logger) BusOption {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subscriptions: make(map[string][]subscription),
		logger:        logging.NopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.generateID()
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})
	return id
}

// SubscribeAll registers a handler for all event types.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(wildcard, handler)
}

// SubscribePattern registers a handler for every event type matching the
// glob pattern. '.' separates segments: "component.*" matches
// "component.mounted", and "channel.**" matches every channel topic.
func (b *Bus) SubscribePattern(pattern string, handler Handler) (string, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.generateID()
	patterns := make([]patternSubscription, 0, len(b.patterns)+1)
	patterns = append(patterns, b.patterns...)
	b.patterns = append(patterns, patternSubscription{
		subscription: subscription{id: id, eventType: pattern, handler: handler},
		glob:         g,
	})
	return id, nil
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			// Copy instead of re-slicing in place: Publish may hold a
			// snapshot of the old backing array.
			remaining := make([]subscription, 0, len(subs)-1)
			remaining = append(remaining, subs[:i]...)
			remaining = append(remaining, subs[i+1:]...)
			if len(remaining) == 0 {
				delete(b.subscriptions, eventType)
			} else {
				b.subscriptions[eventType] = remaining
			}
			return true
		}
	}
	for i, sub := range b.patterns {
		if sub.id != id {
			continue
		}
		remaining := make([]patternSubscription, 0, len(b.patterns)-1)
		remaining = append(remaining, b.patterns[:i]...)
		b.patterns = append(remaining, b.patterns[i+1:]...)
		return true
	}
	return false
}

// Publish dispatches an event to all registered handlers.
// Specific handlers (subscribed to this event type) are called first,
// then matching pattern handlers, then wildcard handlers (subscribed via
// SubscribeAll).
// Within each group, handlers are called in registration order.
// If a handler panics, the panic is logged, recovered, and publishing
// continues to remaining handlers.
func (b *Bus) Publish(event Event) {
	b.publish(event, true)
}

// publishStrict is Publish without panic recovery for handlers subscribed
// to the event's own type; a panic there propagates to the publisher.
// Pattern and wildcard handlers are observers and stay recovered. Channel
// bindings publish this way so effect logic panics surface as they would
// with an in-process subject.
func (b *Bus) publishStrict(event Event) {
	b.publish(event, false)
}

func (b *Bus) publish(event Event, recoverSpecific bool) {
	if event == nil {
		return
	}
	b.mu.RLock()
	eventType := event.EventType()

	specificSubs := make([]subscription, len(b.subscriptions[eventType]))
	copy(specificSubs, b.subscriptions[eventType])

	var patternSubs []subscription
	for _, sub := range b.patterns {
		if sub.glob.Match(eventType) {
			patternSubs = append(patternSubs, sub.subscription)
		}
	}

	var wildcardSubs []subscription
	if eventType != wildcard {
		wildcardSubs = make([]subscription, len(b.subscriptions[wildcard]))
		copy(wildcardSubs, b.subscriptions[wildcard])
	}
	b.mu.RUnlock()

	for _, sub := range specificSubs {
		if recoverSpecific {
			b.safeCall(sub.handler, event)
		} else {
			sub.handler(event)
		}
	}
	for _, sub := range patternSubs {
		b.safeCall(sub.handler, event)
	}
	for _, sub := range wildcardSubs {
		b.safeCall(sub.handler, event)
	}
}

// safeCall invokes a handler and recovers from any panics so one
// misbehaving handler cannot block delivery to the others.
func (b *Bus) safeCall(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", event.EventType(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	handler(event)
}

// generateID creates a unique subscription ID.
func (b *Bus) generateID() string {
	return "sub-" + strconv.FormatUint(b.nextID.Add(1), 36)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string][]subscription)
	b.patterns = nil
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := len(b.patterns)
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
