// Package event defines event types for decoupling Refract components.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "component.mounted")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event types published by component instances.
const (
	TypeComponentMounted   = "component.mounted"
	TypeComponentUnmounted = "component.unmounted"
	TypeEffectDispatched   = "effect.dispatched"
	TypeStreamError        = "stream.error"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Component Lifecycle Events
// -----------------------------------------------------------------------------

// ComponentMountedEvent is emitted after a component instance mounted and
// its effect subscription is live.
type ComponentMountedEvent struct {
	baseEvent
	ComponentID string   // Unique identifier for the instance
	Properties  []string // Property names present at mount
}

// NewComponentMountedEvent creates a ComponentMountedEvent.
func NewComponentMountedEvent(componentID string, properties []string) ComponentMountedEvent {
	return ComponentMountedEvent{
		baseEvent:   newBaseEvent(TypeComponentMounted),
		ComponentID: componentID,
		Properties:  properties,
	}
}

// ComponentUnmountedEvent is emitted after a component instance unmounted
// and released its subscription.
type ComponentUnmountedEvent struct {
	baseEvent
	ComponentID string
	Effects     int // Number of effects delivered during the instance lifetime
}

// NewComponentUnmountedEvent creates a ComponentUnmountedEvent.
func NewComponentUnmountedEvent(componentID string, effects int) ComponentUnmountedEvent {
	return ComponentUnmountedEvent{
		baseEvent:   newBaseEvent(TypeComponentUnmounted),
		ComponentID: componentID,
		Effects:     effects,
	}
}

// -----------------------------------------------------------------------------
// Effect Events
// -----------------------------------------------------------------------------

// EffectDispatchedEvent is emitted each time an effect reaches the handler.
type EffectDispatchedEvent struct {
	baseEvent
	ComponentID string
	Effect      any
}

// NewEffectDispatchedEvent creates an EffectDispatchedEvent.
func NewEffectDispatchedEvent(componentID string, effect any) EffectDispatchedEvent {
	return EffectDispatchedEvent{
		baseEvent:   newBaseEvent(TypeEffectDispatched),
		ComponentID: componentID,
		Effect:      effect,
	}
}

// StreamErrorEvent is emitted when an effect stream fails.
type StreamErrorEvent struct {
	baseEvent
	ComponentID string
	Err         error
	Handled     bool // Whether an error handler received the error
}

// NewStreamErrorEvent creates a StreamErrorEvent.
func NewStreamErrorEvent(componentID string, err error, handled bool) StreamErrorEvent {
	return StreamErrorEvent{
		baseEvent:   newBaseEvent(TypeStreamError),
		ComponentID: componentID,
		Err:         err,
		Handled:     handled,
	}
}

// -----------------------------------------------------------------------------
// Channel Events
// -----------------------------------------------------------------------------

// ChannelKind distinguishes values from the completion marker.
type ChannelKind int

const (
	// ChannelNext carries a value.
	ChannelNext ChannelKind = iota
	// ChannelComplete ends the channel.
	ChannelComplete
)

// ChannelEvent carries one notification of a bus-bound channel. Its event
// type is the channel topic.
type ChannelEvent struct {
	baseEvent
	Name  string // Channel name as given to the binding
	Kind  ChannelKind
	Value any
}

// NewChannelEvent creates a ChannelEvent for topic.
func NewChannelEvent(topic, name string, kind ChannelKind, value any) ChannelEvent {
	return ChannelEvent{
		baseEvent: newBaseEvent(topic),
		Name:      name,
		Kind:      kind,
		Value:     value,
	}
}
