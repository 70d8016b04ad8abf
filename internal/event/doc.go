// Package event provides a synchronous pub-sub event bus and a stream
// binding built on top of it.
//
// The bus decouples the pieces of a Refract application: component
// instances can publish lifecycle and effect notifications without knowing
// who listens, and stream channels can be routed through bus topics instead
// of in-process subjects.
//
// # Main Types
//
//   - [Event]: interface all events implement, providing EventType() and Timestamp()
//   - [Bus]: synchronous pub-sub dispatcher with thread-safe operations
//   - [Handler]: function type for event handlers (func(Event))
//   - [Binding]: a stream.Binding whose channels are bus topics
//
// # Event Categories
//
// Component Lifecycle:
//   - [ComponentMountedEvent]: a component instance mounted
//   - [ComponentUnmountedEvent]: a component instance unmounted
//
// Effects:
//   - [EffectDispatchedEvent]: an effect was delivered to the handler
//   - [StreamErrorEvent]: the effect stream failed
//
// Channels:
//   - [ChannelEvent]: a value or completion travelling on a bound channel
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously and protected against panics: a panicking handler does not
// prevent other handlers from being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeComponentMounted, func(e event.Event) {
//	    mounted := e.(event.ComponentMountedEvent)
//	    log.Printf("component %s mounted", mounted.ComponentID)
//	})
//
//	// Observe a topic as a stream
//	effects := event.Observe(bus, event.TypeEffectDispatched)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - component.mounted, component.unmounted
//   - effect.dispatched
//   - stream.error
//
// Channel topics use "channel.<binding>.<sequence>.<name>".
package event
