// Package refract adapts a component's lifecycle into reactive streams and
// dispatches the effects derived from them back into the host.
//
// A [Component] exposes three kinds of channels: a single-shot mount
// signal, a single-shot unmount signal, and one lazily created channel per
// observed property. An effect factory composes those channels with the
// operators in the stream package into a stream of effects; [Subscribe]
// delivers each effect to a handler until the instance is torn down.
//
// [WithEffects] ties the pieces together:
//
//	counter := refract.WithEffects(handlers, effects)(view)
//	inst := counter.New()
//	if err := inst.Mount(Props{Value: 1}); err != nil {
//	    return err
//	}
//	defer inst.Unmount()
//
// # Ordering
//
// The mount signal is emitted before the initial properties are pushed, so
// effects derived from mount always precede those derived from the first
// render. Unmount is fully propagated, and effects it triggers are
// delivered, before the effect subscription is released. Values pushed to
// the same property are emitted in push order; consecutive values that are
// shallowly equal collapse into one emission.
//
// # Bindings
//
// Channels are created through a stream.Binding. The default binding is
// stream.SubjectBinding; event.Binding routes every channel through an
// event.Bus instead.
//
// # Thread Safety
//
// Instances are meant to be driven from a single goroutine such as the
// Bubble Tea update loop. Effect sources that complete on other goroutines
// (stream.FromFunc) are marshalled back onto that loop with [WithScheduler].
// The Component and Subscription types are safe for concurrent use, but
// cross-goroutine ordering between pushes is not defined.
package refract
