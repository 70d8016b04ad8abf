// Package stream provides the minimal push-based stream primitive used by
// Refract.
//
// The package deliberately stays small: an [Observable] is anything that can
// be subscribed to with an [Observer], and every subscription returns a
// [Subscription] handle that can be released. Effect factories compose
// observables with the operators in this package; the adapter core only
// relies on Subscribe/Unsubscribe plus the [Subject] emitter.
//
// # Main Types
//
//   - [Observable]: subscribable sequence of values
//   - [Observer]: Next/Error/Complete callbacks, each optional
//   - [Subscription]: releasable binding, Unsubscribe is idempotent
//   - [Subject]: push-based emitter that is also an Observable
//
// # Operators
//
// [Map], [MapTo], [Filter], [Merge], [CombineLatest2], [SwitchMap],
// [DistinctUntilChanged], [Take] and the sources [Of], [Empty], [Never],
// [Throw], [FromFunc] and [FromChannel].
//
// # Delivery Guarantees
//
// Observers are called synchronously on the emitting goroutine. Operators
// that join several sources ([Merge], [CombineLatest2], [SwitchMap]) funnel
// notifications through a serializer, so downstream observers are never
// called concurrently and a value emitted from inside an observer is
// delivered after the current one instead of recursing. Unsubscribing from
// inside an observer stops new notifications; the ones already queued are
// delivered before the unsubscribe returns.
//
// [FromFunc] and [FromChannel] emit from their own goroutines. When the
// subscribing [Observer] carries a Schedule function, they hand every
// notification to it instead, so a host can run them on its event loop.
// Operators pass Schedule upstream.
//
// # Basic Usage
//
//	clicks := stream.NewSubject[int]()
//	doubled := stream.Map(clicks, func(v int) int { return v * 2 })
//
//	sub := doubled.Subscribe(stream.Observer[int]{
//	    Next: func(v int) { fmt.Println(v) },
//	})
//	defer sub.Unsubscribe()
//
//	clicks.Emit(21) // prints 42
package stream
