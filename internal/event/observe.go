package event

import "github.com/Iron-Ham/refract/internal/stream"

// Observe exposes every event of eventType published on bus as a stream.
// The stream never completes on its own; unsubscribing removes the bus
// subscription.
func Observe(bus *Bus, eventType string) stream.Observable[Event] {
	return stream.Func[Event](func(o stream.Observer[Event]) stream.Subscription {
		id := bus.Subscribe(eventType, o.OnNext)
		return stream.NewSubscription(func() { bus.Unsubscribe(id) })
	})
}

// ObserveAll exposes every event published on bus as a stream.
func ObserveAll(bus *Bus) stream.Observable[Event] {
	return stream.Func[Event](func(o stream.Observer[Event]) stream.Subscription {
		id := bus.SubscribeAll(o.OnNext)
		return stream.NewSubscription(func() { bus.Unsubscribe(id) })
	})
}

// ObserveAs is Observe narrowed to a concrete event type. Events of other
// Go types published under the same event type are skipped.
func ObserveAs[E Event](bus *Bus, eventType string) stream.Observable[E] {
	return stream.Func[E](func(o stream.Observer[E]) stream.Subscription {
		id := bus.Subscribe(eventType, func(e Event) {
			if typed, ok := e.(E); ok {
				o.OnNext(typed)
			}
		})
		return stream.NewSubscription(func() { bus.Unsubscribe(id) })
	})
}
