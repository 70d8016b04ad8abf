package refract

import (
	"sync"

	"github.com/Iron-Ham/refract/internal/stream"
)

// State is the state of a Subscription.
type State int

const (
	StateSubscribed State = iota
	StateUnsubscribed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	case StateUnsubscribed:
		return "unsubscribed"
	default:
		return "unknown"
	}
}

// Subscription delivers the effects of one stream to a handler.
//
// Once Unsubscribe returns, no further onEffect call starts. Unsubscribe
// may be called from inside onEffect: notifications the stream had already
// queued behind the running delivery, such as an effect triggered
// synchronously by the same call, are delivered before it returns, nested
// in the running delivery. The subscription closes for good once that
// delivery unwinds.
//
// Without a scheduler, asynchronous sources call onEffect on their own
// goroutines, and a delivery already running there may finish after
// Unsubscribe returns. A Subscription is never reused.
type Subscription struct {
	mu       sync.Mutex
	released bool // Unsubscribe was called
	closed   bool // no delivery may start
	depth    int  // deliveries in progress
	upstream stream.Subscription
}

// Subscribe subscribes to src and invokes onEffect synchronously for every
// value, on the goroutine that emitted it. Stream errors go to onError, or
// are swallowed when onError is nil. Completion is ignored.
func Subscribe[E any](src stream.Observable[E], onEffect func(E), onError func(error)) *Subscription {
	return SubscribeOn(src, nil, onEffect, onError)
}

// SubscribeOn is Subscribe with a scheduler. Asynchronous sources hand their
// notifications to schedule, which is expected to run them on the host's
// event loop; synchronous emissions are delivered immediately. A nil
// schedule behaves like Subscribe.
func SubscribeOn[E any](src stream.Observable[E], schedule func(func()), onEffect func(E), onError func(error)) *Subscription {
	s := &Subscription{}
	up := src.Subscribe(stream.Observer[E]{
		Next: func(v E) {
			if onEffect != nil {
				s.deliver(func() { onEffect(v) })
			}
		},
		Error: func(err error) {
			if onError != nil {
				s.deliver(func() { onError(err) })
			}
		},
		Schedule: schedule,
	})

	s.mu.Lock()
	if s.released {
		// Unsubscribed from inside a synchronous emission.
		s.mu.Unlock()
		up.Unsubscribe()
		return s
	}
	s.upstream = up
	s.mu.Unlock()
	return s
}

// deliver runs fn unless the subscription is closed, tracking the depth of
// nested deliveries.
func (s *Subscription) deliver(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.depth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.depth--
		if s.depth == 0 && s.released {
			s.closed = true
		}
		s.mu.Unlock()
	}()
	fn()
}

// Unsubscribe stops delivery and releases the upstream subscription. It is
// idempotent and safe to call from inside onEffect.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	// Inside a delivery, notifications the upstream flushes while it is
	// released are nested in that delivery and still let through; the
	// outermost delivery closes the subscription when it returns.
	s.closed = s.depth == 0
	up := s.upstream
	s.upstream = nil
	s.mu.Unlock()

	if up != nil {
		up.Unsubscribe()
	}
}

// State reports whether the subscription is still live.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return StateUnsubscribed
	}
	return StateSubscribed
}
