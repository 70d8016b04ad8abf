package stream

import "sync"

// Observer receives notifications from an Observable.
// Any callback may be nil, in which case the notification is ignored.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()

	// Schedule, when set, runs notifications that asynchronous sources
	// produce on their own goroutines. It lets a subscriber marshal those
	// notifications onto its event loop. Operators pass it upstream
	// unchanged; synchronous sources ignore it.
	Schedule func(func())
}

// Run calls fn through Schedule, or directly when Schedule is nil. Sources
// that emit from their own goroutines wrap each notification in Run.
func (o Observer[T]) Run(fn func()) {
	if o.Schedule != nil {
		o.Schedule(fn)
		return
	}
	fn()
}

// OnNext calls Next if it is set.
func (o Observer[T]) OnNext(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

// OnError calls Error if it is set.
func (o Observer[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

// OnComplete calls Complete if it is set.
func (o Observer[T]) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// Subscription is the live binding between an Observable and an Observer.
// Unsubscribe must be safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// Observable is a subscribable, push-based sequence of values.
type Observable[T any] interface {
	Subscribe(o Observer[T]) Subscription
}

// Func adapts a subscribe function into an Observable.
//
//	ticks := stream.Func[int](func(o stream.Observer[int]) stream.Subscription {
//	    o.OnNext(1)
//	    o.OnComplete()
//	    return stream.NopSubscription()
//	})
type Func[T any] func(o Observer[T]) Subscription

// Subscribe executes f(o). A nil Func behaves like Never.
func (f Func[T]) Subscribe(o Observer[T]) Subscription {
	if f == nil {
		return NopSubscription()
	}
	sub := f(o)
	if sub == nil {
		return NopSubscription()
	}
	return sub
}

// subscriptionFunc runs its teardown exactly once.
type subscriptionFunc struct {
	once     sync.Once
	teardown func()
}

func (s *subscriptionFunc) Unsubscribe() {
	s.once.Do(func() {
		if s.teardown != nil {
			s.teardown()
		}
	})
}

// NewSubscription returns a Subscription that runs teardown on the first
// Unsubscribe call and ignores the rest.
func NewSubscription(teardown func()) Subscription {
	return &subscriptionFunc{teardown: teardown}
}

// NopSubscription returns a Subscription with nothing to release.
func NopSubscription() Subscription {
	return NewSubscription(nil)
}

// Composite releases several subscriptions together, in order.
type Composite struct {
	mu     sync.Mutex
	subs   []Subscription
	closed bool
}

// Add registers sub. If the composite is already released, sub is released
// immediately.
func (c *Composite) Add(sub Subscription) {
	if sub == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
}

// Unsubscribe releases every registered subscription.
func (c *Composite) Unsubscribe() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// Closed reports whether Unsubscribe has been called.
func (c *Composite) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Channel is a push-based Observable that the adapter core writes into.
type Channel[T any] interface {
	Observable[T]
	Emit(v T)
	Complete()
}

// Binding creates the channels that back one component instance. The name
// is informational; implementations may use it to label or route the
// channel.
type Binding interface {
	NewChannel(name string) Channel[any]
}

// SubjectBinding backs every channel with an in-process Subject. It is the
// default binding.
type SubjectBinding struct{}

// NewChannel returns a fresh Subject.
func (SubjectBinding) NewChannel(string) Channel[any] {
	return NewSubject[any]()
}
