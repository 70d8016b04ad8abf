package stream

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

// FromFunc runs fn on its own goroutine for every subscription and emits its
// result followed by completion, or its error. Unsubscribing cancels the
// context passed to fn and suppresses any result that arrives afterwards.
//
// A panic inside fn is recovered and delivered as an error. The outcome is
// delivered through the observer's Schedule when one is set.
//
// FromFunc is how effect factories represent deferred work, such as a
// network request, without blocking the event loop.
func FromFunc[T any](fn func(ctx context.Context) (T, error)) Observable[T] {
	return Func[T](func(o Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			var (
				value T
				err   error
			)
			if recovered := panics.Try(func() { value, err = fn(ctx) }); recovered != nil {
				err = recovered.AsError()
			}
			if ctx.Err() != nil {
				return
			}
			o.Run(func() {
				// Cancelled while waiting on the scheduler.
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					o.OnError(err)
					return
				}
				o.OnNext(value)
				o.OnComplete()
			})
		}()
		return NewSubscription(cancel)
	})
}

// FromChannel emits every value received from ch and completes when ch is
// closed. Unsubscribing stops the forwarding goroutine. Like FromFunc it
// delivers through the observer's Schedule when one is set.
func FromChannel[T any](ch <-chan T) Observable[T] {
	return Func[T](func(o Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-ch:
					if !ok {
						o.Run(func() {
							if ctx.Err() == nil {
								o.OnComplete()
							}
						})
						return
					}
					o.Run(func() {
						if ctx.Err() == nil {
							o.OnNext(v)
						}
					})
				}
			}
		}()
		return NewSubscription(cancel)
	})
}
