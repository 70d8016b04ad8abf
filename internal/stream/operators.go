package stream

import (
	"sync"
	"sync/atomic"
)

// Of emits each value in order and then completes.
func Of[T any](values ...T) Observable[T] {
	return Func[T](func(o Observer[T]) Subscription {
		for _, v := range values {
			o.OnNext(v)
		}
		o.OnComplete()
		return NopSubscription()
	})
}

// Empty completes immediately without emitting.
func Empty[T any]() Observable[T] {
	return Of[T]()
}

// Never neither emits nor terminates.
func Never[T any]() Observable[T] {
	return Func[T](func(Observer[T]) Subscription {
		return NopSubscription()
	})
}

// Throw fails immediately with err.
func Throw[T any](err error) Observable[T] {
	return Func[T](func(o Observer[T]) Subscription {
		o.OnError(err)
		return NopSubscription()
	})
}

// Map transforms every value of src with fn.
func Map[T, U any](src Observable[T], fn func(T) U) Observable[U] {
	return Func[U](func(o Observer[U]) Subscription {
		return src.Subscribe(Observer[T]{
			Next:     func(v T) { o.OnNext(fn(v)) },
			Error:    o.OnError,
			Complete: o.OnComplete,
			Schedule: o.Schedule,
		})
	})
}

// MapTo replaces every value of src with v.
func MapTo[T, U any](src Observable[T], v U) Observable[U] {
	return Map(src, func(T) U { return v })
}

// Filter forwards only the values for which keep returns true.
func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return Func[T](func(o Observer[T]) Subscription {
		return src.Subscribe(Observer[T]{
			Next: func(v T) {
				if keep(v) {
					o.OnNext(v)
				}
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
			Schedule: o.Schedule,
		})
	})
}

// DistinctUntilChanged drops values equal to the one emitted just before.
func DistinctUntilChanged[T comparable](src Observable[T]) Observable[T] {
	return Func[T](func(o Observer[T]) Subscription {
		var (
			mu   sync.Mutex
			last T
			seen bool
		)
		return src.Subscribe(Observer[T]{
			Next: func(v T) {
				mu.Lock()
				if seen && last == v {
					mu.Unlock()
					return
				}
				last, seen = v, true
				mu.Unlock()
				o.OnNext(v)
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
			Schedule: o.Schedule,
		})
	})
}

// Take forwards the first n values and then completes.
func Take[T any](src Observable[T], n int) Observable[T] {
	if n <= 0 {
		return Empty[T]()
	}
	return Func[T](func(o Observer[T]) Subscription {
		var (
			count atomic.Int64
			subs  Composite
		)
		subs.Add(src.Subscribe(Observer[T]{
			Next: func(v T) {
				c := count.Add(1)
				if c > int64(n) {
					return
				}
				o.OnNext(v)
				if c == int64(n) {
					subs.Unsubscribe()
					o.OnComplete()
				}
			},
			Error: func(err error) {
				if count.Load() < int64(n) {
					o.OnError(err)
				}
			},
			Complete: func() {
				if count.Load() < int64(n) {
					o.OnComplete()
				}
			},
			Schedule: o.Schedule,
		}))
		return &subs
	})
}

// Merge interleaves the values of every source. It completes once all
// sources have completed and fails on the first error.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	return Func[T](func(o Observer[T]) Subscription {
		if len(sources) == 0 {
			o.OnComplete()
			return NopSubscription()
		}
		ser := newSerializer(o)
		subs := &Composite{}
		var remaining atomic.Int64
		remaining.Store(int64(len(sources)))

		for _, src := range sources {
			if ser.isDone() {
				break
			}
			subs.Add(src.Subscribe(Observer[T]{
				Next: ser.next,
				Error: func(err error) {
					ser.error(err)
					subs.Unsubscribe()
				},
				Complete: func() {
					if remaining.Add(-1) == 0 {
						ser.complete()
					}
				},
				Schedule: o.Schedule,
			}))
		}
		return NewSubscription(func() {
			ser.stop()
			subs.Unsubscribe()
		})
	})
}

// Pair holds the latest values of two combined sources.
type Pair[A, B any] struct {
	First  A
	Second B
}

// CombineLatest2 emits the latest value of each source whenever either
// emits, once both have emitted at least once.
func CombineLatest2[A, B any](a Observable[A], b Observable[B]) Observable[Pair[A, B]] {
	return Func[Pair[A, B]](func(o Observer[Pair[A, B]]) Subscription {
		ser := newSerializer(o)
		subs := &Composite{}
		var (
			mu           sync.Mutex
			latest       Pair[A, B]
			hasA, hasB   bool
			doneA, doneB bool
		)
		emit := func() {
			mu.Lock()
			ready := hasA && hasB
			value := latest
			mu.Unlock()
			if ready {
				ser.next(value)
			}
		}
		finish := func(markA bool) {
			mu.Lock()
			if markA {
				doneA = true
			} else {
				doneB = true
			}
			// A source that completes without ever emitting means no
			// combination can be produced.
			stop := (doneA && doneB) || (markA && !hasA) || (!markA && !hasB)
			mu.Unlock()
			if stop {
				ser.complete()
				subs.Unsubscribe()
			}
		}
		fail := func(err error) {
			ser.error(err)
			subs.Unsubscribe()
		}

		subs.Add(a.Subscribe(Observer[A]{
			Next: func(v A) {
				mu.Lock()
				latest.First, hasA = v, true
				mu.Unlock()
				emit()
			},
			Error:    fail,
			Complete: func() { finish(true) },
			Schedule: o.Schedule,
		}))
		subs.Add(b.Subscribe(Observer[B]{
			Next: func(v B) {
				mu.Lock()
				latest.Second, hasB = v, true
				mu.Unlock()
				emit()
			},
			Error:    fail,
			Complete: func() { finish(false) },
			Schedule: o.Schedule,
		}))
		return NewSubscription(func() {
			ser.stop()
			subs.Unsubscribe()
		})
	})
}

// SwitchMap projects every value of src to an inner Observable and mirrors
// only the most recent one; the previous inner subscription is released
// when a new value arrives. It completes when src and the active inner
// have both completed.
func SwitchMap[T, U any](src Observable[T], project func(T) Observable[U]) Observable[U] {
	return Func[U](func(o Observer[U]) Subscription {
		ser := newSerializer(o)
		var (
			mu         sync.Mutex
			generation uint64
			inner      Subscription
			innerLive  bool
			outerDone  bool
		)
		outer := &Composite{}

		release := func() {
			mu.Lock()
			current := inner
			inner = nil
			generation++
			mu.Unlock()
			if current != nil {
				current.Unsubscribe()
			}
		}

		outer.Add(src.Subscribe(Observer[T]{
			Next: func(v T) {
				release()
				mu.Lock()
				gen := generation
				innerLive = true
				mu.Unlock()

				stale := func() bool {
					mu.Lock()
					defer mu.Unlock()
					return gen != generation
				}
				sub := project(v).Subscribe(Observer[U]{
					Next: func(u U) {
						if !stale() {
							ser.next(u)
						}
					},
					Error: func(err error) {
						if !stale() {
							ser.error(err)
							outer.Unsubscribe()
						}
					},
					Complete: func() {
						mu.Lock()
						if gen != generation {
							mu.Unlock()
							return
						}
						innerLive = false
						finished := outerDone
						mu.Unlock()
						if finished {
							ser.complete()
						}
					},
					Schedule: o.Schedule,
				})

				mu.Lock()
				if gen == generation {
					inner = sub
					mu.Unlock()
					return
				}
				mu.Unlock()
				sub.Unsubscribe()
			},
			Error: func(err error) {
				release()
				ser.error(err)
			},
			Complete: func() {
				mu.Lock()
				outerDone = true
				finished := !innerLive
				mu.Unlock()
				if finished {
					ser.complete()
				}
			},
			Schedule: o.Schedule,
		}))

		return NewSubscription(func() {
			ser.stop()
			outer.Unsubscribe()
			release()
		})
	})
}
