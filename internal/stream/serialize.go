package stream

import (
	"sync"

	"github.com/eapache/queue"
)

type notificationKind uint8

const (
	kindNext notificationKind = iota
	kindError
	kindComplete
)

type notification[T any] struct {
	kind  notificationKind
	value T
	err   error
}

// serializer funnels notifications from several producers into one
// observer. Whichever goroutine finds the serializer idle drains the queue;
// others enqueue and return. A terminal notification stops delivery and
// discards whatever is still queued.
//
// A stop that arrives while a drain is running is an observer
// unsubscribing from inside its own callback. It rejects new notifications
// and delivers what was already queued before returning, nested in the
// running callback, so that the unsubscribe completes after them.
type serializer[T any] struct {
	mu       sync.Mutex
	pending  *queue.Queue
	draining bool
	stopped  bool
	done     bool
	out      Observer[T]
}

func newSerializer[T any](out Observer[T]) *serializer[T] {
	return &serializer[T]{
		pending: queue.New(),
		out:     out,
	}
}

func (s *serializer[T]) next(v T) {
	s.push(notification[T]{kind: kindNext, value: v})
}

func (s *serializer[T]) error(err error) {
	s.push(notification[T]{kind: kindError, err: err})
}

func (s *serializer[T]) complete() {
	s.push(notification[T]{kind: kindComplete})
}

// stop ignores future notifications. Pending ones are discarded, or
// flushed when a drain is in progress.
func (s *serializer[T]) stop() {
	s.mu.Lock()
	s.stopped = true
	if !s.draining {
		s.pending = queue.New()
		s.mu.Unlock()
		return
	}
	var flush []notification[T]
	for s.pending.Length() > 0 && !s.done {
		n := s.pending.Remove().(notification[T])
		if n.kind != kindNext {
			s.done = true
		}
		flush = append(flush, n)
	}
	s.pending = queue.New()
	s.mu.Unlock()

	for _, n := range flush {
		s.dispatch(n)
	}
}

func (s *serializer[T]) isDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done || s.stopped
}

func (s *serializer[T]) push(n notification[T]) {
	s.mu.Lock()
	if s.done || s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending.Add(n)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	locked := true
	defer func() {
		// A panicking observer leaves the mutex released.
		if !locked {
			s.mu.Lock()
		}
		s.draining = false
		if (s.done || s.stopped) && s.pending.Length() > 0 {
			s.pending = queue.New()
		}
		s.mu.Unlock()
	}()
	for s.pending.Length() > 0 && !s.done {
		n := s.pending.Remove().(notification[T])
		if n.kind != kindNext {
			s.done = true
		}
		locked = false
		s.mu.Unlock()
		s.dispatch(n)
		s.mu.Lock()
		locked = true
	}
}

func (s *serializer[T]) dispatch(n notification[T]) {
	switch n.kind {
	case kindNext:
		s.out.OnNext(n.value)
	case kindError:
		s.out.OnError(n.err)
	case kindComplete:
		s.out.OnComplete()
	}
}
