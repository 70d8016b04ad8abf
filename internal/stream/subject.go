package stream

import "sync"

// Subject is a push-based emitter that is also an Observable.
//
// Values emitted before a subscriber joins are not replayed. Once the
// subject has completed or failed it becomes inert: further Emit, Complete
// and Error calls are ignored and new subscribers receive the terminal
// notification immediately.
//
// Subject is safe for concurrent use. Observers are called in registration
// order on the goroutine that emits.
type Subject[T any] struct {
	mu        sync.Mutex
	observers []subjectObserver[T]
	nextID    uint64
	done      bool
	err       error
}

type subjectObserver[T any] struct {
	id       uint64
	observer Observer[T]
}

// NewSubject creates an empty, live Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers o and returns a handle that removes it.
func (s *Subject[T]) Subscribe(o Observer[T]) Subscription {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			o.OnError(err)
		} else {
			o.OnComplete()
		}
		return NopSubscription()
	}
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subjectObserver[T]{id: id, observer: o})
	s.mu.Unlock()

	return NewSubscription(func() { s.remove(id) })
}

// Emit delivers v to every current observer.
func (s *Subject[T]) Emit(v T) {
	observers, ok := s.snapshot(false, nil)
	if !ok {
		return
	}
	for _, entry := range observers {
		entry.observer.OnNext(v)
	}
}

// Complete ends the sequence normally.
func (s *Subject[T]) Complete() {
	observers, ok := s.snapshot(true, nil)
	if !ok {
		return
	}
	for _, entry := range observers {
		entry.observer.OnComplete()
	}
}

// Error ends the sequence with err.
func (s *Subject[T]) Error(err error) {
	if err == nil {
		s.Complete()
		return
	}
	observers, ok := s.snapshot(true, err)
	if !ok {
		return
	}
	for _, entry := range observers {
		entry.observer.OnError(err)
	}
}

// Done reports whether the subject has completed or failed.
func (s *Subject[T]) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// ObserverCount returns the number of live observers.
func (s *Subject[T]) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// snapshot copies the observer list for delivery outside the lock. When
// terminate is set the subject transitions to done and drops its observers.
func (s *Subject[T]) snapshot(terminate bool, err error) ([]subjectObserver[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, false
	}
	observers := make([]subjectObserver[T], len(s.observers))
	copy(observers, s.observers)
	if terminate {
		s.done = true
		s.err = err
		s.observers = nil
	}
	return observers, true
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.observers {
		if entry.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}
