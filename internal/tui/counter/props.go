package counter

import "sync"

// Props are the counter's properties.
type Props struct {
	Value    int       `prop:"value"`
	SetValue func(int) `prop:"setValue"`
}

// Store holds the host-side counter value and hands out props bound to it.
type Store struct {
	mu    sync.Mutex
	value int
}

// NewStore creates a store holding initial.
func NewStore(initial int) *Store {
	return &Store{value: initial}
}

// Value returns the current value.
func (s *Store) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the current value.
func (s *Store) Set(v int) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
}

// Add changes the current value by delta.
func (s *Store) Add(delta int) {
	s.mu.Lock()
	s.value += delta
	s.mu.Unlock()
}

// Props returns props reflecting the current value, with SetValue writing
// back to the store.
func (s *Store) Props() Props {
	return Props{Value: s.Value(), SetValue: s.Set}
}
