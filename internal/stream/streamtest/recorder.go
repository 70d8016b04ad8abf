// Package streamtest provides helpers for asserting on stream output in
// tests.
package streamtest

import (
	"sync"

	"github.com/Iron-Ham/refract/internal/stream"
)

// Recorder records every notification it observes.
//
// Recorder is safe for concurrent use.
type Recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	errs      []error
	completed int
}

// NewRecorder constructs an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Observer returns an observer that appends to the recorder.
func (r *Recorder[T]) Observer() stream.Observer[T] {
	return stream.Observer[T]{
		Next:     r.Record,
		Error:    r.recordError,
		Complete: r.recordComplete,
	}
}

// Record appends v. It has the shape of an effect handler so a recorder can
// be used directly as one.
func (r *Recorder[T]) Record(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *Recorder[T]) recordError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *Recorder[T]) recordComplete() {
	r.mu.Lock()
	r.completed++
	r.mu.Unlock()
}

// Values returns a snapshot copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]T, len(r.values))
	copy(cp, r.values)
	return cp
}

// Errors returns a snapshot copy of the recorded errors.
func (r *Recorder[T]) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]error, len(r.errs))
	copy(cp, r.errs)
	return cp
}

// Completions returns how many completion notifications were observed.
func (r *Recorder[T]) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Reset clears the recorder.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	r.values = nil
	r.errs = nil
	r.completed = 0
	r.mu.Unlock()
}
