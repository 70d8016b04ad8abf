package streamtest

import "sync"

// Scheduler queues scheduled work until Flush runs it, standing in for a
// host event loop.
//
// Scheduler is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	pending []func()
	signal  chan struct{}
}

// NewScheduler constructs an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{signal: make(chan struct{}, 1)}
}

// Schedule queues fn. It has the shape expected by stream.Observer.Schedule.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Scheduled returns a channel that receives after work has been queued.
func (s *Scheduler) Scheduled() <-chan struct{} {
	return s.signal
}

// Len returns the number of queued functions.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush runs queued work in FIFO order on the calling goroutine, including
// work queued while flushing, and returns how many functions ran.
func (s *Scheduler) Flush() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return ran
		}
		fn := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		fn()
		ran++
	}
}
