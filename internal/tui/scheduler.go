package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eapache/queue"

	tuimsg "github.com/Iron-Ham/refract/internal/tui/msg"
)

// Scheduler marshals work from other goroutines onto a program's event
// loop. It exists before the program so that components can be configured
// with it; New attaches it when given WithScheduler.
//
// Scheduled work is queued in FIFO order and forwarded to the program as
// RunMsg by a single goroutine, so Schedule never blocks. Work scheduled
// before a program is attached waits for it; work scheduled after the
// program has exited is dropped.
type Scheduler struct {
	mu       sync.Mutex
	pending  *queue.Queue
	send     func(tea.Msg)
	closed   bool
	wake     chan struct{}
	done     chan struct{}
	attached sync.Once
}

// NewScheduler creates an unattached scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Schedule queues fn to run on the event loop.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending.Add(fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of functions not yet handed to the program.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Length()
}

// attach starts forwarding queued work through send. Only the first call
// has an effect.
func (s *Scheduler) attach(send func(tea.Msg)) {
	s.attached.Do(func() {
		s.mu.Lock()
		s.send = send
		s.mu.Unlock()
		go s.forward()
	})
}

func (s *Scheduler) forward() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if s.closed || s.pending.Length() == 0 {
				s.mu.Unlock()
				break
			}
			fn := s.pending.Remove().(func())
			send := s.send
			s.mu.Unlock()
			send(tuimsg.RunMsg{Fn: fn})
		}
	}
}

// close drops queued work and stops forwarding.
func (s *Scheduler) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = queue.New()
	s.mu.Unlock()
	close(s.done)
}
