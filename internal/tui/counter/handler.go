package counter

import (
	"sync"

	"github.com/Iron-Ham/refract/internal/logging"
	"github.com/Iron-Ham/refract/internal/refract"
)

// DefaultLogSize is the number of effects a Log keeps by default.
const DefaultLogSize = 8

// Log keeps the most recent effects for display.
type Log struct {
	mu      sync.Mutex
	size    int
	entries []Effect
	total   int
}

// NewLog creates a log keeping at most size effects.
func NewLog(size int) *Log {
	if size <= 0 {
		size = DefaultLogSize
	}
	return &Log{size: size}
}

// Append records e, dropping the oldest entry when full.
func (l *Log) Append(e Effect) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total++
	l.entries = append(l.entries, e)
	if len(l.entries) > l.size {
		l.entries = l.entries[len(l.entries)-l.size:]
	}
}

// Entries returns the retained effects, oldest first.
func (l *Log) Entries() []Effect {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Effect, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the retained effects appended after the log's total was
// seen, along with the current total.
func (l *Log) Since(seen int) ([]Effect, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := min(max(l.total-seen, 0), len(l.entries))
	out := make([]Effect, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out, l.total
}

// Total returns the number of effects ever appended.
func (l *Log) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Handlers returns the effect handler factory. Each effect is logged and
// appended to log; logger may be nil.
func Handlers(log *Log, logger *logging.Logger) refract.EffectHandlerFactory[Props, Effect] {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return func(Props) refract.EffectHandler[Effect] {
		return func(e Effect) {
			switch e := e.(type) {
			case Start:
				logger.Info("counter started")
			case ValueChange:
				logger.Info("counter value changed", "value", e.Value)
			case ValueSet:
				logger.Info("counter value set", "value", e.Value)
			case Stop:
				logger.Info("counter stopped")
			}
			log.Append(e)
		}
	}
}
