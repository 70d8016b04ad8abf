package event

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/refract/internal/stream"
)

// Binding is a stream.Binding whose channels publish through a Bus. Every
// channel gets its own topic, so other bus subscribers (for example a
// logger registered with SubscribeAll) can watch component traffic.
//
// Channel observers are not panic-protected by the bus: a panic raised by
// effect logic or the effect handler reaches the emitter, exactly as with
// stream.SubjectBinding.
type Binding struct {
	bus   *Bus
	label string
	seq   atomic.Uint64
}

// bindingSeq keeps topics unique across bindings sharing a bus.
var bindingSeq atomic.Uint64

// NewBinding creates a binding on bus.
func NewBinding(bus *Bus) *Binding {
	return &Binding{
		bus:   bus,
		label: strconv.FormatUint(bindingSeq.Add(1), 36),
	}
}

// NewChannel creates a bus-backed channel.
func (b *Binding) NewChannel(name string) stream.Channel[any] {
	topic := strings.Join([]string{
		"channel",
		b.label,
		strconv.FormatUint(b.seq.Add(1), 36),
		name,
	}, ".")
	return &busChannel{bus: b.bus, topic: topic, name: name}
}

// busChannel implements stream.Channel on top of a Bus topic.
type busChannel struct {
	bus   *Bus
	topic string
	name  string

	mu   sync.Mutex
	done bool
	ids  map[string]struct{}
}

// Topic returns the bus topic the channel publishes on.
func (c *busChannel) Topic() string {
	return c.topic
}

func (c *busChannel) Subscribe(o stream.Observer[any]) stream.Subscription {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		o.OnComplete()
		return stream.NopSubscription()
	}

	var id string
	var sub stream.Subscription
	id = c.bus.Subscribe(c.topic, func(e Event) {
		ce, ok := e.(ChannelEvent)
		if !ok {
			return
		}
		switch ce.Kind {
		case ChannelNext:
			o.OnNext(ce.Value)
		case ChannelComplete:
			sub.Unsubscribe()
			o.OnComplete()
		}
	})
	if c.ids == nil {
		c.ids = make(map[string]struct{})
	}
	c.ids[id] = struct{}{}
	sub = stream.NewSubscription(func() {
		c.bus.Unsubscribe(id)
		c.mu.Lock()
		delete(c.ids, id)
		c.mu.Unlock()
	})
	c.mu.Unlock()
	return sub
}

func (c *busChannel) Emit(v any) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done {
		return
	}
	c.bus.publishStrict(NewChannelEvent(c.topic, c.name, ChannelNext, v))
}

func (c *busChannel) Complete() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.mu.Unlock()
	c.bus.publishStrict(NewChannelEvent(c.topic, c.name, ChannelComplete, nil))
}

// subscriberCount reports live subscriptions on the channel.
func (c *busChannel) subscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
