package refract

import (
	"reflect"
	"sync"

	"github.com/Iron-Ham/refract/internal/logging"
	"github.com/Iron-Ham/refract/internal/stream"
)

// Component is the lifecycle-to-stream adapter for one component instance.
type Component struct {
	id      string
	binding stream.Binding
	logger  *logging.Logger

	mountCh   stream.Channel[any]
	unmountCh stream.Channel[any]

	mu        sync.Mutex
	props     map[string]*property
	mounted   bool
	unmounted bool
}

// property holds the per-name state of a component property. ch is nil
// until the property is first observed.
type property struct {
	ch    stream.Channel[any]
	value any
	has   bool
	fn    reflect.Value // latest callback when the property is function-typed
}

// NewComponent creates an adapter whose channels come from binding. A nil
// binding selects stream.SubjectBinding. Construction never fails.
func NewComponent(binding stream.Binding) *Component {
	return newComponent("", binding, nil)
}

func newComponent(id string, binding stream.Binding, logger *logging.Logger) *Component {
	if binding == nil {
		binding = stream.SubjectBinding{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Component{
		id:        id,
		binding:   binding,
		logger:    logger,
		mountCh:   binding.NewChannel("mount"),
		unmountCh: binding.NewChannel("unmount"),
		props:     make(map[string]*property),
	}
}

// ID returns the component instance ID, or "" for a standalone adapter.
func (c *Component) ID() string {
	return c.id
}

// Mount returns the mount signal. It emits once and then completes.
func (c *Component) Mount() stream.Observable[struct{}] {
	return signal(c.mountCh)
}

// Unmount returns the unmount signal. It emits once, after mount, and then
// completes.
func (c *Component) Unmount() stream.Observable[struct{}] {
	return signal(c.unmountCh)
}

func signal(ch stream.Channel[any]) stream.Observable[struct{}] {
	return stream.Map[any, struct{}](ch, func(any) struct{} { return struct{}{} })
}

// Observe returns the channel for the named property. Channels are created
// on first use and shared by later calls for the same name. A subscriber
// that joins after a value was pushed first receives that latest value.
//
// Names that are never pushed never emit. After unmount Observe returns a
// channel that never emits.
func (c *Component) Observe(name string) stream.Observable[any] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return stream.Never[any]()
	}
	p := c.property(name)
	if p.ch == nil {
		p.ch = c.binding.NewChannel(name)
		c.logger.Debug("property channel created", "property", name)
	}
	return c.replay(p)
}

// Observe is the typed form of Component.Observe. Values that are not a T
// are dropped.
func Observe[T any](c *Component, name string) stream.Observable[T] {
	src := c.Observe(name)
	return stream.Func[T](func(o stream.Observer[T]) stream.Subscription {
		return src.Subscribe(stream.Observer[any]{
			Next: func(v any) {
				if t, ok := v.(T); ok {
					o.OnNext(t)
				}
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
			Schedule: o.Schedule,
		})
	})
}

// replay wraps p's channel so that new subscribers first receive the latest
// value. Callers hold c.mu.
func (c *Component) replay(p *property) stream.Observable[any] {
	ch := p.ch
	return stream.Func[any](func(o stream.Observer[any]) stream.Subscription {
		c.mu.Lock()
		value, has := p.value, p.has && !c.unmounted
		c.mu.Unlock()

		subs := &stream.Composite{}
		guarded := stream.Observer[any]{
			Next: func(v any) {
				if !subs.Closed() {
					o.OnNext(v)
				}
			},
			Error:    o.OnError,
			Complete: o.OnComplete,
			Schedule: o.Schedule,
		}
		if has {
			guarded.OnNext(value)
		}
		subs.Add(ch.Subscribe(guarded))
		return subs
	})
}

// property returns the state for name, creating it. Callers hold c.mu.
func (c *Component) property(name string) *property {
	p, ok := c.props[name]
	if !ok {
		p = &property{}
		c.props[name] = p
	}
	return p
}

// push records value as the latest value of name and emits it when it
// differs from the previous value. Function values are stored as the
// property's callback and never emitted.
func (c *Component) push(name string, value any) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	p := c.property(name)

	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Func {
		p.fn = rv
		c.mu.Unlock()
		return
	}

	if p.has && shallowEqual(p.value, value) {
		c.mu.Unlock()
		return
	}
	p.value = value
	p.has = true
	ch := p.ch
	c.mu.Unlock()

	if ch != nil {
		ch.Emit(value)
	}
}

// invoke emits the argument of a callback call on the property channel.
// Every call emits. Calls are events rather than state, so they are not
// replayed to later subscribers.
func (c *Component) invoke(name string, arg any) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	p := c.property(name)
	ch := p.ch
	c.mu.Unlock()

	if ch != nil {
		ch.Emit(arg)
	}
}

// callback returns the latest function pushed for name.
func (c *Component) callback(name string) reflect.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.props[name]; ok {
		return p.fn
	}
	return reflect.Value{}
}

// observed reports whether name has a channel.
func (c *Component) observed(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.props[name]
	return ok && p.ch != nil
}

// emitMount emits the mount signal once.
func (c *Component) emitMount() {
	c.mu.Lock()
	if c.mounted || c.unmounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.mu.Unlock()

	c.mountCh.Emit(struct{}{})
	c.mountCh.Complete()
}

// emitUnmount emits the unmount signal once and then completes every
// channel. Pushes after this point are ignored.
func (c *Component) emitUnmount() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.unmounted = true
	mounted := c.mounted
	c.mu.Unlock()

	if mounted {
		c.unmountCh.Emit(struct{}{})
	}
	c.release()
}

// release completes every channel without emitting a signal.
func (c *Component) release() {
	c.mu.Lock()
	c.unmounted = true
	channels := make([]stream.Channel[any], 0, len(c.props))
	for _, p := range c.props {
		if p.ch != nil {
			channels = append(channels, p.ch)
		}
	}
	c.props = make(map[string]*property)
	c.mu.Unlock()

	c.unmountCh.Complete()
	c.mountCh.Complete()
	for _, ch := range channels {
		ch.Complete()
	}
}

// shallowEqual compares a and b one level deep. Reference kinds compare by
// identity; structs and arrays compare element-wise with the same rule.
func shallowEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Type().Comparable() {
		return sameComparable(va, vb)
	}
	return sameShallow(va, vb, true)
}

func sameComparable(a, b reflect.Value) bool {
	// Interface comparison can still panic for interface-typed fields that
	// hold non-comparable values.
	defer func() { _ = recover() }()
	return a.Interface() == b.Interface()
}

func sameShallow(a, b reflect.Value, top bool) bool {
	switch a.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return a.Elem().Type() == b.Elem().Type() && sameShallow(a.Elem(), b.Elem(), false)
	case reflect.Struct:
		if !top {
			return identical(a, b)
		}
		for i := range a.NumField() {
			if !sameShallow(a.Field(i), b.Field(i), false) {
				return false
			}
		}
		return true
	case reflect.Array:
		if !top {
			return identical(a, b)
		}
		for i := range a.Len() {
			if !sameShallow(a.Index(i), b.Index(i), false) {
				return false
			}
		}
		return true
	default:
		return identical(a, b)
	}
}

// identical compares nested values without recursing further.
func identical(a, b reflect.Value) bool {
	if a.Type().Comparable() && a.CanInterface() && b.CanInterface() {
		return sameComparable(a, b)
	}
	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() == b.Float()
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		return a.Pointer() == b.Pointer()
	default:
		return false
	}
}
