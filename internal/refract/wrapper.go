package refract

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/refract/internal/errors"
	"github.com/Iron-Ham/refract/internal/event"
	"github.com/Iron-Ham/refract/internal/logging"
	"github.com/Iron-Ham/refract/internal/stream"
)

// Option configures an Enhanced component.
type Option func(*options)

type options struct {
	name    string
	binding stream.Binding
	onError func(error)
	logger   *logging.Logger
	bus      *event.Bus
	schedule func(func())
}

// WithName sets the prefix of generated instance IDs. The default is
// "component".
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithBinding selects the stream binding that backs component channels.
func WithBinding(b stream.Binding) Option {
	return func(o *options) {
		if b != nil {
			o.binding = b
		}
	}
}

// WithErrorHandler receives errors emitted by the effect stream, wrapped in
// *errors.StreamError. Without it stream errors are swallowed.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBus publishes lifecycle and effect notifications on bus.
func WithBus(bus *event.Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithScheduler routes notifications from asynchronous effect sources, such
// as stream.FromFunc, through schedule. Hosts with an event loop pass a
// function that runs its argument on that loop, so the effect handler only
// ever runs on the host's goroutine.
func WithScheduler(schedule func(func())) Option {
	return func(o *options) {
		o.schedule = schedule
	}
}

// Enhanced is a view wrapped with an effect factory and a handler factory.
// It is a template; New creates independent instances.
type Enhanced[P, E any] struct {
	handlers EffectHandlerFactory[P, E]
	effects  EffectFactory[P, E]
	view     View[P]
	opts     options
}

// WithEffects returns a function that wraps a view so that every instance
// derives effects from its lifecycle and dispatches them to a handler.
func WithEffects[P, E any](handlers EffectHandlerFactory[P, E], effects EffectFactory[P, E], opts ...Option) func(View[P]) *Enhanced[P, E] {
	o := options{
		name:    "component",
		binding: stream.SubjectBinding{},
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return func(view View[P]) *Enhanced[P, E] {
		return &Enhanced[P, E]{
			handlers: handlers,
			effects:  effects,
			view:     view,
			opts:     o,
		}
	}
}

var instanceSeq atomic.Uint64

// New creates an unmounted instance.
func (e *Enhanced[P, E]) New() *Instance[P, E] {
	id := e.opts.name + "-" + strconv.FormatUint(instanceSeq.Add(1), 10)
	return &Instance[P, E]{
		enhanced: e,
		id:       id,
		logger:   e.opts.logger.WithComponent(id),
	}
}

type lifecycle int

const (
	lifecycleIdle lifecycle = iota
	lifecycleMounted
	lifecycleUnmounted
)

// Instance is one mounted occurrence of an Enhanced component.
type Instance[P, E any] struct {
	enhanced *Enhanced[P, E]
	id       string
	logger   *logging.Logger

	mu        sync.Mutex
	state     lifecycle
	props     P
	component *Component
	sub       *Subscription

	dispatched atomic.Int64
}

// ID returns the instance ID.
func (i *Instance[P, E]) ID() string {
	return i.id
}

// Mount creates the adapter, builds the effect stream and handler from
// props, subscribes, emits the mount signal and then pushes props.
//
// A failing factory yields an *errors.ConfigurationError and leaves the
// instance unmounted. Mounting twice returns errors.ErrAlreadyMounted.
func (i *Instance[P, E]) Mount(props P) error {
	i.mu.Lock()
	if i.state != lifecycleIdle || i.component != nil {
		i.mu.Unlock()
		return errors.ErrAlreadyMounted
	}
	opts := i.enhanced.opts
	c := newComponent(i.id, opts.binding, i.logger)
	i.component = c
	i.props = props
	i.mu.Unlock()

	effects, err := i.buildEffects(c, props)
	if err == nil {
		var handler EffectHandler[E]
		handler, err = i.buildHandler(props)
		if err == nil {
			i.start(c, effects, handler, props)
			return nil
		}
	}

	c.release()
	i.mu.Lock()
	i.component = nil
	i.mu.Unlock()
	i.logger.Error("mount failed", "error", err)
	return err
}

func (i *Instance[P, E]) buildEffects(c *Component, props P) (effects stream.Observable[E], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = i.configError("effect factory panicked", errors.FromPanic(r), errors.FactoryEffect)
		}
	}()
	if i.enhanced.effects == nil {
		return nil, i.configError("no effect factory", errors.ErrNilEffectStream, errors.FactoryEffect)
	}
	derive := i.enhanced.effects(props)
	if derive == nil {
		return nil, i.configError("effect factory returned nil", errors.ErrNilEffectStream, errors.FactoryEffect)
	}
	effects = derive(c)
	if effects == nil {
		return nil, i.configError("effect factory returned nil", errors.ErrNilEffectStream, errors.FactoryEffect)
	}
	return effects, nil
}

func (i *Instance[P, E]) buildHandler(props P) (handler EffectHandler[E], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = i.configError("handler factory panicked", errors.FromPanic(r), errors.FactoryHandler)
		}
	}()
	if i.enhanced.handlers == nil {
		return nil, i.configError("no handler factory", errors.ErrNilHandler, errors.FactoryHandler)
	}
	handler = i.enhanced.handlers(props)
	if handler == nil {
		return nil, i.configError("handler factory returned nil", errors.ErrNilHandler, errors.FactoryHandler)
	}
	return handler, nil
}

func (i *Instance[P, E]) configError(msg string, cause error, f errors.Factory) error {
	return errors.NewConfigurationError(msg, cause).WithComponent(i.id).WithFactory(f)
}

func (i *Instance[P, E]) start(c *Component, effects stream.Observable[E], handler EffectHandler[E], props P) {
	bus := i.enhanced.opts.bus

	dispatch := func(effect E) {
		i.dispatched.Add(1)
		if bus != nil {
			bus.Publish(event.NewEffectDispatchedEvent(i.id, effect))
		}
		handler(effect)
	}

	sub := SubscribeOn(effects, i.enhanced.opts.schedule, dispatch, i.handleStreamError)

	i.mu.Lock()
	i.state = lifecycleMounted
	i.sub = sub
	i.mu.Unlock()

	c.emitMount()
	pushAll(c, props)

	names := PropertyNames(props)
	i.logger.Debug("component mounted", "properties", names)
	if bus != nil {
		bus.Publish(event.NewComponentMountedEvent(i.id, names))
	}
}

func (i *Instance[P, E]) handleStreamError(err error) {
	opts := i.enhanced.opts
	wrapped := errors.NewStreamError(err).WithComponent(i.id)
	handled := opts.onError != nil
	if opts.bus != nil {
		opts.bus.Publish(event.NewStreamErrorEvent(i.id, wrapped, handled))
	}
	if !handled {
		i.logger.Debug("stream error swallowed", "error", err)
		return
	}
	opts.onError(wrapped)
}

// Update pushes every property of props. Unchanged properties do not emit.
// Updates after unmount are ignored.
func (i *Instance[P, E]) Update(props P) error {
	i.mu.Lock()
	switch i.state {
	case lifecycleIdle:
		i.mu.Unlock()
		return errors.ErrNotMounted
	case lifecycleUnmounted:
		i.mu.Unlock()
		return nil
	}
	i.props = props
	c := i.component
	i.mu.Unlock()

	pushAll(c, props)
	return nil
}

// Unmount emits the unmount signal, letting effects it triggers reach the
// handler, and then releases the effect subscription. It is idempotent.
//
// When called from inside the effect handler, effects the unmount signal
// queued behind the running delivery are still handled once that delivery
// returns.
func (i *Instance[P, E]) Unmount() {
	i.mu.Lock()
	if i.state != lifecycleMounted {
		i.mu.Unlock()
		return
	}
	i.state = lifecycleUnmounted
	c, sub := i.component, i.sub
	i.mu.Unlock()

	c.emitUnmount()
	sub.Unsubscribe()

	effects := int(i.dispatched.Load())
	i.logger.Debug("component unmounted", "effects", effects)
	if bus := i.enhanced.opts.bus; bus != nil {
		bus.Publish(event.NewComponentUnmountedEvent(i.id, effects))
	}
}

// Mounted reports whether the instance is currently mounted.
func (i *Instance[P, E]) Mounted() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state == lifecycleMounted
}

// Props returns the pass-through props: the latest props with observed
// callbacks decorated.
func (i *Instance[P, E]) Props() P {
	i.mu.Lock()
	props, c := i.props, i.component
	i.mu.Unlock()
	if c == nil {
		return props
	}
	return decorate(c, props)
}

// Render renders the wrapped view with the pass-through props.
func (i *Instance[P, E]) Render() string {
	if i.enhanced.view == nil {
		return ""
	}
	return i.enhanced.view(i.Props())
}

// Component returns the adapter of a mounted instance, or nil.
func (i *Instance[P, E]) Component() *Component {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.component
}

// Dispatched returns the number of effects delivered to the handler.
func (i *Instance[P, E]) Dispatched() int {
	return int(i.dispatched.Load())
}
