package refract

import "github.com/Iron-Ham/refract/internal/stream"

// EffectHandler is invoked once per effect.
type EffectHandler[E any] func(effect E)

// EffectHandlerFactory builds the handler for a component instance from its
// initial props.
type EffectHandlerFactory[P, E any] func(props P) EffectHandler[E]

// EffectFactory maps initial props to a function that derives the effect
// stream from the component's channels.
type EffectFactory[P, E any] func(props P) func(c *Component) stream.Observable[E]

// View renders props. The wrapper contributes no output of its own.
type View[P any] func(props P) string
