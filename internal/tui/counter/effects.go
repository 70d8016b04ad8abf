package counter

import (
	"fmt"

	"github.com/Iron-Ham/refract/internal/refract"
	"github.com/Iron-Ham/refract/internal/stream"
)

// Effect is one of Start, ValueChange, ValueSet or Stop.
type Effect interface {
	fmt.Stringer
	isEffect()
}

// Start is emitted when the counter mounts.
type Start struct{}

// ValueChange is emitted when the value property changes.
type ValueChange struct {
	Value int
}

// ValueSet is emitted when the setValue callback is called.
type ValueSet struct {
	Value int
}

// Stop is emitted when the counter unmounts.
type Stop struct{}

func (Start) isEffect()       {}
func (ValueChange) isEffect() {}
func (ValueSet) isEffect()    {}
func (Stop) isEffect()        {}

func (Start) String() string         { return "Start" }
func (e ValueChange) String() string { return fmt.Sprintf("ValueChange %d", e.Value) }
func (e ValueSet) String() string    { return fmt.Sprintf("ValueSet %d", e.Value) }
func (Stop) String() string          { return "Stop" }

// Effects derives the counter's effect stream from its component channels.
func Effects(Props) func(*refract.Component) stream.Observable[Effect] {
	return func(c *refract.Component) stream.Observable[Effect] {
		return stream.Merge(
			stream.MapTo[struct{}, Effect](c.Mount(), Start{}),
			stream.Map(refract.Observe[int](c, "value"), func(v int) Effect {
				return ValueChange{Value: v}
			}),
			stream.Map(refract.Observe[int](c, "setValue"), func(v int) Effect {
				return ValueSet{Value: v}
			}),
			stream.MapTo[struct{}, Effect](c.Unmount(), Stop{}),
		)
	}
}
