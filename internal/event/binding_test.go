package event

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/refract/internal/stream"
	"github.com/Iron-Ham/refract/internal/stream/streamtest"
)

func TestBinding_ChannelDelivers(t *testing.T) {
	bus := NewBus()
	ch := NewBinding(bus).NewChannel("value")

	rec := streamtest.NewRecorder[any]()
	sub := ch.Subscribe(rec.Observer())

	ch.Emit(1)
	ch.Emit("two")
	sub.Unsubscribe()
	ch.Emit(3)

	got := rec.Values()
	if len(got) != 2 || got[0] != 1 || got[1] != "two" {
		t.Errorf("Expected [1 two], got %v", got)
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected bus subscription to be removed, got %d", bus.SubscriptionCount())
	}
}

func TestBinding_Complete(t *testing.T) {
	bus := NewBus()
	ch := NewBinding(bus).NewChannel("mount")

	rec := streamtest.NewRecorder[any]()
	ch.Subscribe(rec.Observer())

	ch.Emit(struct{}{})
	ch.Complete()
	ch.Complete()
	ch.Emit("ignored")

	if len(rec.Values()) != 1 {
		t.Errorf("Expected one value, got %v", rec.Values())
	}
	if rec.Completions() != 1 {
		t.Errorf("Expected one completion, got %d", rec.Completions())
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected completion to release bus subscriptions, got %d", bus.SubscriptionCount())
	}

	late := streamtest.NewRecorder[any]()
	ch.Subscribe(late.Observer())
	if late.Completions() != 1 {
		t.Error("Expected late subscriber to complete immediately")
	}
}

func TestBinding_TopicsAreUnique(t *testing.T) {
	bus := NewBus()
	first := NewBinding(bus).NewChannel("value").(*busChannel)
	second := NewBinding(bus).NewChannel("value").(*busChannel)

	if first.Topic() == second.Topic() {
		t.Errorf("Expected distinct topics, both were %q", first.Topic())
	}
	if !strings.HasSuffix(first.Topic(), ".value") {
		t.Errorf("Expected topic to end with channel name, got %q", first.Topic())
	}
}

func TestBinding_WildcardSeesChannelTraffic(t *testing.T) {
	bus := NewBus()
	var names []string
	bus.SubscribeAll(func(e Event) {
		if ce, ok := e.(ChannelEvent); ok && ce.Kind == ChannelNext {
			names = append(names, ce.Name)
		}
	})

	ch := NewBinding(bus).NewChannel("value")
	ch.Emit(1)

	if len(names) != 1 || names[0] != "value" {
		t.Errorf("Expected wildcard to observe channel event, got %v", names)
	}
}

func TestBinding_SatisfiesStreamBinding(t *testing.T) {
	var _ stream.Binding = NewBinding(NewBus())
}

func TestObserve(t *testing.T) {
	bus := NewBus()
	rec := streamtest.NewRecorder[EffectDispatchedEvent]()

	sub := ObserveAs[EffectDispatchedEvent](bus, TypeEffectDispatched).Subscribe(rec.Observer())
	bus.Publish(NewEffectDispatchedEvent("c1", "start"))
	bus.Publish(NewComponentMountedEvent("c1", nil))
	sub.Unsubscribe()
	bus.Publish(NewEffectDispatchedEvent("c1", "stop"))

	got := rec.Values()
	if len(got) != 1 || got[0].Effect != "start" {
		t.Errorf("Expected only the first effect event, got %v", got)
	}

	all := streamtest.NewRecorder[Event]()
	allSub := ObserveAll(bus).Subscribe(all.Observer())
	defer allSub.Unsubscribe()
	bus.Publish(NewComponentUnmountedEvent("c1", 2))
	if len(all.Values()) != 1 {
		t.Errorf("Expected ObserveAll to see one event, got %d", len(all.Values()))
	}
}

func TestBinding_ObserverPanicsPropagate(t *testing.T) {
	bindings := map[string]stream.Binding{
		"subject": stream.SubjectBinding{},
		"bus":     NewBinding(NewBus()),
	}

	for name, b := range bindings {
		t.Run(name, func(t *testing.T) {
			ch := b.NewChannel("value")
			ch.Subscribe(stream.Observer[any]{
				Next: func(v any) {
					if v == "boom" {
						panic("effect handler failed")
					}
				},
			})

			propagated := func() (panicked bool) {
				defer func() { panicked = recover() != nil }()
				ch.Emit("boom")
				return false
			}()
			if !propagated {
				t.Error("Expected the observer panic to reach the emitter")
			}
		})
	}
}

func TestBinding_TracersStayRecovered(t *testing.T) {
	bus := NewBus()
	if _, err := bus.SubscribePattern("channel.**", func(Event) { panic("tracer") }); err != nil {
		t.Fatalf("SubscribePattern() error = %v", err)
	}
	ch := NewBinding(bus).NewChannel("value")
	rec := streamtest.NewRecorder[any]()
	ch.Subscribe(rec.Observer())

	ch.Emit(1)

	if got := rec.Values(); len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected [1], got %v", got)
	}
}
