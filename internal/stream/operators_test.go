package stream_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/Iron-Ham/refract/internal/stream"
	"github.com/Iron-Ham/refract/internal/stream/streamtest"
)

func TestMapFilter(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	src := stream.Of(1, 2, 3, 4, 5, 6)
	even := stream.Filter(src, func(v int) bool { return v%2 == 0 })
	stream.Map(even, func(v int) int { return v * 10 }).Subscribe(rec.Observer())

	if got := rec.Values(); !slices.Equal(got, []int{20, 40, 60}) {
		t.Errorf("expected [20 40 60], got %v", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("expected completion, got %d", rec.Completions())
	}
}

func TestMapTo(t *testing.T) {
	rec := streamtest.NewRecorder[string]()
	stream.MapTo(stream.Of(1, 2), "tick").Subscribe(rec.Observer())

	if got := rec.Values(); !slices.Equal(got, []string{"tick", "tick"}) {
		t.Errorf("unexpected values %v", got)
	}
}

func TestDistinctUntilChanged(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	stream.DistinctUntilChanged(stream.Of(1, 1, 2, 2, 2, 1, 3, 3)).Subscribe(rec.Observer())

	if got := rec.Values(); !slices.Equal(got, []int{1, 2, 1, 3}) {
		t.Errorf("expected [1 2 1 3], got %v", got)
	}
}

func TestTake(t *testing.T) {
	t.Run("stops after n values", func(t *testing.T) {
		s := stream.NewSubject[int]()
		rec := streamtest.NewRecorder[int]()
		stream.Take[int](s, 2).Subscribe(rec.Observer())

		s.Emit(1)
		s.Emit(2)
		s.Emit(3)

		if got := rec.Values(); !slices.Equal(got, []int{1, 2}) {
			t.Errorf("expected [1 2], got %v", got)
		}
		if rec.Completions() != 1 {
			t.Errorf("expected completion, got %d", rec.Completions())
		}
		if s.ObserverCount() != 0 {
			t.Errorf("expected upstream to be released, got %d observers", s.ObserverCount())
		}
	})

	t.Run("synchronous source", func(t *testing.T) {
		rec := streamtest.NewRecorder[int]()
		stream.Take(stream.Of(1, 2, 3), 1).Subscribe(rec.Observer())
		if got := rec.Values(); !slices.Equal(got, []int{1}) {
			t.Errorf("expected [1], got %v", got)
		}
		if rec.Completions() != 1 {
			t.Errorf("expected single completion, got %d", rec.Completions())
		}
	})
}

func TestMerge(t *testing.T) {
	a := stream.NewSubject[string]()
	b := stream.NewSubject[string]()
	rec := streamtest.NewRecorder[string]()

	sub := stream.Merge[string](a, b).Subscribe(rec.Observer())
	defer sub.Unsubscribe()

	a.Emit("a1")
	b.Emit("b1")
	a.Emit("a2")
	a.Complete()
	if rec.Completions() != 0 {
		t.Fatal("merge must not complete while a source is live")
	}
	b.Emit("b2")
	b.Complete()

	if got := rec.Values(); !slices.Equal(got, []string{"a1", "b1", "a2", "b2"}) {
		t.Errorf("unexpected order %v", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("expected completion once all sources complete, got %d", rec.Completions())
	}
}

func TestMerge_ErrorReleasesSources(t *testing.T) {
	a := stream.NewSubject[int]()
	boom := errors.New("boom")
	rec := streamtest.NewRecorder[int]()

	stream.Merge[int](a, stream.Throw[int](boom)).Subscribe(rec.Observer())
	a.Emit(1)

	if len(rec.Values()) != 0 {
		t.Errorf("expected no values after error, got %v", rec.Values())
	}
	if errs := rec.Errors(); len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("expected boom, got %v", errs)
	}
	if a.ObserverCount() != 0 {
		t.Errorf("expected sibling source to be released, got %d observers", a.ObserverCount())
	}
}

func TestMerge_ReentrantEmission(t *testing.T) {
	a := stream.NewSubject[int]()
	var got []int
	stream.Merge[int](a).Subscribe(stream.Observer[int]{
		Next: func(v int) {
			got = append(got, v)
			if v == 1 {
				// Emitting from inside the observer must not recurse.
				a.Emit(2)
				got = append(got, -1)
			}
		},
	})
	a.Emit(1)

	if !slices.Equal(got, []int{1, -1, 2}) {
		t.Errorf("expected reentrant value after current delivery, got %v", got)
	}
}

func TestMerge_Unsubscribe(t *testing.T) {
	a := stream.NewSubject[int]()
	rec := streamtest.NewRecorder[int]()
	sub := stream.Merge[int](a).Subscribe(rec.Observer())

	a.Emit(1)
	sub.Unsubscribe()
	a.Emit(2)

	if got := rec.Values(); !slices.Equal(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
}

func TestMerge_UnsubscribeDuringDelivery(t *testing.T) {
	a := stream.NewSubject[int]()
	var (
		got []int
		sub stream.Subscription
	)
	sub = stream.Merge[int](a).Subscribe(stream.Observer[int]{
		Next: func(v int) {
			got = append(got, v)
			if v == 1 {
				// Queued before the unsubscribe, so it is still delivered.
				a.Emit(2)
				sub.Unsubscribe()
				a.Emit(3)
			}
		},
	})
	a.Emit(1)
	a.Emit(4)

	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestMerge_RecoversFromPanickingObserver(t *testing.T) {
	a := stream.NewSubject[int]()
	var got []int
	stream.Merge[int](a).Subscribe(stream.Observer[int]{
		Next: func(v int) {
			if v == 1 {
				panic("boom")
			}
			got = append(got, v)
		},
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the observer panic to propagate")
			}
		}()
		a.Emit(1)
	}()
	a.Emit(2)

	if !slices.Equal(got, []int{2}) {
		t.Errorf("expected delivery to resume after a panic, got %v", got)
	}
}

func TestCombineLatest2(t *testing.T) {
	a := stream.NewSubject[string]()
	b := stream.NewSubject[int]()
	rec := streamtest.NewRecorder[stream.Pair[string, int]]()

	stream.CombineLatest2[string, int](a, b).Subscribe(rec.Observer())

	a.Emit("x")
	if len(rec.Values()) != 0 {
		t.Fatal("expected no combination until both sources emitted")
	}
	b.Emit(1)
	a.Emit("y")
	b.Emit(2)

	want := []stream.Pair[string, int]{{"x", 1}, {"y", 1}, {"y", 2}}
	if got := rec.Values(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCombineLatest2_CompletesWhenSourceEmpty(t *testing.T) {
	rec := streamtest.NewRecorder[stream.Pair[int, int]]()
	stream.CombineLatest2(stream.Empty[int](), stream.Never[int]()).Subscribe(rec.Observer())
	if rec.Completions() != 1 {
		t.Errorf("expected completion, got %d", rec.Completions())
	}
}

func TestSwitchMap(t *testing.T) {
	outer := stream.NewSubject[string]()
	inners := map[string]*stream.Subject[int]{
		"a": stream.NewSubject[int](),
		"b": stream.NewSubject[int](),
	}
	rec := streamtest.NewRecorder[int]()

	stream.SwitchMap[string, int](outer, func(key string) stream.Observable[int] {
		return inners[key]
	}).Subscribe(rec.Observer())

	outer.Emit("a")
	inners["a"].Emit(1)
	outer.Emit("b")
	inners["a"].Emit(2)
	inners["b"].Emit(3)

	if got := rec.Values(); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("expected only values of the active inner [1 3], got %v", got)
	}
	if inners["a"].ObserverCount() != 0 {
		t.Error("expected previous inner to be released")
	}

	outer.Complete()
	if rec.Completions() != 0 {
		t.Fatal("must not complete while inner is live")
	}
	inners["b"].Complete()
	if rec.Completions() != 1 {
		t.Errorf("expected completion, got %d", rec.Completions())
	}
}

func TestFunc_NilSubscription(t *testing.T) {
	obs := stream.Func[int](func(o stream.Observer[int]) stream.Subscription {
		o.OnNext(7)
		return nil
	})
	rec := streamtest.NewRecorder[int]()
	sub := obs.Subscribe(rec.Observer())
	sub.Unsubscribe()

	if got := rec.Values(); !slices.Equal(got, []int{7}) {
		t.Errorf("expected [7], got %v", got)
	}
}
