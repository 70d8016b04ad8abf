package stream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Iron-Ham/refract/internal/stream"
	"github.com/Iron-Ham/refract/internal/stream/streamtest"
	"github.com/sourcegraph/conc"
)

func TestFromFunc(t *testing.T) {
	t.Run("emits result then completes", func(t *testing.T) {
		done := make(chan struct{})
		var got int
		stream.FromFunc(func(context.Context) (int, error) {
			return 42, nil
		}).Subscribe(stream.Observer[int]{
			Next:     func(v int) { got = v },
			Complete: func() { close(done) },
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for completion")
		}
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
	})

	t.Run("routes errors", func(t *testing.T) {
		boom := errors.New("boom")
		errCh := make(chan error, 1)
		stream.FromFunc(func(context.Context) (int, error) {
			return 0, boom
		}).Subscribe(stream.Observer[int]{Error: func(err error) { errCh <- err }})

		select {
		case err := <-errCh:
			if !errors.Is(err, boom) {
				t.Errorf("expected boom, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for error")
		}
	})

	t.Run("recovers panics as errors", func(t *testing.T) {
		errCh := make(chan error, 1)
		stream.FromFunc(func(context.Context) (int, error) {
			panic("kaboom")
		}).Subscribe(stream.Observer[int]{Error: func(err error) { errCh <- err }})

		select {
		case err := <-errCh:
			if err == nil {
				t.Error("expected non-nil error from panic")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for panic error")
		}
	})

	t.Run("unsubscribe cancels and suppresses result", func(t *testing.T) {
		started := make(chan struct{})
		canceled := make(chan struct{})
		emitted := make(chan int, 1)

		sub := stream.FromFunc(func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			close(canceled)
			return 1, nil
		}).Subscribe(stream.Observer[int]{Next: func(v int) { emitted <- v }})

		<-started
		sub.Unsubscribe()

		select {
		case <-canceled:
		case <-time.After(time.Second):
			t.Fatal("expected context cancellation")
		}
		select {
		case v := <-emitted:
			t.Errorf("expected no emission after unsubscribe, got %d", v)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestFromChannel(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "a"
	ch <- "b"
	close(ch)

	done := make(chan struct{})
	var got []string
	stream.FromChannel(ch).Subscribe(stream.Observer[string]{
		Next:     func(v string) { got = append(got, v) },
		Complete: func() { close(done) },
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestMerge_ConcurrentSourcesAreSerialized(t *testing.T) {
	const producers, perProducer = 8, 200

	sources := make([]*stream.Subject[int], producers)
	observables := make([]stream.Observable[int], producers)
	for i := range sources {
		sources[i] = stream.NewSubject[int]()
		observables[i] = sources[i]
	}

	var (
		inFlight int
		overlap  bool
		count    int
	)
	stream.Merge(observables...).Subscribe(stream.Observer[int]{
		Next: func(int) {
			// No lock: the serializer guarantees exclusive access.
			inFlight++
			if inFlight > 1 {
				overlap = true
			}
			count++
			inFlight--
		},
	})

	var wg conc.WaitGroup
	for _, src := range sources {
		wg.Go(func() {
			for j := 0; j < perProducer; j++ {
				src.Emit(j)
			}
		})
	}
	wg.Wait()

	if overlap {
		t.Error("observer was called concurrently")
	}
	if count != producers*perProducer {
		t.Errorf("expected %d values, got %d", producers*perProducer, count)
	}
}

func TestFromFunc_DeliversThroughSchedule(t *testing.T) {
	sched := streamtest.NewScheduler()
	rec := streamtest.NewRecorder[int]()
	obs := rec.Observer()
	obs.Schedule = sched.Schedule

	stream.Map(stream.FromFunc(func(context.Context) (int, error) {
		return 20, nil
	}), func(v int) int { return v + 1 }).Subscribe(obs)

	select {
	case <-sched.Scheduled():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduled delivery")
	}
	if got := rec.Values(); len(got) != 0 {
		t.Fatalf("expected no delivery before flush, got %v", got)
	}

	sched.Flush()
	if got := rec.Values(); len(got) != 1 || got[0] != 21 {
		t.Errorf("expected [21], got %v", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("expected 1 completion, got %d", rec.Completions())
	}
}

func TestFromFunc_UnsubscribeDropsScheduledDelivery(t *testing.T) {
	sched := streamtest.NewScheduler()
	rec := streamtest.NewRecorder[int]()
	obs := rec.Observer()
	obs.Schedule = sched.Schedule

	sub := stream.FromFunc(func(context.Context) (int, error) {
		return 1, nil
	}).Subscribe(obs)

	select {
	case <-sched.Scheduled():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduled delivery")
	}
	sub.Unsubscribe()
	sched.Flush()

	if got := rec.Values(); len(got) != 0 {
		t.Errorf("expected no values after unsubscribe, got %v", got)
	}
	if rec.Completions() != 0 {
		t.Errorf("expected no completion after unsubscribe, got %d", rec.Completions())
	}
}
