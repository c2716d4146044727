package bus

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap/zaptest"
)

func TestBusPushPop(t *testing.T) {
	b := New[string](WithInitialCapacity(64))

	for _, s := range []string{"a", "b", "c"} {
		if err := b.Push(s); err != nil {
			t.Fatalf("Push(%q): %v", s, err)
		}
	}
	if got := b.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	batch := b.TryPopBatch(10)
	if len(batch) != 3 {
		t.Fatalf("batch len = %d, want 3", len(batch))
	}
	for i, want := range []string{"a", "b", "c"} {
		if batch[i].Payload != want {
			t.Errorf("batch[%d].Payload = %q, want %q", i, batch[i].Payload, want)
		}
		if batch[i].Seq != uint64(i) {
			t.Errorf("batch[%d].Seq = %d, want %d", i, batch[i].Seq, i)
		}
	}

	if !b.IsEmpty() {
		t.Error("bus should be empty after drain")
	}
	if got := b.TryPopBatch(10); got != nil {
		t.Errorf("empty bus batch = %v, want nil", got)
	}
}

func TestBusStatsInitial(t *testing.T) {
	b := New[int](WithInitialCapacity(256))

	s := b.Stats()
	if s.Pushed != 0 || s.Popped != 0 || s.Expansions != 0 || s.PushFailures != 0 {
		t.Errorf("new bus counters = %+v, want zeros", s)
	}
	if s.MaxCapacity != 256 {
		t.Errorf("MaxCapacity = %d, want initial capacity 256", s.MaxCapacity)
	}
	if got := b.Cap(); got != 256 {
		t.Errorf("Cap() = %d, want 256", got)
	}
}

func TestBusCaptureTimestamp(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Unix(1700000000, 0))
	b := New[int](WithInitialCapacity(8), WithClock(mock))

	if err := b.Push(1); err != nil {
		t.Fatalf("Push: %v", err)
	}
	mock.Add(time.Second)
	if err := b.Push(2); err != nil {
		t.Fatalf("Push: %v", err)
	}

	batch := b.TryPopBatch(2)
	if len(batch) != 2 {
		t.Fatalf("batch len = %d, want 2", len(batch))
	}
	if !batch[0].Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("first timestamp = %v, want capture instant", batch[0].Timestamp)
	}
	if !batch[1].Timestamp.Equal(time.Unix(1700000001, 0)) {
		t.Errorf("second timestamp = %v, want capture instant", batch[1].Timestamp)
	}
}

// Pushing past the initial capacity with no draining must grow the ring
// transparently: every envelope survives, in order, with gap-free
// sequence numbers.
func TestBusExpansionTransparency(t *testing.T) {
	const total = DefaultInitialCapacity + 1000

	b := New[int](WithLogger(zaptest.NewLogger(t)))

	for i := 0; i < total; i++ {
		if err := b.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	s := b.Stats()
	if s.Expansions < 1 {
		t.Fatalf("Expansions = %d, want >= 1", s.Expansions)
	}
	if s.MaxCapacity <= DefaultInitialCapacity {
		t.Errorf("MaxCapacity = %d, want > %d", s.MaxCapacity, DefaultInitialCapacity)
	}
	if got := b.Len(); got != total {
		t.Fatalf("Len() = %d, want %d", got, total)
	}

	var drained int
	next := uint64(0)
	for {
		batch := b.TryPopBatch(512)
		if batch == nil {
			break
		}
		for _, env := range batch {
			if env.Seq != next {
				t.Fatalf("seq = %d, want %d (gap or reorder)", env.Seq, next)
			}
			if env.Payload != int(next) {
				t.Fatalf("payload = %d, want %d", env.Payload, next)
			}
			next++
		}
		drained += len(batch)
	}

	if drained != total {
		t.Fatalf("drained %d envelopes, want %d", drained, total)
	}
	if got := b.Stats(); got.Popped != uint64(total) || got.Pushed != uint64(total) {
		t.Errorf("stats after drain = %+v, want pushed=popped=%d", got, total)
	}
}

// At maximum capacity the bus rejects exactly the push that would exceed
// it, and not before.
func TestBusCapacityExceeded(t *testing.T) {
	t.Run("no headroom", func(t *testing.T) {
		b := New[int](WithInitialCapacity(64), WithMaxCapacity(64))

		for i := 0; i < 64; i++ {
			if err := b.Push(i); err != nil {
				t.Fatalf("push %d failed early: %v", i, err)
			}
		}

		err := b.Push(64)
		if err == nil {
			t.Fatal("expected capacity error")
		}
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("errors.Is(err, ErrCapacityExceeded) = false, err = %v", err)
		}
		var cerr *CapacityError
		if !errors.As(err, &cerr) {
			t.Fatalf("errors.As(*CapacityError) = false, err = %v", err)
		}
		if cerr.Capacity != 64 {
			t.Errorf("CapacityError.Capacity = %d, want 64", cerr.Capacity)
		}
		if got := b.Stats().PushFailures; got != 1 {
			t.Errorf("PushFailures = %d, want 1", got)
		}
	})

	t.Run("after capped expansion", func(t *testing.T) {
		b := New[int](WithInitialCapacity(32), WithMaxCapacity(64))

		for i := 0; i < 64; i++ {
			if err := b.Push(i); err != nil {
				t.Fatalf("push %d: %v", i, err)
			}
		}
		s := b.Stats()
		if s.Expansions != 1 {
			t.Fatalf("Expansions = %d, want 1", s.Expansions)
		}
		if s.MaxCapacity != 64 {
			t.Fatalf("MaxCapacity = %d, want 64", s.MaxCapacity)
		}

		if err := b.Push(64); !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("push past ceiling: err = %v, want ErrCapacityExceeded", err)
		}

		// The rejection lost nothing: a full drain still yields the
		// accepted envelopes in order.
		batch := b.TryPopBatch(128)
		if len(batch) != 64 {
			t.Fatalf("drain = %d envelopes, want 64", len(batch))
		}
		for i, env := range batch {
			if env.Seq != uint64(i) {
				t.Fatalf("seq = %d, want %d", env.Seq, i)
			}
		}
	})
}

// Expansion happening between two pushes of the same producer must not
// disturb per-producer order or duplicate anything, even with concurrent
// producers and consumers.
func TestBusConcurrentExpansion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const (
		producers   = 4
		perProducer = 5_000
		total       = producers * perProducer
	)

	b := New[int](WithInitialCapacity(64))
	seen := make([]int32, total)
	var consumed atomic.Int64

	var cg sync.WaitGroup
	cg.Add(2)
	for c := 0; c < 2; c++ {
		go func() {
			defer cg.Done()
			for consumed.Load() < total {
				batch := b.TryPopBatch(64)
				if batch == nil {
					runtime.Gosched()
					continue
				}
				for _, env := range batch {
					atomic.AddInt32(&seen[env.Payload], 1)
				}
				consumed.Add(int64(len(batch)))
			}
		}()
	}

	var pg sync.WaitGroup
	pg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(from int) {
			defer pg.Done()
			for i := from; i < from+perProducer; i++ {
				if err := b.Push(i); err != nil {
					t.Errorf("push %d: %v", i, err)
					return
				}
			}
		}(p * perProducer)
	}

	pg.Wait()
	cg.Wait()

	for i := 0; i < total; i++ {
		if seen[i] != 1 {
			t.Fatalf("payload %d seen %d times, want exactly once", i, seen[i])
		}
	}

	s := b.Stats()
	if s.Pushed != total {
		t.Errorf("Pushed = %d, want %d", s.Pushed, total)
	}
	if s.Popped != total {
		t.Errorf("Popped = %d, want %d", s.Popped, total)
	}
	if s.Expansions < 1 {
		t.Errorf("Expansions = %d, want >= 1 (initial capacity was 64)", s.Expansions)
	}
}

// total_popped + currently_queued == total_pushed at every observation
// point. Counters are only mutually consistent when no operation is in
// flight, so the exact checks happen between operations and after the
// concurrent phase drains.
func TestBusConservation(t *testing.T) {
	b := New[int](WithInitialCapacity(128))

	check := func(step string) {
		t.Helper()
		s := b.Stats()
		if got, want := s.Popped+uint64(b.Len()), s.Pushed; got != want {
			t.Fatalf("%s: popped+queued = %d, pushed = %d", step, got, want)
		}
	}

	check("empty")
	for i := 0; i < 300; i++ {
		if err := b.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
		if i%50 == 0 {
			check("during pushes")
		}
	}
	check("after pushes")

	for b.TryPopBatch(17) != nil {
		check("during drain")
	}
	check("after drain")

	// Concurrent phase: checked at quiescence.
	const (
		producers   = 4
		perProducer = 2_500
	)
	var pg sync.WaitGroup
	pg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer pg.Done()
			for i := 0; i < perProducer; i++ {
				if err := b.Push(i); err != nil {
					t.Errorf("push: %v", err)
					return
				}
			}
		}()
	}
	pg.Wait()
	check("after concurrent pushes")

	for b.TryPopBatch(64) != nil {
	}
	check("after final drain")

	if got, want := b.Stats().Pushed, uint64(300+producers*perProducer); got != want {
		t.Fatalf("Pushed = %d, want %d", got, want)
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
}

// Ten thousand pushes with no consumer, then a batched manual drain:
// everything comes back exactly once, in order, across the expansion.
func TestBusManualDrainScenario(t *testing.T) {
	const total = 10_000

	b := New[int](WithLogger(zaptest.NewLogger(t)))

	for i := 0; i < total; i++ {
		if err := b.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if got := b.Len(); got != total {
		t.Fatalf("Len() = %d, want %d", got, total)
	}
	if got := b.Stats().Expansions; got != 1 {
		t.Fatalf("Expansions = %d, want 1 (default capacity doubled once)", got)
	}

	next := uint64(0)
	for {
		batch := b.TryPopBatch(100)
		if batch == nil {
			break
		}
		for _, env := range batch {
			if env.Seq != next || env.Payload != int(next) {
				t.Fatalf("drained seq=%d payload=%d, want both %d", env.Seq, env.Payload, next)
			}
			next++
		}
	}
	if next != total {
		t.Fatalf("drained %d envelopes, want %d", next, total)
	}
	if got := b.Stats().MaxCapacity; got != 2*DefaultInitialCapacity {
		t.Errorf("MaxCapacity = %d, want %d", got, 2*DefaultInitialCapacity)
	}
	if !b.IsEmpty() {
		t.Error("bus not empty after full drain")
	}
}

func BenchmarkBusPush(b *testing.B) {
	bus := New[int](WithInitialCapacity(1 << 16))
	var stop atomic.Bool

	go func() {
		for !stop.Load() {
			if bus.TryPopBatch(256) == nil {
				runtime.Gosched()
			}
		}
	}()
	defer stop.Store(true)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if err := bus.Push(i); err != nil {
				b.Fatalf("push: %v", err)
			}
			i++
		}
	})
}
