package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dshills/stormdrain/internal/bus"
)

func TestCollectorScrape(t *testing.T) {
	b := bus.New[int](bus.WithInitialCapacity(64))
	for i := 0; i < 5; i++ {
		if err := b.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if got := len(b.TryPopBatch(2)); got != 2 {
		t.Fatalf("popped %d, want 2", got)
	}

	c := NewCollector(b)
	if problems, err := testutil.CollectAndLint(c); err != nil {
		t.Fatalf("lint: %v", err)
	} else if len(problems) > 0 {
		t.Fatalf("lint problems: %v", problems)
	}

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	expected := `
# HELP stormdrain_buffer_capacity Current ring buffer capacity.
# TYPE stormdrain_buffer_capacity gauge
stormdrain_buffer_capacity 64
# HELP stormdrain_buffer_expansions_total Ring buffer growth events.
# TYPE stormdrain_buffer_expansions_total counter
stormdrain_buffer_expansions_total 0
# HELP stormdrain_events_popped_total Events claimed from the queue.
# TYPE stormdrain_events_popped_total counter
stormdrain_events_popped_total 2
# HELP stormdrain_events_pushed_total Events accepted by the queue.
# TYPE stormdrain_events_pushed_total counter
stormdrain_events_pushed_total 5
# HELP stormdrain_push_failures_total Pushes rejected at absolute capacity.
# TYPE stormdrain_push_failures_total counter
stormdrain_push_failures_total 0
# HELP stormdrain_queue_depth Envelopes currently queued.
# TYPE stormdrain_queue_depth gauge
stormdrain_queue_depth 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics:\n%v", err)
	}
}

func TestCollectorCountsExpansionAndFailure(t *testing.T) {
	b := bus.New[int](bus.WithInitialCapacity(8), bus.WithMaxCapacity(16))
	for i := 0; i < 16; i++ {
		if err := b.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := b.Push(999); err == nil {
		t.Fatal("push at absolute capacity succeeded")
	}

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(b)); err != nil {
		t.Fatalf("register: %v", err)
	}

	expected := `
# HELP stormdrain_buffer_expansions_total Ring buffer growth events.
# TYPE stormdrain_buffer_expansions_total counter
stormdrain_buffer_expansions_total 1
# HELP stormdrain_push_failures_total Pushes rejected at absolute capacity.
# TYPE stormdrain_push_failures_total counter
stormdrain_push_failures_total 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"stormdrain_buffer_expansions_total", "stormdrain_push_failures_total")
	if err != nil {
		t.Errorf("unexpected metrics:\n%v", err)
	}
}
