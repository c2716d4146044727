package bus

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/dshills/stormdrain/internal/event"
	"github.com/dshills/stormdrain/internal/ring"
)

// Bus transports envelopes through a ring it replaces with a larger one
// whenever producers outpace the consumer. All methods are safe for
// concurrent use.
type Bus[T any] struct {
	mu   sync.RWMutex
	ring *ring.Ring[T]

	maxCapacity uint64
	stats       statistics
	clock       clock.Clock
	log         *zap.Logger
}

// New creates a bus with a ring at the configured initial capacity.
func New[T any](opts ...Option) *Bus[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxCapacity < cfg.initialCapacity {
		cfg.maxCapacity = cfg.initialCapacity
	}

	b := &Bus[T]{
		ring:        ring.New[T](cfg.initialCapacity),
		maxCapacity: cfg.maxCapacity,
		clock:       cfg.clock,
		log:         cfg.logger,
	}
	b.stats.maxCapacity.Store(cfg.initialCapacity)
	return b
}

// Push enqueues a payload. It never blocks on the consumer: in the steady
// state it completes in small constant time, and when the ring is full it
// performs one expansion before completing. The only failure is a
// *CapacityError when the ring is full at maximum capacity.
func (b *Bus[T]) Push(payload T) error {
	ts := b.clock.Now()

	b.mu.RLock()
	_, err := b.ring.TryPush(payload, ts)
	b.mu.RUnlock()
	if err == nil {
		b.stats.pushed.Add(1)
		return nil
	}

	return b.expandAndPush(payload, ts)
}

// expandAndPush retries the push under the write lock, growing the ring
// first if it is still full.
func (b *Bus[T]) expandAndPush(payload T, ts time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Another producer may have expanded while we waited for the lock.
	if _, err := b.ring.TryPush(payload, ts); err == nil {
		b.stats.pushed.Add(1)
		return nil
	}

	current := uint64(b.ring.Cap())
	if current >= b.maxCapacity {
		b.stats.pushFailures.Add(1)
		cerr := &CapacityError{Capacity: int(current), Queued: b.ring.Len()}
		b.log.Error("event bus overflow",
			zap.Int("capacity", cerr.Capacity),
			zap.Int("queued", cerr.Queued))
		return cerr
	}

	next := current * 2
	if next > b.maxCapacity {
		next = b.maxCapacity
	}

	// The replacement starts at the old ring's head ticket so migrated
	// envelopes re-claim their original sequence numbers.
	grown := ring.NewAt[T](next, b.ring.HeadSeq())
	migrated := 0
	for {
		env, ok := b.ring.TryPop()
		if !ok {
			break
		}
		seq, err := grown.TryPush(env.Payload, env.Timestamp)
		if err != nil || seq != env.Seq {
			panic("bus: expansion broke sequence continuity")
		}
		migrated++
	}
	b.ring = grown
	b.stats.expansions.Add(1)
	b.stats.maxCapacity.Store(next)
	b.log.Info("ring buffer expanded",
		zap.Uint64("old_capacity", current),
		zap.Uint64("new_capacity", next),
		zap.Int("migrated", migrated))

	// Retry exactly once. The grown ring has at least `current` free
	// slots, so this cannot fail.
	if _, err := b.ring.TryPush(payload, ts); err != nil {
		panic("bus: push failed after expansion")
	}
	b.stats.pushed.Add(1)
	return nil
}

// TryPop claims the oldest queued envelope. Returns false when the bus is
// empty. Never blocks.
func (b *Bus[T]) TryPop() (event.Envelope[T], bool) {
	b.mu.RLock()
	env, ok := b.ring.TryPop()
	b.mu.RUnlock()
	if ok {
		b.stats.popped.Add(1)
	}
	return env, ok
}

// TryPopBatch claims up to max envelopes in ascending sequence order.
// Returns nil when the bus is empty. Never blocks.
func (b *Bus[T]) TryPopBatch(max int) []event.Envelope[T] {
	b.mu.RLock()
	batch := b.ring.TryPopBatch(max)
	b.mu.RUnlock()
	if n := len(batch); n > 0 {
		b.stats.popped.Add(uint64(n))
	}
	return batch
}

// Len reports the approximate number of queued envelopes.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ring.Len()
}

// IsEmpty reports whether the bus appears empty.
func (b *Bus[T]) IsEmpty() bool {
	return b.Len() == 0
}

// Cap returns the current ring capacity.
func (b *Bus[T]) Cap() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ring.Cap()
}

// Stats returns a snapshot of the bus counters.
func (b *Bus[T]) Stats() Stats {
	return b.stats.snapshot()
}
