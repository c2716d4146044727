package ring

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dshills/stormdrain/internal/event"
)

// ErrFull is returned by TryPush when every slot holds an unconsumed
// envelope. The bus treats it as the expansion trigger; it never reaches
// callers below maximum capacity.
var ErrFull = errors.New("ring: buffer full")

// goschedEvery bounds how many failed CAS attempts a spinning operation
// makes before yielding the processor.
const goschedEvery = 64

// slot is one storage cell. The seq marker tracks the slot's lifecycle
// relative to the tickets; see the package documentation.
type slot[T any] struct {
	seq atomic.Uint64
	env event.Envelope[T]
}

// Ring is a bounded MPMC queue of envelopes. All methods are safe for
// concurrent use by any number of producers and consumers, and none of
// them blocks.
type Ring[T any] struct {
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []slot[T]
	_        [64]byte
	enqueue  atomic.Uint64
	_        [64]byte
	dequeue  atomic.Uint64
	_        [64]byte
}

// New creates a ring with the given capacity, which must be a power of
// two. Tickets (and therefore sequence numbers) begin at zero.
func New[T any](capacity uint64) *Ring[T] {
	return NewAt[T](capacity, 0)
}

// NewAt creates a ring whose tickets begin at start. Used by the bus to
// build expansion targets that continue an existing sequence.
func NewAt[T any](capacity, start uint64) *Ring[T] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of two and > 0")
	}

	r := &Ring[T]{
		mask:     capacity - 1,
		capacity: capacity,
		slots:    make([]slot[T], capacity),
	}
	for i := uint64(0); i < capacity; i++ {
		t := start + i
		r.slots[t&r.mask].seq.Store(t)
	}
	r.enqueue.Store(start)
	r.dequeue.Store(start)
	return r
}

// TryPush reserves the next enqueue ticket, writes an envelope carrying
// the payload, the capture timestamp, and the ticket as its sequence
// number, and publishes it. Returns ErrFull without side effects when the
// target slot has not been vacated since the previous lap.
func (r *Ring[T]) TryPush(payload T, ts time.Time) (uint64, error) {
	var spins uint32
	for {
		pos := r.enqueue.Load()
		s := &r.slots[pos&r.mask]

		seq := s.seq.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			// Slot vacant for this ticket; try to reserve it.
			if r.enqueue.CompareAndSwap(pos, pos+1) {
				s.env = event.Envelope[T]{
					Payload:   payload,
					Timestamp: ts,
					Seq:       pos,
				}
				// Publish: readers holding ticket pos may now claim it.
				s.seq.Store(pos + 1)
				return pos, nil
			}
		case diff < 0:
			// The occupant from one lap back is unconsumed.
			return 0, ErrFull
		default:
			// Stale ticket; reload and retry.
		}

		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// TryPop claims the next published envelope. Returns false when the queue
// is empty.
func (r *Ring[T]) TryPop() (event.Envelope[T], bool) {
	var zero event.Envelope[T]
	var spins uint32
	for {
		pos := r.dequeue.Load()
		s := &r.slots[pos&r.mask]

		seq := s.seq.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			// Published for this ticket; try to claim it.
			if r.dequeue.CompareAndSwap(pos, pos+1) {
				env := s.env
				s.env = zero
				// Vacate: armed for the writer one lap ahead.
				s.seq.Store(pos + r.capacity)
				return env, true
			}
		case diff < 0:
			// No producer has published this ticket yet.
			return zero, false
		default:
			// Stale ticket; reload and retry.
		}

		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// TryPopBatch claims up to max envelopes, in ascending sequence order.
// Returns nil when the queue is empty. The slice is allocated only once
// the first envelope is available.
func (r *Ring[T]) TryPopBatch(max int) []event.Envelope[T] {
	var out []event.Envelope[T]
	for len(out) < max {
		env, ok := r.TryPop()
		if !ok {
			break
		}
		if out == nil {
			out = make([]event.Envelope[T], 0, max)
		}
		out = append(out, env)
	}
	return out
}

// Len reports the approximate number of stored envelopes. Under concurrent
// mutation the counters are read independently, so the result is clamped
// into [0, capacity].
func (r *Ring[T]) Len() int {
	tail := r.enqueue.Load()
	head := r.dequeue.Load()
	if tail <= head {
		return 0
	}
	n := tail - head
	if n > r.capacity {
		n = r.capacity
	}
	return int(n)
}

// IsEmpty reports whether the queue appears empty.
func (r *Ring[T]) IsEmpty() bool {
	return r.Len() == 0
}

// IsFull reports whether the queue appears full.
func (r *Ring[T]) IsFull() bool {
	return r.Len() == int(r.capacity)
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return int(r.capacity)
}

// NextSeq returns the sequence number the next successful push will be
// assigned. Meaningful only when producers are quiescent; the bus relies
// on it during expansion, when it holds exclusive access.
func (r *Ring[T]) NextSeq() uint64 {
	return r.enqueue.Load()
}

// HeadSeq returns the sequence number of the oldest stored envelope (the
// next to be popped). Meaningful only when consumers are quiescent.
func (r *Ring[T]) HeadSeq() uint64 {
	return r.dequeue.Load()
}
