package bus

import "sync/atomic"

// statistics holds the bus's diagnostic counters.
type statistics struct {
	pushed       atomic.Uint64
	popped       atomic.Uint64
	expansions   atomic.Uint64
	pushFailures atomic.Uint64
	maxCapacity  atomic.Uint64
}

// Stats is a point-in-time snapshot of the bus counters. Counters are
// loaded independently; no cross-counter consistency is implied.
type Stats struct {
	// Pushed is the total number of envelopes accepted.
	Pushed uint64

	// Popped is the total number of envelopes handed to consumers.
	Popped uint64

	// Expansions is the number of ring replacements performed.
	Expansions uint64

	// PushFailures counts pushes rejected at maximum capacity. It stays
	// zero outside the overload path.
	PushFailures uint64

	// MaxCapacity is the largest ring capacity reached so far.
	MaxCapacity uint64
}

// snapshot loads every counter.
func (s *statistics) snapshot() Stats {
	return Stats{
		Pushed:       s.pushed.Load(),
		Popped:       s.popped.Load(),
		Expansions:   s.expansions.Load(),
		PushFailures: s.pushFailures.Load(),
		MaxCapacity:  s.maxCapacity.Load(),
	}
}
