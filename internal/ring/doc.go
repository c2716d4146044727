// Package ring implements the bounded multi-producer/multi-consumer queue
// the event bus transports envelopes through.
//
// # Protocol
//
// The queue is a power-of-two array of slots addressed by two monotonically
// increasing tickets: enqueue (next slot a writer may claim) and dequeue
// (next slot a reader may claim). A ticket maps to a physical slot with
// ticket & mask. The enqueue ticket doubles as the envelope's sequence
// number, so one counter provides both slot addressing and the global
// delivery order.
//
// Each slot carries its own atomic sequence marker, which encodes the
// slot's lifecycle relative to the tickets:
//
//	marker == t          slot is vacant, writer holding ticket t may fill it
//	marker == t+1        slot is published, reader holding ticket t may take it
//	marker == t+capacity slot vacated again, armed for the writer one lap ahead
//
// A writer CASes the enqueue ticket to reserve a slot, stores the envelope,
// and publishes with a release store of t+1. A reader CASes the dequeue
// ticket, loads the envelope, and vacates with a release store of
// t+capacity. The marker is what stops a writer from overwriting a slot
// whose occupant from one lap back has not been consumed, and it confines
// each reservation to exactly one winner.
//
// # Progress
//
// The protocol is lock-free: a failed CAS always means another producer or
// consumer completed its operation, and no thread ever waits on a blocking
// primitive.
//
// # Expansion support
//
// NewAt builds a ring whose tickets begin at an arbitrary start value. The
// bus uses this to migrate envelopes into a larger ring during expansion:
// the replacement starts at the old ring's dequeue ticket, so re-pushed
// envelopes re-claim their exact original sequence numbers and fresh pushes
// continue the numbering with no gap.
package ring
