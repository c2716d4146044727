// Package bus owns the transport's current ring and grows it on demand.
//
// Producers push payloads; the bus stamps the capture timestamp, forwards
// to the ring, and absorbs transient fullness by swapping in a ring of
// double the capacity (up to the configured maximum) with all queued
// envelopes migrated in order. Sequence numbers survive expansion
// unchanged, so consumers observe one gap-free total order regardless of
// how many times the buffer grew.
//
// Every push and pop holds the bus's read lock for the duration of the
// operation; expansion takes the write lock. The swap is therefore atomic
// with respect to in-flight operations: nothing queued before the swap is
// lost, and nothing already consumed reappears. Only a push that finds the
// ring full at maximum capacity fails, with a CapacityError the owner is
// expected to treat as an unrecoverable overload signal.
package bus
