package event

import "time"

// Envelope wraps a payload with the metadata the transport assigns to it.
type Envelope[T any] struct {
	// Payload is the caller's event data.
	Payload T

	// Timestamp is when the payload was accepted for transport.
	Timestamp time.Time

	// Seq is the payload's global sequence number. Sequence numbers are
	// assigned at slot reservation, strictly increase across all
	// producers, and are never reused.
	Seq uint64
}
