package bus

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded indicates a push found the ring full at maximum
// capacity. No local recovery exists; the owner decides how to surface
// the overload.
var ErrCapacityExceeded = errors.New("event bus at maximum capacity")

// CapacityError reports the rejected push's context. It wraps
// ErrCapacityExceeded so errors.Is matches the sentinel.
type CapacityError struct {
	// Capacity is the ring capacity at the time of rejection.
	Capacity int

	// Queued is the approximate occupancy at the time of rejection.
	Queued int
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("event bus overflow: %d events queued at maximum capacity %d", e.Queued, e.Capacity)
}

// Unwrap returns ErrCapacityExceeded.
func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
