package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start when the processor is
	// running.
	ErrAlreadyRunning = errors.New("processor already running")

	// ErrStopped is returned by Start after Stop; a stopped processor is
	// never restarted.
	ErrStopped = errors.New("processor stopped")

	// ErrDispatchPanic marks a fault that originated as a panic in the
	// dispatch callback.
	ErrDispatchPanic = errors.New("dispatch callback panicked")
)

// PanicError wraps a panic recovered from the dispatch callback.
type PanicError struct {
	// Value is the recovered panic value.
	Value any

	// Stack is the stack trace captured at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("dispatch panic: %v", e.Value)
}

// Is allows errors.Is to match PanicError with ErrDispatchPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrDispatchPanic
}
