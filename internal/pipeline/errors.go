package pipeline

import "errors"

var (
	// ErrNotStarted is returned by operations on a zero or nil Pipeline.
	ErrNotStarted = errors.New("pipeline: not started")

	// ErrClosed is returned by Push after Shutdown.
	ErrClosed = errors.New("pipeline: closed")

	// ErrNilDispatch is returned by New when no dispatch callback is
	// supplied.
	ErrNilDispatch = errors.New("pipeline: dispatch callback is nil")
)
