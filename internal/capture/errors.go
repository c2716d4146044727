package capture

import "errors"

var (
	// ErrNilScreen is returned by New when no screen is supplied.
	ErrNilScreen = errors.New("capture: screen is nil")

	// ErrNilSink is returned by New when no sink is supplied.
	ErrNilSink = errors.New("capture: sink is nil")

	// ErrAlreadyRunning is returned by Start when the capture is running.
	ErrAlreadyRunning = errors.New("capture already running")

	// ErrStopped is returned by Start after Stop; a stopped capture is
	// never restarted.
	ErrStopped = errors.New("capture stopped")
)
