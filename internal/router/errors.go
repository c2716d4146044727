package router

import "errors"

var (
	// ErrNoReceiver indicates no receiver is registered for the
	// envelope's window.
	ErrNoReceiver = errors.New("router: no receiver for window")

	// ErrTokenMismatch indicates an unregister attempt with a token that
	// does not match the current registration.
	ErrTokenMismatch = errors.New("router: registration token mismatch")
)
