// Package event defines the payload types carried through the transport
// engine and the envelope that wraps them in flight.
//
// An Envelope pairs a payload with its capture timestamp and a sequence
// number assigned when the payload's buffer slot is reserved. Sequence
// numbers are strictly increasing across all producers and define the
// global delivery order.
//
// The Input taxonomy models the terminal and window events the capture
// layer produces: key presses, mouse buttons and motion, wheel scrolling,
// resizes, focus changes, and paste blocks. Every Input carries the
// WindowID it targets so the routing layer can deliver it downstream.
package event
