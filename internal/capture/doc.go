// Package capture feeds terminal input into a pipeline.
//
// A Capture polls a tcell.Screen on its own goroutine, converts each
// terminal event into the event.Input taxonomy, and pushes it into a
// Sink. Bracketed pastes are assembled into a single PasteEvent from
// the key events between the paste markers.
//
// The caller owns the screen: it must be initialized before Start and
// finalized only after Stop returns. Stop posts an interrupt event to
// unblock the poll and joins the goroutine.
package capture
