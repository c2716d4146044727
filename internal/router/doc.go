// Package router delivers dispatched envelopes to per-window receivers.
//
// The processor's dispatch callback hands envelopes to Registry.Route,
// which looks up the receiver registered for the payload's window and
// posts into its unbounded inbox. Posting never blocks, so a slow window
// throttles only its own drain, never the processor thread. Windows drain
// their inboxes on their own schedule.
//
// Registration hands out a token; unregistering requires it, so a stale
// owner cannot remove a successor registered under the same window.
package router
