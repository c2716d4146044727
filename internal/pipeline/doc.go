// Package pipeline assembles the transport: a bus at its initial capacity
// and a processor loop bound to the caller's dispatch callback, built and
// started together, torn down together.
//
// New starts the loop immediately; Shutdown stops it cooperatively and
// joins it. Shutdown is idempotent and safe on a pipeline that never
// started. Push after Shutdown fails with ErrClosed, and a zero or nil
// Pipeline fails with ErrNotStarted, so lifecycle misuse is always a
// predictable error rather than undefined behavior.
package pipeline
