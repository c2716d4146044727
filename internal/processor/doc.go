// Package processor drains the bus on one dedicated OS thread and feeds
// each envelope to the caller's dispatch callback.
//
// The loop alternates between two states. ACTIVE: pop a batch, dispatch
// it, or on an empty poll yield and immediately retry. IDLE: entered after
// the idle threshold of consecutive empty polls, where each retry is
// preceded by a short fixed sleep to bound CPU cost; the first non-empty
// pop returns to ACTIVE. A cooperative stop flag is checked at the top of
// every cycle, so a batch in progress always completes before the loop
// exits.
//
// Dispatch failures are isolated: an error return or a panic is logged
// and counted, and the loop proceeds to the next envelope. Nothing the
// callback does can stop the loop.
package processor
