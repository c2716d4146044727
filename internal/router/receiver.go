package router

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/google/uuid"

	"github.com/dshills/stormdrain/internal/event"
)

// Envelope is the unit the router delivers.
type Envelope = event.Envelope[event.Input]

// Receiver is one window's inbox. Posting is unbounded and never blocks;
// the window drains on its own schedule. A receiver that has been
// replaced in the registry keeps its queued envelopes and can still be
// drained by its holder.
type Receiver struct {
	window event.WindowID
	token  uuid.UUID

	mu    sync.Mutex
	inbox *queue.Queue
}

// newReceiver creates an empty inbox for a window.
func newReceiver(window event.WindowID) *Receiver {
	return &Receiver{
		window: window,
		token:  uuid.New(),
		inbox:  queue.New(),
	}
}

// Window returns the window this receiver was registered for.
func (r *Receiver) Window() event.WindowID {
	return r.window
}

// Token returns the registration token required to unregister.
func (r *Receiver) Token() uuid.UUID {
	return r.token
}

// Post appends an envelope to the inbox.
func (r *Receiver) Post(env Envelope) {
	r.mu.Lock()
	r.inbox.Add(env)
	r.mu.Unlock()
}

// Drain removes and returns up to max envelopes in post order. Returns
// nil when the inbox is empty.
func (r *Receiver) Drain(max int) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.inbox.Length()
	if n == 0 {
		return nil
	}
	if n > max {
		n = max
	}

	out := make([]Envelope, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.inbox.Remove().(Envelope))
	}
	return out
}

// Pending reports the number of queued envelopes.
func (r *Receiver) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inbox.Length()
}
