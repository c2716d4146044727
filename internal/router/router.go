package router

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/stormdrain/internal/event"
)

// Registry maps windows to their receivers. All methods are safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	receivers map[event.WindowID]*Receiver

	routed atomic.Uint64
	missed atomic.Uint64

	log *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		receivers: make(map[event.WindowID]*Receiver),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates a receiver for a window, replacing any previous
// registration. The replaced receiver keeps its queued envelopes.
func (r *Registry) Register(window event.WindowID) *Receiver {
	rcv := newReceiver(window)

	r.mu.Lock()
	r.receivers[window] = rcv
	r.mu.Unlock()

	r.log.Debug("receiver registered",
		zap.Int64("window", int64(window)),
		zap.String("token", rcv.Token().String()))
	return rcv
}

// Unregister removes a window's receiver. The token must match the
// current registration, so a stale owner cannot remove a successor.
func (r *Registry) Unregister(window event.WindowID, token uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rcv, ok := r.receivers[window]
	if !ok {
		return ErrNoReceiver
	}
	if rcv.Token() != token {
		return ErrTokenMismatch
	}
	delete(r.receivers, window)

	r.log.Debug("receiver unregistered", zap.Int64("window", int64(window)))
	return nil
}

// Route posts an envelope to the receiver registered for its payload's
// window. Shaped to serve as the processor's dispatch callback.
func (r *Registry) Route(env Envelope) error {
	window := env.Payload.Window()

	r.mu.RLock()
	rcv, ok := r.receivers[window]
	r.mu.RUnlock()

	if !ok {
		r.missed.Add(1)
		return ErrNoReceiver
	}

	rcv.Post(env)
	r.routed.Add(1)
	return nil
}

// Len reports the number of registered windows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.receivers)
}

// Routed returns the number of envelopes delivered to a receiver.
func (r *Registry) Routed() uint64 {
	return r.routed.Load()
}

// Missed returns the number of envelopes with no registered receiver.
func (r *Registry) Missed() uint64 {
	return r.missed.Load()
}

// Close removes every registration. Receivers already handed out keep
// their queued envelopes.
func (r *Registry) Close() {
	r.mu.Lock()
	n := len(r.receivers)
	r.receivers = make(map[event.WindowID]*Receiver)
	r.mu.Unlock()

	r.log.Debug("registry closed", zap.Int("receivers", n))
}
