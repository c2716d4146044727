package pipeline

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/stormdrain/internal/bus"
	"github.com/dshills/stormdrain/internal/event"
	"github.com/dshills/stormdrain/internal/processor"
)

// Dispatch is the per-envelope callback the pipeline's processor
// invokes, in queue order.
type Dispatch[T any] processor.Dispatch[T]

// Pipeline lifecycle states.
const (
	stateNew int32 = iota
	stateRunning
	stateClosed
)

// Pipeline owns a bus and the processor that drains it. The zero value
// is not started; construct with New.
type Pipeline[T any] struct {
	bus   *bus.Bus[T]
	proc  *processor.Processor[T]
	state atomic.Int32
	log   *zap.Logger
}

// New builds a pipeline around dispatch and starts its processor. The
// returned pipeline is already consuming.
func New[T any](dispatch Dispatch[T], opts ...Option) (*Pipeline[T], error) {
	if dispatch == nil {
		return nil, ErrNilDispatch
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Pipeline[T]{
		bus: bus.New[T](cfg.busOpts...),
		log: cfg.logger,
	}
	p.proc = processor.New(p.bus, processor.Dispatch[T](dispatch), cfg.procOpts...)
	if err := p.proc.Start(); err != nil {
		return nil, err
	}
	p.state.Store(stateRunning)
	p.log.Info("pipeline started", zap.Int("capacity", p.bus.Cap()))
	return p, nil
}

// Push enqueues payload without blocking. After Shutdown it returns
// ErrClosed; on a nil or zero pipeline it returns ErrNotStarted; at
// absolute capacity it returns a *bus.CapacityError.
func (p *Pipeline[T]) Push(payload T) error {
	if p == nil || p.bus == nil {
		return ErrNotStarted
	}
	if p.state.Load() == stateClosed {
		return ErrClosed
	}
	return p.bus.Push(payload)
}

// PopBatch drains up to max envelopes directly, bypassing the
// processor. Useful for diagnostics and tests; the processor competes
// for the same envelopes while running. Returns nil on a nil, zero, or
// closed pipeline.
func (p *Pipeline[T]) PopBatch(max int) []event.Envelope[T] {
	if p == nil || p.bus == nil || p.state.Load() == stateClosed {
		return nil
	}
	return p.bus.TryPopBatch(max)
}

// Stats reports the bus counters. Zero on a nil or zero pipeline.
func (p *Pipeline[T]) Stats() bus.Stats {
	if p == nil || p.bus == nil {
		return bus.Stats{}
	}
	return p.bus.Stats()
}

// ProcessorStats reports the drain-loop counters. Zero on a nil or
// zero pipeline.
func (p *Pipeline[T]) ProcessorStats() processor.Stats {
	if p == nil || p.proc == nil {
		return processor.Stats{}
	}
	return p.proc.Stats()
}

// Len reports the number of queued envelopes.
func (p *Pipeline[T]) Len() int {
	if p == nil || p.bus == nil {
		return 0
	}
	return p.bus.Len()
}

// Cap reports the current ring capacity.
func (p *Pipeline[T]) Cap() int {
	if p == nil || p.bus == nil {
		return 0
	}
	return p.bus.Cap()
}

// Shutdown stops the processor and closes the pipeline, waiting for
// the loop's final cycle or ctx. Envelopes still queued stay queued.
// Calling Shutdown again, or on a nil or zero pipeline, returns nil.
func (p *Pipeline[T]) Shutdown(ctx context.Context) error {
	if p == nil || p.proc == nil {
		return nil
	}
	if !p.state.CompareAndSwap(stateRunning, stateClosed) {
		return nil
	}
	if err := p.proc.Stop(ctx); err != nil {
		return err
	}
	st := p.bus.Stats()
	p.log.Info("pipeline closed",
		zap.Uint64("pushed", st.Pushed),
		zap.Uint64("popped", st.Popped),
		zap.Int("queued", p.bus.Len()),
	)
	return nil
}
