package processor

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/stormdrain/internal/bus"
	"github.com/dshills/stormdrain/internal/event"
)

// Dispatch handles one envelope on the processor thread. A non-nil error
// marks the envelope as faulted; it never affects later envelopes or the
// loop itself.
type Dispatch[T any] func(event.Envelope[T]) error

// Lifecycle states. A stopped processor is terminal; it is never
// restarted.
const (
	stateNew = iota
	stateRunning
	stateStopped
)

// Processor drains the bus on a dedicated OS thread.
type Processor[T any] struct {
	bus      *bus.Bus[T]
	dispatch Dispatch[T]
	cfg      config

	state atomic.Int32
	done  chan struct{}

	stats stats
}

// stats holds the loop's atomic counters.
type stats struct {
	batches    atomic.Uint64
	events     atomic.Uint64
	faults     atomic.Uint64
	emptyPolls atomic.Uint64
	sleeps     atomic.Uint64
}

// Stats is a snapshot of the loop counters.
type Stats struct {
	// Batches is the number of non-empty batches processed.
	Batches uint64

	// Events is the number of envelopes handed to the dispatch callback.
	Events uint64

	// Faults is the number of dispatch errors and panics.
	Faults uint64

	// EmptyPolls is the number of polls that found the bus empty.
	EmptyPolls uint64

	// Sleeps is the number of idle sleeps taken; it advances only while
	// the loop is in its sleep-based idle state.
	Sleeps uint64
}

// New creates a processor bound to a bus and a dispatch callback. The
// loop does not run until Start.
func New[T any](b *bus.Bus[T], dispatch Dispatch[T], opts ...Option) *Processor[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Processor[T]{
		bus:      b,
		dispatch: dispatch,
		cfg:      cfg,
		done:     make(chan struct{}),
	}
}

// Start launches the loop. It returns ErrAlreadyRunning on a running
// processor and ErrStopped after Stop.
func (p *Processor[T]) Start() error {
	switch {
	case p.state.CompareAndSwap(stateNew, stateRunning):
		p.cfg.logger.Info("processor started",
			zap.Int("batch_size", p.cfg.batchSize),
			zap.Int("idle_threshold", p.cfg.idleThreshold),
			zap.Duration("idle_sleep", p.cfg.idleSleep))
		go p.run()
		return nil
	case p.state.Load() == stateRunning:
		return ErrAlreadyRunning
	default:
		return ErrStopped
	}
}

// Stop signals the loop to exit after the batch in progress and waits for
// it, bounded by ctx. Idempotent, and safe on a processor that never
// started.
func (p *Processor[T]) Stop(ctx context.Context) error {
	if p.state.CompareAndSwap(stateRunning, stateStopped) {
		select {
		case <-p.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	// Never started or already stopped; nothing to join either way.
	p.state.CompareAndSwap(stateNew, stateStopped)
	return nil
}

// Running reports whether the loop is active.
func (p *Processor[T]) Running() bool {
	return p.state.Load() == stateRunning
}

// Stats returns a snapshot of the loop counters.
func (p *Processor[T]) Stats() Stats {
	return Stats{
		Batches:    p.stats.batches.Load(),
		Events:     p.stats.events.Load(),
		Faults:     p.stats.faults.Load(),
		EmptyPolls: p.stats.emptyPolls.Load(),
		Sleeps:     p.stats.sleeps.Load(),
	}
}

// run is the loop body. It owns its OS thread for its whole life.
func (p *Processor[T]) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(p.done)

	idle := 0
	lastProgress := p.cfg.clock.Now()

	for p.state.Load() == stateRunning {
		batch := p.bus.TryPopBatch(p.cfg.batchSize)
		if batch == nil {
			p.stats.emptyPolls.Add(1)
			idle++
			if idle > p.cfg.idleThreshold {
				p.stats.sleeps.Add(1)
				p.cfg.clock.Sleep(p.cfg.idleSleep)
			} else {
				runtime.Gosched()
			}
			continue
		}

		idle = 0
		p.stats.batches.Add(1)
		for _, env := range batch {
			p.dispatchOne(env)
		}

		if p.cfg.clock.Since(lastProgress) > p.cfg.progressInterval {
			s := p.bus.Stats()
			p.cfg.logger.Debug("processor progress",
				zap.Uint64("dispatched", p.stats.events.Load()),
				zap.Uint64("faults", p.stats.faults.Load()),
				zap.Int("queued", p.bus.Len()),
				zap.Uint64("pushed", s.Pushed),
				zap.Uint64("expansions", s.Expansions))
			lastProgress = p.cfg.clock.Now()
		}
	}

	p.cfg.logger.Info("processor exiting",
		zap.Uint64("dispatched", p.stats.events.Load()),
		zap.Uint64("faults", p.stats.faults.Load()))
}

// dispatchOne invokes the callback for one envelope, isolating errors and
// panics.
func (p *Processor[T]) dispatchOne(env event.Envelope[T]) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.faults.Add(1)
			perr := &PanicError{Value: r, Stack: debug.Stack()}
			p.cfg.logger.Error("dispatch fault",
				zap.Uint64("seq", env.Seq),
				zap.Error(perr),
				zap.ByteString("stack", perr.Stack))
		}
	}()

	p.stats.events.Add(1)
	if err := p.dispatch(env); err != nil {
		p.stats.faults.Add(1)
		p.cfg.logger.Error("dispatch fault",
			zap.Uint64("seq", env.Seq),
			zap.Error(err))
	}
}
