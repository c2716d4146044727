package capture

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/stormdrain/internal/event"
)

// Sink receives converted inputs. *pipeline.Pipeline[event.Input]
// satisfies it.
type Sink interface {
	Push(event.Input) error
}

// Capture lifecycle states.
const (
	stateNew int32 = iota
	stateRunning
	stateStopped
)

// Capture polls a terminal screen and feeds a sink.
type Capture struct {
	screen tcell.Screen
	sink   Sink
	target event.WindowID
	log    *zap.Logger

	state atomic.Int32
	done  chan struct{}

	converted atomic.Uint64
	dropped   atomic.Uint64
	unknown   atomic.Uint64

	// Paste assembly state, touched only by the poll goroutine.
	pasting bool
	paste   strings.Builder
}

// Option configures a Capture.
type Option func(*Capture)

// WithTarget sets the window ID stamped on every captured event.
func WithTarget(window event.WindowID) Option {
	return func(c *Capture) {
		c.target = window
	}
}

// WithLogger sets the capture logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Capture) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a Capture over an initialized screen.
func New(screen tcell.Screen, sink Sink, opts ...Option) (*Capture, error) {
	if screen == nil {
		return nil, ErrNilScreen
	}
	if sink == nil {
		return nil, ErrNilSink
	}
	c := &Capture{
		screen: screen,
		sink:   sink,
		target: event.WindowNone,
		log:    zap.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start launches the poll goroutine. A Capture runs at most once.
func (c *Capture) Start() error {
	if !c.state.CompareAndSwap(stateNew, stateRunning) {
		if c.state.Load() == stateStopped {
			return ErrStopped
		}
		return ErrAlreadyRunning
	}
	go c.poll()
	return nil
}

// Stop interrupts the poll and joins the goroutine, or gives up when
// ctx expires. Subsequent calls return nil.
func (c *Capture) Stop(ctx context.Context) error {
	if c.state.CompareAndSwap(stateNew, stateStopped) {
		return nil
	}
	if !c.state.CompareAndSwap(stateRunning, stateStopped) {
		return nil
	}

	// Best effort: a full queue means the poll has events to chew
	// through, and it rechecks state on each one.
	_ = c.screen.PostEvent(tcell.NewEventInterrupt(nil))

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the poll goroutine is live.
func (c *Capture) Running() bool {
	return c.state.Load() == stateRunning
}

// Stats is a snapshot of the capture counters.
type Stats struct {
	// Converted counts events delivered to the sink.
	Converted uint64

	// Dropped counts events the sink rejected.
	Dropped uint64

	// Unknown counts terminal events with no taxonomy mapping.
	Unknown uint64
}

// Stats returns a snapshot of the capture counters.
func (c *Capture) Stats() Stats {
	return Stats{
		Converted: c.converted.Load(),
		Dropped:   c.dropped.Load(),
		Unknown:   c.unknown.Load(),
	}
}

// poll is the capture loop. PollEvent blocks, so Stop posts an
// interrupt to shake it loose.
func (c *Capture) poll() {
	defer close(c.done)

	for c.state.Load() == stateRunning {
		ev := c.screen.PollEvent()
		if ev == nil {
			c.log.Warn("screen closed, capture exiting")
			return
		}

		switch e := ev.(type) {
		case *tcell.EventInterrupt:
			// Posted by Stop; the loop condition does the rest.
		case *tcell.EventPaste:
			c.handlePasteBoundary(e)
		case *tcell.EventKey:
			if c.pasting {
				c.appendPasted(e)
				break
			}
			c.deliver(convertKeyEvent(e, c.target))
		case *tcell.EventMouse:
			c.deliver(convertMouseEvent(e, c.target))
		case *tcell.EventResize:
			w, h := e.Size()
			c.deliver(event.ResizeEvent{Target: c.target, Width: w, Height: h})
		case *tcell.EventFocus:
			c.deliver(event.FocusEvent{Target: c.target, Gained: e.Focused})
		default:
			c.unknown.Add(1)
			c.log.Debug("unrecognized terminal event", zap.String("type", fmt.Sprintf("%T", ev)))
		}
	}

	c.log.Info("capture exiting",
		zap.Uint64("converted", c.converted.Load()),
		zap.Uint64("dropped", c.dropped.Load()))
}

// deliver pushes one input into the sink and counts the outcome.
func (c *Capture) deliver(in event.Input) {
	if err := c.sink.Push(in); err != nil {
		c.dropped.Add(1)
		c.log.Warn("input dropped",
			zap.String("event", event.Describe(in)),
			zap.Error(err))
		return
	}
	c.converted.Add(1)
}

// handlePasteBoundary opens or closes a bracketed paste. The content
// arrives as key events between the markers.
func (c *Capture) handlePasteBoundary(e *tcell.EventPaste) {
	if e.Start() {
		c.pasting = true
		c.paste.Reset()
		return
	}
	if !c.pasting {
		return
	}
	c.pasting = false
	c.deliver(event.PasteEvent{Target: c.target, Text: c.paste.String()})
	c.paste.Reset()
}

// appendPasted folds one pasted keystroke into the pending block.
func (c *Capture) appendPasted(e *tcell.EventKey) {
	switch e.Key() {
	case tcell.KeyRune:
		c.paste.WriteRune(e.Rune())
	case tcell.KeyEnter:
		c.paste.WriteByte('\n')
	case tcell.KeyTab:
		c.paste.WriteByte('\t')
	}
}
