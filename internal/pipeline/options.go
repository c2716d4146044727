package pipeline

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/dshills/stormdrain/internal/bus"
	"github.com/dshills/stormdrain/internal/processor"
)

// Option configures a Pipeline.
type Option func(*config)

// config accumulates the options forwarded to the bus and processor.
type config struct {
	busOpts  []bus.Option
	procOpts []processor.Option
	logger   *zap.Logger
}

// defaultConfig returns the production configuration.
func defaultConfig() config {
	return config{logger: zap.NewNop()}
}

// WithInitialCapacity sets the bus's starting ring capacity.
func WithInitialCapacity(n uint64) Option {
	return func(c *config) {
		c.busOpts = append(c.busOpts, bus.WithInitialCapacity(n))
	}
}

// WithMaxCapacity sets the bus's expansion ceiling.
func WithMaxCapacity(n uint64) Option {
	return func(c *config) {
		c.busOpts = append(c.busOpts, bus.WithMaxCapacity(n))
	}
}

// WithBatchSize sets the processor's per-cycle drain limit.
func WithBatchSize(n int) Option {
	return func(c *config) {
		c.procOpts = append(c.procOpts, processor.WithBatchSize(n))
	}
}

// WithIdleSleep sets the processor's sleep between idle polls.
func WithIdleSleep(d time.Duration) Option {
	return func(c *config) {
		c.procOpts = append(c.procOpts, processor.WithIdleSleep(d))
	}
}

// WithClock sets the clock for timestamps, idle sleeps, and progress
// timing.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.busOpts = append(c.busOpts, bus.WithClock(clk))
		c.procOpts = append(c.procOpts, processor.WithClock(clk))
	}
}

// WithLogger sets the pipeline logger; the bus and processor receive
// named children.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log == nil {
			return
		}
		c.logger = log
		c.busOpts = append(c.busOpts, bus.WithLogger(log.Named("bus")))
		c.procOpts = append(c.procOpts, processor.WithLogger(log.Named("processor")))
	}
}
