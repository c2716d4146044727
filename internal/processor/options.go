package processor

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the number of envelopes drained per cycle.
	DefaultBatchSize = 64

	// DefaultIdleThreshold is the number of consecutive empty polls
	// before the loop switches from spinning to sleeping.
	DefaultIdleThreshold = 10

	// DefaultIdleSleep is the sleep between polls while idle.
	DefaultIdleSleep = 100 * time.Microsecond

	// DefaultProgressInterval is how often the running loop logs a
	// progress line.
	DefaultProgressInterval = 10 * time.Second
)

// Option configures a Processor.
type Option func(*config)

// config contains processor configuration.
type config struct {
	batchSize        int
	idleThreshold    int
	idleSleep        time.Duration
	progressInterval time.Duration
	clock            clock.Clock
	logger           *zap.Logger
}

// defaultConfig returns the production configuration.
func defaultConfig() config {
	return config{
		batchSize:        DefaultBatchSize,
		idleThreshold:    DefaultIdleThreshold,
		idleSleep:        DefaultIdleSleep,
		progressInterval: DefaultProgressInterval,
		clock:            clock.New(),
		logger:           zap.NewNop(),
	}
}

// WithBatchSize sets the per-cycle drain limit.
func WithBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithIdleThreshold sets how many consecutive empty polls precede the
// switch to sleep-based idling.
func WithIdleThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.idleThreshold = n
		}
	}
}

// WithIdleSleep sets the sleep between polls while idle.
func WithIdleSleep(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.idleSleep = d
		}
	}
}

// WithProgressInterval sets how often the loop logs progress.
func WithProgressInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.progressInterval = d
		}
	}
}

// WithClock sets the clock used for idle sleeps and progress timing.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the processor logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.logger = log
		}
	}
}
