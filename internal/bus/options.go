package bus

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	// DefaultInitialCapacity is the ring capacity a new bus starts with.
	DefaultInitialCapacity = 8192

	// DefaultMaxCapacity is the ceiling expansion will not grow past.
	DefaultMaxCapacity = 1 << 20
)

// Option configures a Bus.
type Option func(*config)

// config contains bus configuration.
type config struct {
	// initialCapacity is the starting ring capacity (power of two).
	initialCapacity uint64

	// maxCapacity is the expansion ceiling (power of two).
	maxCapacity uint64

	// clock supplies capture timestamps.
	clock clock.Clock

	// logger receives expansion and overflow events.
	logger *zap.Logger
}

// defaultConfig returns the production configuration.
func defaultConfig() config {
	return config{
		initialCapacity: DefaultInitialCapacity,
		maxCapacity:     DefaultMaxCapacity,
		clock:           clock.New(),
		logger:          zap.NewNop(),
	}
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// WithInitialCapacity sets the starting ring capacity. Values that are not
// powers of two are ignored.
func WithInitialCapacity(n uint64) Option {
	return func(c *config) {
		if isPowerOfTwo(n) {
			c.initialCapacity = n
		}
	}
}

// WithMaxCapacity sets the expansion ceiling. Values that are not powers
// of two are ignored.
func WithMaxCapacity(n uint64) Option {
	return func(c *config) {
		if isPowerOfTwo(n) {
			c.maxCapacity = n
		}
	}
}

// WithClock sets the clock used for capture timestamps.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the bus logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.logger = log
		}
	}
}
