package cache

import (
	"fmt"
	"time"
)

// DefaultSweepInterval is how often the background sweep runs unless overridden.
const DefaultSweepInterval = 1 * time.Minute

// Option defines a functional option for configuring Store.
type Option func(*Options) error

// Options contains optional configuration for the store.
type Options struct {
	// sweepInterval is how often the background sweep runs; 0 disables it.
	sweepInterval time.Duration

	// clock returns the current time.
	clock func() time.Time
}

func NewOptions(opts ...Option) (Options, error) {
	// Default options.
	o := Options{
		sweepInterval: DefaultSweepInterval,
		clock:         time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithSweepInterval sets how often expired entries are actively removed.
// An interval of 0 disables the background sweep; expiry is then lazy only.
func WithSweepInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval < 0 {
			return fmt.Errorf("sweep interval cannot be negative, got %v", interval)
		}
		o.sweepInterval = interval
		return nil
	}
}

// WithClock replaces the time source, used by tests to control expiry.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.clock = clock
		return nil
	}
}
