package session

import (
	"fmt"
	"time"
)

// DefaultLifetime is the fixed session lifetime unless overridden.
const DefaultLifetime = 8 * time.Hour

// Option defines a functional option for configuring Manager.
type Option func(*Options) error

// Options contains optional configuration for the session manager.
type Options struct {
	// lifetime is the fixed duration a session stays valid after login.
	lifetime time.Duration
}

func NewOptions(opts ...Option) (Options, error) {
	// Default options.
	o := Options{
		lifetime: DefaultLifetime,
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

// WithLifetime sets the fixed session lifetime.
func WithLifetime(lifetime time.Duration) Option {
	return func(o *Options) error {
		if lifetime <= 0 {
			return fmt.Errorf("session lifetime must be positive, got %v", lifetime)
		}
		o.lifetime = lifetime
		return nil
	}
}
