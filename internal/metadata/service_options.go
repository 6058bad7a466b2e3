package metadata

import (
	"fmt"
	"time"
)

const (
	// DefaultRepositoryListTTL applies to aggregate repository-list records.
	DefaultRepositoryListTTL = 1 * time.Hour

	// DefaultMetadataTTL applies to directory listings, history and
	// single-repository reads.
	DefaultMetadataTTL = 20 * time.Minute
)

// Option defines a functional option for configuring Service.
type Option func(*Options) error

// Options contains optional configuration for the metadata service.
type Options struct {
	// repositoryListTTL applies to aggregate repository-list records.
	repositoryListTTL time.Duration

	// metadataTTL applies to directory listings, history and single-repository reads.
	metadataTTL time.Duration
}

func NewOptions(opts ...Option) (Options, error) {
	// Default options.
	o := Options{
		repositoryListTTL: DefaultRepositoryListTTL,
		metadataTTL:       DefaultMetadataTTL,
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

// WithRepositoryListTTL sets the cache lifetime for aggregate repository-list records.
func WithRepositoryListTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("repository list TTL must be positive, got %v", ttl)
		}
		o.repositoryListTTL = ttl
		return nil
	}
}

// WithMetadataTTL sets the cache lifetime for directory listings, history and
// single-repository reads.
func WithMetadataTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("metadata TTL must be positive, got %v", ttl)
		}
		o.metadataTTL = ttl
		return nil
	}
}
