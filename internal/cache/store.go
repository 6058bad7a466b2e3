// Package cache provides the keyed in-memory store with per-entry expiry that
// backs repository metadata and session tokens. It is the only shared mutable
// state in the service and is safe for concurrent use by arbitrarily many
// callers.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Store manages cached values with per-entry absolute expiry.
// NewStore should be used to create instances of Store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	// logger is used for logging cache operations.
	logger hclog.Logger

	// now returns the current time; replaceable in tests.
	now func() time.Time

	// sweepInterval is how often the background sweep runs; 0 disables it.
	sweepInterval time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// entry pairs a cached value with its absolute expiry instant.
type entry struct {
	value     any
	expiresAt time.Time
}

// NewStore creates a new store and starts its background sweep when enabled.
func NewStore(logger hclog.Logger, opts ...Option) (*Store, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	s := &Store{
		entries:       make(map[string]entry),
		logger:        logger.Named("cache"),
		now:           options.clock,
		sweepInterval: options.sweepInterval,
		done:          make(chan struct{}),
	}

	if s.sweepInterval > 0 {
		go s.sweepLoop()
	}

	return s, nil
}

// Get returns the value stored under key.
// An expired entry behaves identically to a miss.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.expired(e) {
		return nil, false
	}
	return e.value, true
}

// GetMulti returns the present, unexpired values for the given keys.
// Missing or expired keys are simply absent from the result; the batch never fails.
func (s *Store) GetMulti(keys []string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]any, len(keys))
	for _, key := range keys {
		if e, ok := s.entries[key]; ok && !s.expired(e) {
			result[key] = e.value
		}
	}
	return result
}

// Set stores value under key for the given time-to-live.
// A non-positive ttl stores nothing, which keeps an accidental zero from
// producing an immortal or instantly dead entry.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		s.logger.Warn("Ignoring set with non-positive TTL", "key", key, "ttl", ttl)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
}

// Delete removes the entry stored under key, if any.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// DeletePrefix removes every entry whose key starts with prefix.
// Used to clear all keys derived from one repository in a single call.
func (s *Store) DeletePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of entries currently held, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stop terminates the background sweep. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// expired reports whether e's expiry instant has passed.
// Callers must hold at least a read lock.
func (s *Store) expired(e entry) bool {
	return !s.now().Before(e.expiresAt)
}

// sweepLoop periodically removes expired entries so that sessions and
// one-shot keys do not accumulate between reads.
func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes all expired entries.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("Swept expired cache entries", "removed", removed, "remaining", len(s.entries))
	}
}
