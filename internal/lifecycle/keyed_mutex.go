package lifecycle

import "sync"

// keyedMutex provides one mutex per key so operations against distinct
// repositories proceed fully in parallel while operations against the same
// repository are serialized. Mutexes are created on first use and retained;
// the key space is the set of configured repository names.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for key, creating it on first use, and returns the
// matching release function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
