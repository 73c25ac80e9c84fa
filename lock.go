package photoengine

import (
	"path/filepath"
	"sync"
)

// Locker serializes read-modify-write cycles per logical resource. Keys are
// canonical file paths; calls for the same key run one at a time, calls for
// different keys run fully concurrently. No operation holds more than one
// lock at a time, so there is no lock-ordering protocol.
type Locker struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

// NewLocker returns an empty Locker.
func NewLocker() *Locker {
	return &Locker{m: make(map[string]*sync.Mutex)}
}

// forKey returns (and lazily creates) the mutex guarding the given resource.
func (l *Locker) forKey(resource string) *sync.Mutex {
	key := filepath.Clean(resource)

	l.mu.Lock()
	defer l.mu.Unlock()

	if mu, ok := l.m[key]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	l.m[key] = mu
	return mu
}

// WithLock runs fn with exclusive access to the named resource. The lock is
// released on every exit path, including when fn returns an error or panics;
// the error (if any) surfaces to the caller unchanged.
func (l *Locker) WithLock(resource string, fn func() error) error {
	mu := l.forKey(resource)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}
