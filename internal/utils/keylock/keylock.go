// Package keylock provides per-key mutual exclusion with bounded waits.
// Entries are reference counted and removed once no holder or waiter remains,
// so the map stays bounded by the number of keys currently in use.
package keylock

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// KeyLock serializes work per key. The zero value is not usable; call New.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{entries: make(map[string]*entry)}
}

// Acquire waits up to timeout (or until ctx is done) for exclusive ownership of key.
// On success it returns a release func that must be called exactly once.
// A timeout <= 0 means try once without waiting.
func (l *KeyLock) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), bool) {
	e := l.ref(key)

	select {
	case e.sem <- struct{}{}:
		return l.releaser(key, e), true
	default:
	}

	if timeout <= 0 {
		l.unref(key, e)
		return nil, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return l.releaser(key, e), true
	case <-timer.C:
	case <-ctx.Done():
	}
	l.unref(key, e)
	return nil, false
}

// Len returns the number of keys currently tracked.
func (l *KeyLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *KeyLock) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *KeyLock) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *KeyLock) releaser(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.unref(key, e)
		})
	}
}
