package keylock

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"neighborbid/internal/auctionerrors"
)

// Locker hands out exclusive locks keyed by string. Acquire takes every
// requested key in sorted order, so any two callers that need overlapping
// key sets always contend in the same global order and cannot deadlock.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocker creates an empty lock manager.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]chan struct{})}
}

// slot returns the semaphore channel for a key, creating it on first use.
func (l *Locker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

// Acquire locks all keys and returns a Guard that must be released on
// every exit path. The wait budget covers the whole acquisition; if it
// runs out, any keys already taken are released and the call fails with
// ErrConcurrencyConflict.
func (l *Locker) Acquire(wait time.Duration, keys ...string) (*Guard, error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	g := &Guard{}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue // duplicate key, already held
		}
		s := l.slot(key)
		select {
		case s <- struct{}{}:
			g.held = append(g.held, s)
			continue
		default:
			// contended, fall through to the timed wait
		}
		select {
		case s <- struct{}{}:
			g.held = append(g.held, s)
		case <-timer.C:
			g.Release()
			return nil, fmt.Errorf("acquire lock %q: %w", key, auctionerrors.ErrConcurrencyConflict)
		}
	}
	return g, nil
}

// Guard holds a set of acquired locks.
type Guard struct {
	held []chan struct{}
}

// Release frees every held lock in reverse acquisition order. Safe to
// call more than once.
func (g *Guard) Release() {
	for i := len(g.held) - 1; i >= 0; i-- {
		<-g.held[i]
	}
	g.held = nil
}
