// Package pairlock serializes conversation creation per participant pair.
// The lock narrows the window in which two concurrent first-message attempts
// both miss the lookup; the store's uniqueness guarantee remains the final
// arbiter either way.
package pairlock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock for a pair key and returns its release
// function.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Local serializes pair keys within a single process using a mutex per key.
type Local struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]*sync.Mutex)}
}

func (l *Local) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
