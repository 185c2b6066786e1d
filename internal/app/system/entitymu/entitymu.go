// internal/app/system/entitymu/entitymu.go

// Package entitymu provides per-entity mutexes. Writes to a single entity's
// state must be serialized so two simultaneous operations (for example two
// unlock approvals) cannot interleave; operations on different entities stay
// concurrent.
package entitymu

import "sync"

// Map hands out one mutex per key.
type Map struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMap creates an empty mutex map.
func NewMap() *Map {
	return &Map{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use, and returns the
// unlock function.
func (m *Map) Lock(key string) func() {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
