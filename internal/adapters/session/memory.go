package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	values   map[string]string
	lastSeen time.Time
}

// MemoryStore is an in-process session store with idle expiry.
// Sessions are lost on restart and are not shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
	idle     time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory session store.
// PRE: idle >= 0; zero selects DefaultIdleTimeout
func NewMemoryStore(idle time.Duration) *MemoryStore {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &MemoryStore{
		sessions: make(map[string]*entry),
		idle:     idle,
		now:      time.Now,
	}
}

// live returns the session if it exists and has not idled out. Caller holds mu.
func (m *MemoryStore) live(sid string) (*entry, bool) {
	e, ok := m.sessions[sid]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.lastSeen) > m.idle {
		delete(m.sessions, sid)
		return nil, false
	}
	e.lastSeen = m.now()
	return e, true
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(sid)
	if !ok {
		return "", false, nil
	}
	v, ok := e.values[key]
	return v, ok, nil
}

// Set stores value under key.
// POST: session exists with a refreshed idle deadline
func (m *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(sid)
	if !ok {
		e = &entry{values: make(map[string]string), lastSeen: m.now()}
		m.sessions[sid] = e
	}
	e.values[key] = value
	return nil
}

// Delete removes key from the session.
func (m *MemoryStore) Delete(_ context.Context, sid, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live(sid); ok {
		delete(e.values, key)
	}
	return nil
}

// Destroy removes the whole session.
func (m *MemoryStore) Destroy(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sid)
	return nil
}

// Sweep drops every idle session and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for sid, e := range m.sessions {
		if m.now().Sub(e.lastSeen) > m.idle {
			delete(m.sessions, sid)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps idle sessions every interval until ctx is done.
func (m *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}
