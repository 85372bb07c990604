package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Used for tests and for the
// "memory" backend, where nothing survives a restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
	history []UnlockEntry
	sets    int
	closed  bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records[key] = append([]byte(nil), value...)
	m.sets++
	return nil
}

// Sets counts successful Set calls.
func (m *MemoryStore) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func (m *MemoryStore) AppendUnlock(_ context.Context, entry UnlockEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if entry.UnlockedTS.IsZero() {
		entry.UnlockedTS = time.Now().UTC()
	}
	m.history = append(m.history, entry)
	return nil
}

func (m *MemoryStore) UnlockHistory(context.Context) ([]UnlockEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UnlockEntry(nil), m.history...), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
