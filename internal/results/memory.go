package results

import (
	"context"
	"sync"

	"github.com/JaimeStill/glimpse/internal/fingerprint"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[fingerprint.Fingerprint]string
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[fingerprint.Fingerprint]string)}
}

func (m *Memory) Lookup(ctx context.Context, key fingerprint.Fingerprint) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, unavailable("lookup "+string(key), err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *Memory) Insert(ctx context.Context, key fingerprint.Fingerprint, value string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("insert "+string(key), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
