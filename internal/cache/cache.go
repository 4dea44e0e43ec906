// Package cache holds the loaded-table cache and the optional shared cache
// of raw spreadsheet bytes.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-tickets-dashboard/internal/model"
)

// TableCache memoizes loaded tables by source location
type TableCache interface {
	Get(key string) (model.Table, bool)
	Set(key string, table model.Table)
	Invalidate(key string)
	Reset()
	Keys() []string
}

// BlobCache stores raw fetched bytes, typically shared between processes
type BlobCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ── In-memory table cache ────────────────────────────────────────────────────

type entry struct {
	table    model.Table
	storedAt time.Time
}

// Memory is a TableCache backed by a map. With a zero TTL entries live until
// invalidated.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an empty cache; ttl <= 0 disables expiry
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(key string) (model.Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return model.Table{}, false
	}
	if m.ttl > 0 && m.now().Sub(e.storedAt) >= m.ttl {
		return model.Table{}, false
	}
	return e.table, true
}

func (m *Memory) Set(key string, table model.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{table: table, storedAt: m.now()}
}

// Invalidate drops one key (call when the source content is known to change)
func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Reset drops everything
func (m *Memory) Reset() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Keys lists the cached source locations in sorted order
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
