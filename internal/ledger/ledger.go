// Package ledger counts how many times each unregistered sender has been
// answered.
package ledger

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultMaxEntries = 10000

// Store is the interaction counter consumed by the conversation router.
type Store interface {
	// Get returns the current count for id, or 0 if id has no entry.
	Get(id string) int
	// Increment adds one to id's count, creating it at 1, and returns the new value.
	Increment(id string) int
	Len() int
}

// Memory is a process-local Store bounded by capacity and, optionally, by
// entry age. Evicted or expired identities start again from 0.
type Memory struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, int]
}

// NewMemory creates a Memory store. maxEntries <= 0 uses DefaultMaxEntries;
// ttl <= 0 keeps entries until they are evicted for capacity.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{entries: expirable.NewLRU[string, int](maxEntries, nil, ttl)}
}

func (m *Memory) Get(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := m.entries.Get(id)
	return n
}

func (m *Memory) Increment(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := m.entries.Get(id)
	n++
	m.entries.Add(id, n)
	return n
}

func (m *Memory) Len() int {
	return m.entries.Len()
}
