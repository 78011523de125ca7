// Package mirror holds client-side copies of remote collections.
package mirror

import (
	"context"
	"slices"
	"sync"
)

type Identifiable interface {
	GetID() string
}

// Mirror is the latest known state of one remote collection. Items only ever
// come from the remote side: wholesale through Load, or patched through the
// Apply methods with server-confirmed payloads.
type Mirror[T Identifiable] struct {
	mu       sync.RWMutex
	items    []T
	inflight int
	started  uint64 // generation of the most recent Load
	applied  uint64 // generation whose result is in items
	loaded   bool
}

func New[T Identifiable]() *Mirror[T] {
	return &Mirror[T]{items: []T{}}
}

// Load replaces the mirror with the result of fetch. On error the previous
// items are kept. Overlapping loads may finish in any order; a result older
// than the one already applied is discarded. IsLoading stays true until every
// outstanding fetch has returned.
func (m *Mirror[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	m.mu.Lock()
	m.started++
	gen := m.started
	m.inflight++
	m.mu.Unlock()

	items, err := fetch(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--
	if err != nil {
		return err
	}
	if gen < m.applied {
		return nil
	}
	m.items = slices.Clone(items)
	if m.items == nil {
		m.items = []T{}
	}
	m.applied = gen
	m.loaded = true
	return nil
}

func (m *Mirror[T]) ApplyCreated(item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

// ApplyUpdated replaces the item with the given id. It returns false when no
// item matched.
func (m *Mirror[T]) ApplyUpdated(id string, item T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].GetID() == id {
			m.items[i] = item
			return true
		}
	}
	return false
}

// ApplyUpdatedMany replaces every mirrored item whose id appears in items.
// Items in the patch that are not mirrored are ignored.
func (m *Mirror[T]) ApplyUpdatedMany(items []T) int {
	changed := make(map[string]T, len(items))
	for _, item := range items {
		changed[item.GetID()] = item
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := 0
	for i := range m.items {
		if item, ok := changed[m.items[i].GetID()]; ok {
			m.items[i] = item
			replaced++
		}
	}
	return replaced
}

func (m *Mirror[T]) ApplyDeleted(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = slices.DeleteFunc(m.items, func(item T) bool {
		return item.GetID() == id
	})
}

// Items returns a copy of the mirrored collection.
func (m *Mirror[T]) Items() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items)
}

func (m *Mirror[T]) Get(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (m *Mirror[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Mirror[T]) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inflight > 0
}

// Loaded reports whether at least one Load has succeeded.
func (m *Mirror[T]) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}
