package concurrent

import (
	"slices"
	"sync"
)

type Map[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		values: make(map[K]V),
	}
}

func (m *Map[K, V]) Load(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.values[key]
	return val, ok
}

func (m *Map[K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
}

// Update replaces the value for key with fn(current, ok) while holding the
// write lock, so read-modify-write sequences cannot interleave.
func (m *Map[K, V]) Update(key K, fn func(current V, ok bool) V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.values[key]
	m.values[key] = fn(current, ok)
}

func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
}

func (m *Map[K, V]) Length() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.values)
}

// Keys returns a snapshot of the keys sorted with cmp.
func (m *Map[K, V]) Keys(cmp func(a, b K) int) []K {
	m.mu.RLock()
	keys := make([]K, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	slices.SortFunc(keys, cmp)
	return keys
}
