package table

import (
	"cmp"
	"slices"
)

// Map is a map with sorted key iteration. It is not safe for concurrent use.
type Map[K cmp.Ordered, V any] struct {
	entries map[K]V
}

// NewMap creates a new empty map.
func NewMap[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{
		entries: make(map[K]V),
	}
}

// Put adds or replaces the value for key.
func (m *Map[K, V]) Put(key K, value V) {
	m.entries[key] = value
}

// Get returns the value for a key and whether it exists.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Has returns true if the key exists.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.entries[key]
	return ok
}

// Delete removes a key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	return true
}

// Keys returns all keys in ascending order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// Range calls fn for every entry in ascending key order.
// If fn returns false, iteration stops.
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	for _, k := range m.Keys() {
		if !fn(k, m.entries[k]) {
			return
		}
	}
}
