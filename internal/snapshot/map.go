package snapshot

import (
	"cmp"
	"maps"
	"slices"
)

// Map is a keyed collection of histories.
type Map[K cmp.Ordered, V any] struct {
	histories map[K]*History[V]
}

func NewMap[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{histories: make(map[K]*History[V])}
}

func (m *Map[K, V]) CanSave(key K, height uint64) error {
	h, ok := m.histories[key]
	if !ok {
		return nil
	}
	return h.CanSave(height)
}

func (m *Map[K, V]) Save(key K, height uint64, value V) error {
	h, ok := m.histories[key]
	if !ok {
		h = NewHistory[V]()
	}
	if err := h.Save(height, value); err != nil {
		return err
	}
	m.histories[key] = h
	return nil
}

// At returns the value of key as of height. Unknown keys report false.
func (m *Map[K, V]) At(key K, height uint64) (V, bool) {
	h, ok := m.histories[key]
	if !ok {
		var zero V
		return zero, false
	}
	return h.At(height)
}

func (m *Map[K, V]) Latest(key K) (V, bool) {
	h, ok := m.histories[key]
	if !ok {
		var zero V
		return zero, false
	}
	return h.Latest()
}

// Keys returns every key that has at least one entry, ascending.
func (m *Map[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(m.histories))
}

func (m *Map[K, V]) Len() int {
	return len(m.histories)
}

// Entries returns the full history of every key.
func (m *Map[K, V]) Entries() map[K][]Entry[V] {
	out := make(map[K][]Entry[V], len(m.histories))
	for k, h := range m.histories {
		out[k] = h.Entries()
	}
	return out
}

// Restore replays exported histories into an empty map.
func (m *Map[K, V]) Restore(entries map[K][]Entry[V]) error {
	for k, es := range entries {
		h := NewHistory[V]()
		if err := h.Restore(es); err != nil {
			return err
		}
		m.histories[k] = h
	}
	return nil
}
