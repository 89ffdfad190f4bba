package observe

import "iter"

// OrderedMap is a map that iterates in insertion order. The zero value is
// an empty map ready to use. Stored in a slot, it is recognized by Proxy:
// Get wraps the returned value, Set, Delete and Clear signal.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
	index  map[K]int
}

// NewOrderedMap returns an empty map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{}
}

// Get returns the value stored under key.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. Replacing a value keeps the key's position.
func (m *OrderedMap[K, V]) Set(key K, value V) {
	if m.values == nil {
		m.values = make(map[K]V)
		m.index = make(map[K]int)
	}
	if _, ok := m.index[key]; !ok {
		m.index[key] = len(m.keys)
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Has reports whether key is present.
func (m *OrderedMap[K, V]) Has(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key and reports whether it was present.
func (m *OrderedMap[K, V]) Delete(key K) bool {
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.index, key)
	delete(m.values, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Clear removes all entries.
func (m *OrderedMap[K, V]) Clear() {
	m.keys = nil
	clear(m.values)
	clear(m.index)
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// All ranges over entries in insertion order.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range append([]K(nil), m.keys...) {
			v, ok := m.values[k]
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Keys ranges over keys in insertion order.
func (m *OrderedMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values ranges over values in insertion order.
func (m *OrderedMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (m *OrderedMap[K, V]) collectionKind() CollectionKind { return MapKind }

func (m *OrderedMap[K, V]) getAny(key any) (any, bool) {
	k, ok := castArg[K](key)
	if !ok {
		return nil, false
	}
	v, ok := m.Get(k)
	if !ok {
		return nil, false
	}
	return v, true
}

func (m *OrderedMap[K, V]) setAny(key, value any) {
	m.Set(mustCast[K]("Set", key), mustCast[V]("Set", value))
}

func (m *OrderedMap[K, V]) hasAny(key any) bool {
	k, ok := castArg[K](key)
	return ok && m.Has(k)
}

func (m *OrderedMap[K, V]) deleteAny(key any) bool {
	k, ok := castArg[K](key)
	return ok && m.Delete(k)
}

func (m *OrderedMap[K, V]) clearAll() { m.Clear() }

func (m *OrderedMap[K, V]) eachAny(yield func(key, value any) bool) {
	for k, v := range m.All() {
		if !yield(k, v) {
			return
		}
	}
}

func (m *OrderedMap[K, V]) lenAny() int { return m.Len() }

func (m *OrderedMap[K, V]) cloneAny() any {
	cp := NewOrderedMap[K, V]()
	for k, v := range m.All() {
		cp.Set(k, v)
	}
	return cp
}
