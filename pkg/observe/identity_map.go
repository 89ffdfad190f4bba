package observe

import (
	"runtime"
	"sync"
	"weak"
)

// IdentityMap maps object identities to values. Keys are pointers compared
// by address and held weakly: an entry disappears once its key is garbage
// collected. It cannot be iterated or cleared.
//
// Entries are removed by runtime cleanups, which run on their own goroutine,
// so the map guards its state with a mutex.
type IdentityMap[K any, V any] struct {
	mu      sync.Mutex
	entries map[weak.Pointer[K]]V
}

// NewIdentityMap returns an empty map.
func NewIdentityMap[K any, V any]() *IdentityMap[K, V] {
	return &IdentityMap[K, V]{}
}

// Get returns the value stored for key.
func (m *IdentityMap[K, V]) Get(key *K) (V, bool) {
	var zero V
	if key == nil {
		return zero, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[weak.Make(key)]
	return v, ok
}

// Set stores value for key. key must not be nil.
func (m *IdentityMap[K, V]) Set(key *K, value V) {
	if key == nil {
		panic("observe: IdentityMap key must not be nil")
	}
	wp := weak.Make(key)
	m.mu.Lock()
	if m.entries == nil {
		m.entries = make(map[weak.Pointer[K]]V)
	}
	_, existed := m.entries[wp]
	m.entries[wp] = value
	m.mu.Unlock()
	if !existed {
		runtime.AddCleanup(key, m.evict, wp)
	}
}

func (m *IdentityMap[K, V]) evict(wp weak.Pointer[K]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, wp)
}

// Has reports whether key has an entry.
func (m *IdentityMap[K, V]) Has(key *K) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key's entry and reports whether it existed.
func (m *IdentityMap[K, V]) Delete(key *K) bool {
	if key == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	wp := weak.Make(key)
	if _, ok := m.entries[wp]; !ok {
		return false
	}
	delete(m.entries, wp)
	return true
}

// Len returns the number of entries whose keys have not been collected yet.
func (m *IdentityMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *IdentityMap[K, V]) collectionKind() CollectionKind { return IdentityMapKind }

func (m *IdentityMap[K, V]) getAny(key any) (any, bool) {
	k, ok := key.(*K)
	if !ok {
		return nil, false
	}
	v, ok := m.Get(k)
	if !ok {
		return nil, false
	}
	return v, true
}

func (m *IdentityMap[K, V]) setAny(key, value any) {
	m.Set(mustCast[*K]("Set", key), mustCast[V]("Set", value))
}

func (m *IdentityMap[K, V]) hasAny(key any) bool {
	k, ok := key.(*K)
	return ok && m.Has(k)
}

func (m *IdentityMap[K, V]) deleteAny(key any) bool {
	k, ok := key.(*K)
	return ok && m.Delete(k)
}

func (m *IdentityMap[K, V]) clearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

func (m *IdentityMap[K, V]) eachAny(yield func(key, value any) bool) {
	m.mu.Lock()
	keys := make([]*K, 0, len(m.entries))
	values := make([]V, 0, len(m.entries))
	for wp, v := range m.entries {
		if k := wp.Value(); k != nil {
			keys = append(keys, k)
			values = append(values, v)
		}
	}
	m.mu.Unlock()
	for i, k := range keys {
		if !yield(k, values[i]) {
			return
		}
	}
}

func (m *IdentityMap[K, V]) lenAny() int { return m.Len() }

func (m *IdentityMap[K, V]) cloneAny() any {
	cp := NewIdentityMap[K, V]()
	m.eachAny(func(k, v any) bool {
		cp.Set(k.(*K), mustCast[V]("clone", v))
		return true
	})
	return cp
}
