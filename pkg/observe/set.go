package observe

import (
	"fmt"
	"iter"
	"reflect"
)

// Set is an insertion-ordered set. The zero value is an empty set ready to
// use. Stored in a slot, it is recognized by Proxy: Add, Delete and Clear
// through the proxy signal, iteration wraps each element.
type Set[T comparable] struct {
	items []T
	index map[T]int
}

// NewSet returns a set holding items.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts v. Adding an existing element keeps its position.
func (s *Set[T]) Add(v T) {
	if _, ok := s.index[v]; ok {
		return
	}
	if s.index == nil {
		s.index = make(map[T]int)
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
}

// Has reports whether v is in the set.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Delete removes v and reports whether it was present.
func (s *Set[T]) Delete(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

// Clear removes all elements.
func (s *Set[T]) Clear() {
	s.items = nil
	clear(s.index)
}

// Len returns the number of elements.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// All ranges over the elements in insertion order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range s.snapshot() {
			if !yield(item) {
				return
			}
		}
	}
}

// Values returns the elements in insertion order.
func (s *Set[T]) Values() []T {
	return s.snapshot()
}

func (s *Set[T]) snapshot() []T {
	return append([]T(nil), s.items...)
}

func (s *Set[T]) collectionKind() CollectionKind { return SetKind }

func (s *Set[T]) getAny(key any) (any, bool) {
	v, ok := castArg[T](key)
	if !ok || !s.Has(v) {
		return nil, false
	}
	return v, true
}

func (s *Set[T]) setAny(key, _ any) { s.Add(mustCast[T]("Add", key)) }

func (s *Set[T]) hasAny(key any) bool {
	v, ok := castArg[T](key)
	return ok && s.Has(v)
}

func (s *Set[T]) deleteAny(key any) bool {
	v, ok := castArg[T](key)
	return ok && s.Delete(v)
}

func (s *Set[T]) clearAll() { s.Clear() }

func (s *Set[T]) eachAny(yield func(key, value any) bool) {
	for _, item := range s.snapshot() {
		if !yield(item, item) {
			return
		}
	}
}

func (s *Set[T]) lenAny() int { return s.Len() }

func (s *Set[T]) cloneAny() any { return NewSet(s.items...) }

// castArg converts an untyped collection argument to T.
func castArg[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var zero T
	rv, ok := convertTo(v, reflect.TypeFor[T]())
	if !ok || !rv.IsValid() {
		return zero, false
	}
	if rv.Kind() == reflect.Interface && rv.IsNil() {
		return zero, true
	}
	t, ok := rv.Interface().(T)
	return t, ok
}

func mustCast[T any](op string, v any) T {
	t, ok := castArg[T](v)
	if !ok {
		panic(fmt.Sprintf("observe: %s: cannot use %T as %s", op, v, reflect.TypeFor[T]()))
	}
	return t
}
