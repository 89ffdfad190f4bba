package observe

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
)

var collectionType = reflect.TypeFor[collection]()

// isCollection reports whether v is a pointer to one of the recognized
// collection types.
func isCollection(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Pointer && !v.IsNil() && v.Type().Implements(collectionType)
}

// indirect follows interfaces and pointers down to the container that owns
// the addressable fields. Collection pointers are kept as-is. Nil pointers
// and nil interfaces yield the zero Value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		case reflect.Pointer:
			if v.IsNil() {
				return reflect.Value{}
			}
			if isCollection(v) {
				return v
			}
			v = v.Elem()
		default:
			return v
		}
	}
	return v
}

// structured reports whether v needs a proxy. Primitives, funcs, channels,
// nil pointers and structs without exported fields are passed through.
func structured(v reflect.Value) bool {
	v = indirect(v)
	if !v.IsValid() {
		return false
	}
	if isCollection(v) {
		return true
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	case reflect.Struct:
		return hasExportedFields(v.Type())
	}
	return false
}

func hasExportedFields(t reflect.Type) bool {
	for i := range t.NumField() {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// lookup reads key from container. container must already be indirected.
func lookup(container reflect.Value, key any) (reflect.Value, bool) {
	switch container.Kind() {
	case reflect.Map:
		k, ok := convertTo(key, container.Type().Key())
		if !ok {
			return reflect.Value{}, false
		}
		v := container.MapIndex(k)
		return v, v.IsValid()
	case reflect.Slice, reflect.Array:
		i, ok := toIndex(key)
		if !ok || i < 0 || i >= container.Len() {
			return reflect.Value{}, false
		}
		return container.Index(i), true
	case reflect.Struct:
		name, ok := key.(string)
		if !ok {
			return reflect.Value{}, false
		}
		field, ok := container.Type().FieldByName(name)
		if !ok || !field.IsExported() {
			return reflect.Value{}, false
		}
		return container.FieldByIndex(field.Index), true
	}
	return reflect.Value{}, false
}

// elemType returns the static type stored at key.
func elemType(container reflect.Value, key any) reflect.Type {
	switch container.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return container.Type().Elem()
	case reflect.Struct:
		if name, ok := key.(string); ok {
			if field, ok := container.Type().FieldByName(name); ok && field.IsExported() {
				return field.Type
			}
		}
		panic(fmt.Sprintf("observe: %s has no exported field %v", container.Type(), key))
	}
	panic(fmt.Sprintf("observe: cannot index %s", container.Type()))
}

// assign writes nv at key inside container. Value-typed containers that are
// not addressable are copied, modified and handed to store, which writes the
// copy back into the enclosing location. Reports whether the write landed.
func assign(container reflect.Value, key any, nv reflect.Value, store func(reflect.Value) bool) bool {
	switch container.Kind() {
	case reflect.Map:
		k, ok := convertTo(key, container.Type().Key())
		if !ok {
			panic(fmt.Sprintf("observe: cannot use %T as key of %s", key, container.Type()))
		}
		if container.IsNil() {
			if store == nil {
				return false
			}
			m := reflect.MakeMap(container.Type())
			m.SetMapIndex(k, nv)
			return store(m)
		}
		container.SetMapIndex(k, nv)
		return true
	case reflect.Slice, reflect.Array:
		i, ok := toIndex(key)
		if !ok || i < 0 || i >= container.Len() {
			panic(fmt.Sprintf("observe: index %v out of range [0:%d]", key, container.Len()))
		}
		if container.Kind() == reflect.Slice || container.CanAddr() {
			container.Index(i).Set(nv)
			return true
		}
		if store == nil {
			return false
		}
		cp := reflect.New(container.Type()).Elem()
		cp.Set(container)
		cp.Index(i).Set(nv)
		return store(cp)
	case reflect.Struct:
		name, _ := key.(string)
		field, _ := container.Type().FieldByName(name)
		if container.CanAddr() {
			container.FieldByIndex(field.Index).Set(nv)
			return true
		}
		if store == nil {
			return false
		}
		cp := reflect.New(container.Type()).Elem()
		cp.Set(container)
		cp.FieldByIndex(field.Index).Set(nv)
		return store(cp)
	}
	return false
}

func toIndex(key any) (int, bool) {
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(v.Uint()), true
	}
	return 0, false
}

// convertTo turns an argument into a Value of type t. Proxies are unwrapped
// to their raw value. Numeric kinds convert between each other; everything
// else must be assignable.
func convertTo(v any, t reflect.Type) (reflect.Value, bool) {
	if p, ok := v.(*Proxy); ok {
		v = p.Value()
	}
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		if rv.Type() != t {
			out := reflect.New(t).Elem()
			out.Set(rv)
			return out, true
		}
		return rv, true
	}
	if (rv.Kind() == t.Kind() || (numeric(rv.Kind()) && numeric(t.Kind()))) && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

func mustConvert(op string, v any, t reflect.Type) reflect.Value {
	rv, ok := convertTo(v, t)
	if !ok {
		panic(fmt.Sprintf("observe: %s: cannot use %T as %s", op, v, t))
	}
	return rv
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func unwrapInterface(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// same is the change check used before every write: reference kinds compare
// by identity, comparable values with ==, the rest with reflect.DeepEqual.
// NaN is the same as NaN, so rewriting it is a no-op.
func same(a, b reflect.Value) bool {
	a, b = unwrapInterface(a), unwrapInterface(b)
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.UnsafePointer() == b.UnsafePointer()
	case reflect.Slice:
		return a.UnsafePointer() == b.UnsafePointer() && a.Len() == b.Len()
	case reflect.Float32, reflect.Float64:
		x, y := a.Float(), b.Float()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	}
	if a.Comparable() {
		return a.Equal(b)
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

// SameRef reports whether a and b are the same value. Maps, slices,
// pointers and collections compare by identity, so two distinct maps with
// equal contents are different. Proxies are compared by their raw values.
func SameRef(a, b any) bool {
	if p, ok := a.(*Proxy); ok {
		a = p.Value()
	}
	if p, ok := b.(*Proxy); ok {
		b = p.Value()
	}
	return same(reflect.ValueOf(a), reflect.ValueOf(b))
}

// ShallowCopy returns a new top-level container holding the same elements
// as v. Nested values are shared. Non-container values are returned as-is.
func ShallowCopy(v any) any {
	if p, ok := v.(*Proxy); ok {
		v = p.Value()
	}
	out := shallowCopy(reflect.ValueOf(v))
	if !out.IsValid() {
		return nil
	}
	return out.Interface()
}

func shallowCopy(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return shallowCopy(v.Elem())
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		cp := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), iter.Value())
		}
		return cp
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(cp, v)
		return cp
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		if c, ok := v.Interface().(collection); ok {
			return reflect.ValueOf(c.cloneAny())
		}
		cp := reflect.New(v.Type().Elem())
		cp.Elem().Set(v.Elem())
		return cp
	}
	return v
}

// As unwraps a value returned by a Proxy into T. Proxies yield their raw
// value; other values are type-asserted. The second result is false when
// the value does not hold a T.
func As[T any](v any) (T, bool) {
	if p, ok := v.(*Proxy); ok {
		v = p.Value()
	}
	t, ok := v.(T)
	return t, ok
}

// sortedKeys returns map keys in a stable order so iteration over builtin
// maps is deterministic.
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b reflect.Value) int {
	a, b = unwrapInterface(a), unwrapInterface(b)
	if a.IsValid() && b.IsValid() && a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
