package observe

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/go-drift/tracked/pkg/errors"
)

// Resolver reports the authoritative backing value as of now. It returns
// false when the value can no longer be reached from its owner.
type Resolver func() (reflect.Value, bool)

// Static returns a Resolver that always yields v.
func Static(v any) Resolver {
	rv := reflect.ValueOf(v)
	return func() (reflect.Value, bool) {
		return rv, rv.IsValid()
	}
}

// location is a place in the live value graph: how to read it now and how
// to replace it wholesale. store is nil when the location is read-only.
type location struct {
	resolve Resolver
	store   func(reflect.Value) bool
}

// owner is shared by every proxy derived from one root.
type owner struct {
	signal    func()
	slot      string
	component string
}

func (o *owner) notify() {
	if o.signal != nil {
		o.signal()
	}
}

func (o *owner) orphaned(op string, path []any) {
	errors.ReportDiagnostic(&errors.OrphanError{
		Slot:      o.slot,
		Path:      path,
		Op:        op,
		Component: o.component,
	})
}

// Root describes the owner of a proxy tree.
type Root struct {
	// Resolve re-reads the root value from its owner on every call.
	Resolve Resolver
	// Store replaces the root value. Optional; only needed when the root is
	// held by value in a location that is not addressable.
	Store func(reflect.Value) bool
	// Signal is called after every write that changed the graph.
	Signal func()
	// Slot and Component label orphaned-write diagnostics.
	Slot      string
	Component string
}

// Wrap returns a proxy over value, or value itself when it is not a
// structured value.
func (r Root) Wrap(value reflect.Value) any {
	o := &owner{signal: r.Signal, slot: r.Slot, component: r.Component}
	return wrap(value, location{resolve: r.Resolve, store: r.Store}, o, nil)
}

// Wrap returns a proxy over value that writes through to whatever resolve
// yields at write time and calls signal after each change. Primitives are
// returned unchanged.
func Wrap(value any, resolve Resolver, signal func()) any {
	return Root{Resolve: resolve, Signal: signal}.Wrap(reflect.ValueOf(value))
}

func wrap(v reflect.Value, loc location, o *owner, path []any) any {
	if !v.IsValid() {
		return nil
	}
	if !structured(v) {
		if !v.CanInterface() {
			return nil
		}
		return v.Interface()
	}
	return &Proxy{
		target: v,
		typ:    indirect(v).Type(),
		loc:    loc,
		owner:  o,
		path:   path,
	}
}

// Proxy intercepts reads and writes on a structured value: a map, slice,
// array, struct with exported fields, a pointer to one of those, or one of
// the collections in this package.
//
// Reads wrap nested structured values in proxies of their own. Writes are
// applied to the value the resolver yields at write time, not to the value
// captured when the proxy was created, so a proxy keeps working after its
// owner replaced the parent container. Writing a value equal to the current
// one is a no-op and does not signal.
//
// Proxies are cheap and meant to be short-lived: read a fresh one from the
// slot whenever it is needed.
type Proxy struct {
	target reflect.Value
	typ    reflect.Type
	loc    location
	owner  *owner
	path   []any
}

// resolveRaw returns the live value at this proxy's location without
// dereferencing it. It fails when the location is gone or now holds an
// incompatible type.
func (p *Proxy) resolveRaw() (reflect.Value, bool) {
	if p.loc.resolve == nil {
		return reflect.Value{}, false
	}
	v, ok := p.loc.resolve()
	if !ok || !v.IsValid() {
		return reflect.Value{}, false
	}
	if c := indirect(v); !c.IsValid() || c.Type() != p.typ {
		return reflect.Value{}, false
	}
	return v, true
}

// live returns the dereferenced live container.
func (p *Proxy) live() (reflect.Value, bool) {
	v, ok := p.resolveRaw()
	if !ok {
		return reflect.Value{}, false
	}
	return indirect(v), true
}

// current is the live container when reachable, else the captured one.
func (p *Proxy) current() reflect.Value {
	if v, ok := p.live(); ok {
		return v
	}
	return indirect(p.target)
}

// Stale reports whether the proxy's backing value is no longer reachable
// from its owner. Writes through a stale proxy never signal.
func (p *Proxy) Stale() bool {
	_, ok := p.resolveRaw()
	return !ok
}

// Path returns the keys leading from the root value to this proxy.
func (p *Proxy) Path() []any {
	return append([]any(nil), p.path...)
}

// Type returns the dynamic type of the container behind the proxy.
func (p *Proxy) Type() reflect.Type {
	return p.typ
}

// Value returns the raw value behind the proxy, read from the live location
// when reachable.
func (p *Proxy) Value() any {
	v, ok := p.resolveRaw()
	if !ok {
		v = p.target
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

func (p *Proxy) childPath(key any) []any {
	path := make([]any, len(p.path)+1)
	copy(path, p.path)
	path[len(p.path)] = key
	return path
}

func (p *Proxy) childLocation(key any) location {
	return location{
		resolve: func() (reflect.Value, bool) {
			parent, ok := p.live()
			if !ok {
				return reflect.Value{}, false
			}
			child, ok := lookup(parent, key)
			if !ok || !structured(child) {
				return reflect.Value{}, false
			}
			return child, true
		},
		store: func(nv reflect.Value) bool {
			parent, ok := p.live()
			if !ok {
				return false
			}
			return assign(parent, key, nv, p.loc.store)
		},
	}
}

// Get reads key: a map key, a slice or array index, or an exported struct
// field name. Structured results come back as *Proxy; missing keys yield nil.
// On collections Get is the map-like "get" member.
func (p *Proxy) Get(key any) any {
	if p.isCollection() {
		return p.invoke("get", key)
	}
	child, ok := lookup(p.current(), key)
	if !ok {
		return nil
	}
	return wrap(child, p.childLocation(key), p.owner, p.childPath(key))
}

// At is Get for keys known to hold structured values. It returns nil when
// the value at key is missing or primitive.
func (p *Proxy) At(key any) *Proxy {
	child, _ := p.Get(key).(*Proxy)
	return child
}

// Lookup follows keys from this proxy, as repeated calls to Get would.
func (p *Proxy) Lookup(keys ...any) any {
	var cur any = p
	for _, key := range keys {
		next, ok := cur.(*Proxy)
		if !ok {
			return nil
		}
		cur = next.Get(key)
	}
	return cur
}

// Set writes value at key on the live container and signals when the value
// changed. On collections Set is the map-like "set" member and always
// signals.
func (p *Proxy) Set(key any, value any) {
	if p.isCollection() {
		p.invoke("set", key, value)
		return
	}
	live, ok := p.live()
	if !ok {
		p.writeOrphaned("set", key, value)
		return
	}
	nv := mustConvert("Set", value, elemType(live, key))
	if old, exists := lookup(live, key); exists && same(old, nv) {
		return
	}
	if !assign(live, key, nv, p.loc.store) {
		p.owner.orphaned("set", p.childPath(key))
		return
	}
	p.owner.notify()
}

// Update replaces the value at key with fn applied to its raw value.
func (p *Proxy) Update(key any, fn func(any) any) {
	var cur any
	if v, ok := lookup(p.current(), key); ok && v.CanInterface() {
		cur = v.Interface()
	}
	p.Set(key, fn(cur))
}

// writeOrphaned applies a write to the captured container without
// signalling, and reports the diagnostic.
func (p *Proxy) writeOrphaned(op string, key any, value any) {
	p.owner.orphaned(op, p.childPath(key))
	func() {
		defer func() { _ = recover() }()
		target := indirect(p.target)
		if !target.IsValid() {
			return
		}
		nv, ok := convertTo(value, elemType(target, key))
		if !ok {
			return
		}
		assign(target, key, nv, nil)
	}()
}

// Len returns the number of elements in a map, slice, array or collection.
func (p *Proxy) Len() int {
	if p.isCollection() {
		return p.invoke("size").(int)
	}
	cur := p.current()
	switch cur.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return cur.Len()
	}
	panic(fmt.Sprintf("observe: Len of %s", p.typ))
}

// Append adds values to the end of a slice, writing the grown slice back to
// its live location, and signals.
func (p *Proxy) Append(values ...any) {
	if p.typ.Kind() != reflect.Slice {
		panic(fmt.Sprintf("observe: Append on %s", p.typ))
	}
	if len(values) == 0 {
		return
	}
	raw, ok := p.resolveRaw()
	if !ok {
		p.owner.orphaned("append", p.path)
		return
	}
	live := indirect(raw)
	elems := make([]reflect.Value, len(values))
	for i, v := range values {
		elems[i] = mustConvert("Append", v, p.typ.Elem())
	}
	grown := reflect.Append(live, elems...)
	switch {
	case live.CanSet():
		live.Set(grown)
	case p.loc.store != nil && p.loc.store(grown):
	default:
		p.owner.orphaned("append", p.path)
		return
	}
	p.owner.notify()
}

// Delete removes key from a builtin map, signalling when it was present.
// On collections Delete is the "delete" member and always signals.
func (p *Proxy) Delete(key any) bool {
	if p.isCollection() {
		return p.invoke("delete", key).(bool)
	}
	if p.typ.Kind() != reflect.Map {
		panic(fmt.Sprintf("observe: Delete on %s", p.typ))
	}
	live, ok := p.live()
	if !ok {
		p.owner.orphaned("delete", p.childPath(key))
		return false
	}
	k, ok := convertTo(key, p.typ.Key())
	if !ok || live.IsNil() || !live.MapIndex(k).IsValid() {
		return false
	}
	live.SetMapIndex(k, reflect.Value{})
	p.owner.notify()
	return true
}

// Keys ranges over map keys in sorted order, slice or array indexes, or
// exported struct field names. On collections it is the "keys" member and
// yields wrapped keys.
func (p *Proxy) Keys() iter.Seq[any] {
	if p.isCollection() {
		return p.invoke("keys").(iter.Seq[any])
	}
	return func(yield func(any) bool) {
		cur := p.current()
		switch cur.Kind() {
		case reflect.Map:
			for _, k := range sortedKeys(cur) {
				if !yield(k.Interface()) {
					return
				}
			}
		case reflect.Slice, reflect.Array:
			for i := range cur.Len() {
				if !yield(i) {
					return
				}
			}
		case reflect.Struct:
			for i := range cur.NumField() {
				if f := cur.Type().Field(i); f.IsExported() && !yield(f.Name) {
					return
				}
			}
		}
	}
}

// All ranges over key/value pairs with values wrapped as by Get. On
// collections it is the "entries" member.
func (p *Proxy) All() iter.Seq2[any, any] {
	if p.isCollection() {
		return p.invoke("entries").(iter.Seq2[any, any])
	}
	return func(yield func(any, any) bool) {
		for key := range p.Keys() {
			if !yield(key, p.Get(key)) {
				return
			}
		}
	}
}

func (p *Proxy) String() string {
	return fmt.Sprintf("observe.Proxy(%s %s)", p.typ, errors.FormatPath(p.path))
}
