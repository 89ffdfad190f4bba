package observe

import (
	"fmt"
	"iter"
	"reflect"
)

// CollectionKind identifies a recognized collection.
type CollectionKind int

const (
	// SetKind is a set-like collection (*Set).
	SetKind CollectionKind = iota + 1
	// MapKind is a map-like collection (*OrderedMap).
	MapKind
	// IdentityMapKind is an identity-keyed map (*IdentityMap).
	IdentityMapKind
)

func (k CollectionKind) String() string {
	switch k {
	case SetKind:
		return "set"
	case MapKind:
		return "map"
	case IdentityMapKind:
		return "identity map"
	default:
		return "unknown"
	}
}

// collection is the untyped view the adapter drives. Only the types in this
// package implement it.
type collection interface {
	collectionKind() CollectionKind
	getAny(key any) (any, bool)
	setAny(key, value any)
	hasAny(key any) bool
	deleteAny(key any) bool
	clearAll()
	eachAny(yield func(key, value any) bool)
	lenAny() int
	cloneAny() any
}

// member is a substitute for one collection entry point.
type member func(p *Proxy, c collection, args []any) any

// adapters maps each collection kind to the entry points that need more
// than plain delegation: getters wrap what they return, iterators wrap what
// they yield, mutators signal after delegating. Elements do not live in
// named fields, so per-key interception in Proxy cannot see them.
var adapters = map[CollectionKind]map[string]member{
	SetKind: {
		"add":     mutator(func(c collection, args []any) any { c.setAny(args[0], args[0]); return nil }),
		"delete":  mutator(func(c collection, args []any) any { return c.deleteAny(args[0]) }),
		"clear":   mutator(func(c collection, _ []any) any { c.clearAll(); return nil }),
		"forEach": forEach,
		"entries": entries,
		"values":  values,
		"keys":    keys,
	},
	MapKind: {
		"get":     get,
		"set":     mutator(func(c collection, args []any) any { c.setAny(args[0], args[1]); return nil }),
		"delete":  mutator(func(c collection, args []any) any { return c.deleteAny(args[0]) }),
		"clear":   mutator(func(c collection, _ []any) any { c.clearAll(); return nil }),
		"forEach": forEach,
		"entries": entries,
		"values":  values,
		"keys":    keys,
	},
	IdentityMapKind: {
		"get":    get,
		"set":    mutator(func(c collection, args []any) any { c.setAny(args[0], args[1]); return nil }),
		"delete": mutator(func(c collection, args []any) any { return c.deleteAny(args[0]) }),
	},
}

// bound maps the members that are delegated unchanged.
var bound = map[CollectionKind]map[string]func(c collection, args []any) any{
	SetKind:         {"has": has, "size": size},
	MapKind:         {"has": has, "size": size},
	IdentityMapKind: {"has": has},
}

func has(c collection, args []any) any { return c.hasAny(args[0]) }

func size(c collection, _ []any) any { return c.lenAny() }

// adapt returns the substitute for name on collections of kind, or nil when
// the default behavior applies.
func adapt(kind CollectionKind, name string) member {
	return adapters[kind][name]
}

// mutator delegates and then signals unconditionally. Collections offer no
// cheap before/after comparison, so every mutating call counts as a change.
func mutator(fn func(c collection, args []any) any) member {
	return func(p *Proxy, c collection, args []any) any {
		if p.Stale() {
			p.owner.orphaned("collection", p.path)
			return fn(c, args)
		}
		ret := fn(c, args)
		p.owner.notify()
		return ret
	}
}

func get(p *Proxy, c collection, args []any) any {
	key := args[0]
	e, ok := c.getAny(key)
	if !ok {
		return nil
	}
	return p.element(key, reflect.ValueOf(e), true)
}

func forEach(p *Proxy, c collection, args []any) any {
	fn := args[0].(func(value, key any))
	c.eachAny(func(k, v any) bool {
		fn(p.element(k, reflect.ValueOf(v), byKey(c)), k)
		return true
	})
	return nil
}

func entries(p *Proxy, c collection, _ []any) any {
	return iter.Seq2[any, any](func(yield func(any, any) bool) {
		c.eachAny(func(k, v any) bool {
			return yield(k, p.element(k, reflect.ValueOf(v), byKey(c)))
		})
	})
}

func values(p *Proxy, c collection, _ []any) any {
	return iter.Seq[any](func(yield func(any) bool) {
		c.eachAny(func(k, v any) bool {
			return yield(p.element(k, reflect.ValueOf(v), byKey(c)))
		})
	})
}

func keys(p *Proxy, c collection, _ []any) any {
	return iter.Seq[any](func(yield func(any) bool) {
		c.eachAny(func(k, _ any) bool {
			return yield(p.element(k, reflect.ValueOf(k), false))
		})
	})
}

// byKey reports whether iterated elements of c can be re-read by key. Set
// elements are their own keys, so a write cannot be stored back.
func byKey(c collection) bool {
	return c.collectionKind() != SetKind
}

// element wraps a value that came out of a collection. Keyed lookups
// re-read the key from the live collection and can store value-typed
// elements back; unkeyed elements resolve to themselves.
func (p *Proxy) element(key any, v reflect.Value, keyed bool) any {
	path := p.childPath(key)
	if !keyed {
		return wrap(v, location{resolve: func() (reflect.Value, bool) { return v, v.IsValid() }}, p.owner, path)
	}
	loc := location{
		resolve: func() (reflect.Value, bool) {
			c, ok := p.liveCollection()
			if !ok {
				return reflect.Value{}, false
			}
			e, ok := c.getAny(key)
			if !ok {
				return reflect.Value{}, false
			}
			ev := reflect.ValueOf(e)
			return ev, structured(ev)
		},
		store: func(nv reflect.Value) bool {
			c, ok := p.liveCollection()
			if !ok {
				return false
			}
			c.setAny(key, nv.Interface())
			return true
		},
	}
	return wrap(v, loc, p.owner, path)
}

func (p *Proxy) isCollection() bool {
	return p.typ.Kind() == reflect.Pointer && p.typ.Implements(collectionType)
}

func (p *Proxy) liveCollection() (collection, bool) {
	v, ok := p.live()
	if !ok {
		return nil, false
	}
	return v.Interface().(collection), true
}

// invoke dispatches a collection entry point through the adapter table,
// falling back to plain delegation for bound members.
func (p *Proxy) invoke(name string, args ...any) any {
	c, ok := p.liveCollection()
	if !ok {
		c = indirect(p.target).Interface().(collection)
	}
	for i, a := range args {
		if ap, ok := a.(*Proxy); ok {
			args[i] = ap.Value()
		}
	}
	if fn := adapt(c.collectionKind(), name); fn != nil {
		return fn(p, c, args)
	}
	if fn, ok := bound[c.collectionKind()][name]; ok {
		return fn(c, args)
	}
	panic(fmt.Sprintf("observe: %s does not support %s", c.collectionKind(), name))
}

// Add inserts value into a set and signals.
func (p *Proxy) Add(value any) {
	p.invoke("add", value)
}

// Has reports whether a collection contains key. It never signals.
func (p *Proxy) Has(key any) bool {
	return p.invoke("has", key).(bool)
}

// Clear empties a collection and signals.
func (p *Proxy) Clear() {
	p.invoke("clear")
}

// ForEach calls fn for each element of a collection with the element
// wrapped in a proxy when structured.
func (p *Proxy) ForEach(fn func(value, key any)) {
	p.invoke("forEach", fn)
}

// Entries returns a sequence over a collection's key/value pairs. Values
// are wrapped; keys are passed through. Each call returns a new sequence.
func (p *Proxy) Entries() iter.Seq2[any, any] {
	return p.invoke("entries").(iter.Seq2[any, any])
}

// Values returns a sequence over a collection's values, wrapped.
func (p *Proxy) Values() iter.Seq[any] {
	return p.invoke("values").(iter.Seq[any])
}
