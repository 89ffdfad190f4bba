package lifecycle

import (
	"fmt"
	"reflect"

	"github.com/go-drift/tracked/pkg/errors"
)

// Point identifies a lifecycle entry point.
type Point int

const (
	// Mount fires once, after the first build.
	Mount Point = iota
	// Update fires after every rebuild.
	Update
	// BeforeUpdate gates every rebuild.
	BeforeUpdate
	// Unmount fires once, when the component leaves the tree.
	Unmount
	// Render is Mount and Update combined. Accepted by AttachMethod only.
	Render
	// Init is the run-once point. Accepted by AttachMethod only.
	Init
)

func (p Point) String() string {
	switch p {
	case Mount:
		return "mount"
	case Update:
		return "update"
	case BeforeUpdate:
		return "beforeUpdate"
	case Unmount:
		return "unmount"
	case Render:
		return "render"
	case Init:
		return "init"
	default:
		return fmt.Sprintf("Point(%d)", int(p))
	}
}

// Change describes one side of an update: the widget configuration and the
// committed state values. Update handlers receive the previous side,
// BeforeUpdate handlers the next one.
type Change struct {
	Widget any
	State  map[string]any
	// Snapshot is the value returned by the host's SnapshotBeforeUpdate,
	// set on the previous side passed to Update handlers.
	Snapshot any
}

// Host handlers. A state implements any subset.
type (
	Mounter interface {
		DidMount()
	}
	Updater interface {
		DidUpdate(prev Change)
	}
	Gate interface {
		ShouldUpdate(next Change) bool
	}
	Unmounter interface {
		WillUnmount()
	}
	Snapshotter interface {
		SnapshotBeforeUpdate(prev Change) any
	}
)

// Attachment records one handler in a chain.
type Attachment struct {
	Point Point
	Name  string
	// Order is the declaration order across all points of one Hooks.
	Order int
	// HostPrior is set for the host's own handler, which always runs first.
	HostPrior bool
}

// Hooks holds the composed handler chain for each point of one component
// instance. It is not safe for concurrent use.
type Hooks struct {
	host     any
	mount    func()
	update   func(prev Change)
	gate     func(next Change) bool
	unmount  func()
	snapshot func(prev Change) any

	chain     map[Point][]Attachment
	order     int
	mounted   bool
	unmounted bool
}

// New captures host's own handlers and returns an empty chain on top of them.
// host may be nil.
func New(host any) *Hooks {
	h := &Hooks{host: host, chain: make(map[Point][]Attachment)}
	if m, ok := host.(Mounter); ok {
		h.mount = m.DidMount
		h.record(Mount, "DidMount", true)
	}
	if u, ok := host.(Updater); ok {
		h.update = u.DidUpdate
		h.record(Update, "DidUpdate", true)
	}
	if g, ok := host.(Gate); ok {
		h.gate = g.ShouldUpdate
		h.record(BeforeUpdate, "ShouldUpdate", true)
	}
	if u, ok := host.(Unmounter); ok {
		h.unmount = u.WillUnmount
		h.record(Unmount, "WillUnmount", true)
	}
	if s, ok := host.(Snapshotter); ok {
		h.snapshot = s.SnapshotBeforeUpdate
	}
	return h
}

func (h *Hooks) record(p Point, name string, hostPrior bool) {
	h.order++
	h.chain[p] = append(h.chain[p], Attachment{Point: p, Name: name, Order: h.order, HostPrior: hostPrior})
}

// Attachments lists the chain for p in the order it runs.
func (h *Hooks) Attachments(p Point) []Attachment {
	return append([]Attachment(nil), h.chain[p]...)
}

func invalid(p Point, name, reason string) error {
	return &errors.ConfigError{Point: p.String(), Name: name, Reason: reason}
}

// OnMount appends fn to the mount chain.
func (h *Hooks) OnMount(name string, fn func()) error {
	if fn == nil {
		return invalid(Mount, name, "is not a function")
	}
	h.addMount(fn)
	h.record(Mount, name, false)
	return nil
}

func (h *Hooks) addMount(fn func()) {
	prev := h.mount
	h.mount = func() {
		if prev != nil {
			prev()
		}
		fn()
	}
}

// OnUpdate appends fn to the update chain.
func (h *Hooks) OnUpdate(name string, fn func(prev Change)) error {
	if fn == nil {
		return invalid(Update, name, "is not a function")
	}
	h.addUpdate(fn)
	h.record(Update, name, false)
	return nil
}

func (h *Hooks) addUpdate(fn func(prev Change)) {
	prev := h.update
	h.update = func(c Change) {
		if prev != nil {
			prev(c)
		}
		fn(c)
	}
}

// OnBeforeUpdate appends fn to the gate. fn is not called when an earlier
// handler already rejected the update.
func (h *Hooks) OnBeforeUpdate(name string, fn func(next Change) bool) error {
	if fn == nil {
		return invalid(BeforeUpdate, name, "is not a function")
	}
	prev := h.gate
	h.gate = func(c Change) bool {
		if prev != nil && !prev(c) {
			return false
		}
		return fn(c)
	}
	h.record(BeforeUpdate, name, false)
	return nil
}

// OnUnmount appends fn to the unmount chain.
func (h *Hooks) OnUnmount(name string, fn func()) error {
	if fn == nil {
		return invalid(Unmount, name, "is not a function")
	}
	h.addUnmount(fn)
	h.record(Unmount, name, false)
	return nil
}

func (h *Hooks) addUnmount(fn func()) {
	prev := h.unmount
	h.unmount = func() {
		if prev != nil {
			prev()
		}
		fn()
	}
}

// OnRender appends fn to both the mount and the update chain.
func (h *Hooks) OnRender(name string, fn func()) error {
	if fn == nil {
		return invalid(Render, name, "is not a function")
	}
	h.addMount(fn)
	h.addUpdate(func(Change) { fn() })
	h.record(Mount, name, false)
	h.record(Update, name, false)
	return nil
}

// AttachMethod attaches the exported method name of the host to p. The
// method must have the signature of the matching On function; Update and
// Render also accept func(). Init expects func() (bool, func()).
func (h *Hooks) AttachMethod(p Point, name string) error {
	if h.host == nil {
		return invalid(p, name, "has no host")
	}
	m := reflect.ValueOf(h.host).MethodByName(name)
	if !m.IsValid() {
		return invalid(p, name, fmt.Sprintf("is not a method of %T", h.host))
	}
	fn := m.Interface()
	switch p {
	case Mount:
		if f, ok := fn.(func()); ok {
			return h.OnMount(name, f)
		}
	case Update:
		switch f := fn.(type) {
		case func(Change):
			return h.OnUpdate(name, f)
		case func():
			return h.OnUpdate(name, func(Change) { f() })
		}
	case BeforeUpdate:
		if f, ok := fn.(func(Change) bool); ok {
			return h.OnBeforeUpdate(name, f)
		}
	case Unmount:
		if f, ok := fn.(func()); ok {
			return h.OnUnmount(name, f)
		}
	case Render:
		if f, ok := fn.(func()); ok {
			return h.OnRender(name, f)
		}
	case Init:
		if f, ok := fn.(func() (bool, func())); ok {
			return h.Once(name, f)
		}
	default:
		return invalid(p, name, "unknown lifecycle point")
	}
	return invalid(p, name, fmt.Sprintf("has signature %s", m.Type()))
}

// Must panics if err is non-nil. It wraps attach calls made at declaration
// time, where a bad attachment is a programming error.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Mount runs the mount chain. It does nothing after Unmount or when the
// chain already ran.
func (h *Hooks) Mount() {
	if h.mounted || h.unmounted {
		return
	}
	h.mounted = true
	if h.mount != nil {
		h.mount()
	}
}

// Snapshot asks the host for its pre-update snapshot. It returns nil when
// the host does not implement Snapshotter.
func (h *Hooks) Snapshot(prev Change) any {
	if h.snapshot == nil || h.unmounted {
		return nil
	}
	return h.snapshot(prev)
}

// Update runs the update chain with the previous side of the change.
func (h *Hooks) Update(prev Change) {
	if h.unmounted {
		return
	}
	if h.update != nil {
		h.update(prev)
	}
}

// BeforeUpdate runs the gate and reports whether the update may proceed.
// An empty gate accepts; an unmounted component rejects.
func (h *Hooks) BeforeUpdate(next Change) bool {
	if h.unmounted {
		return false
	}
	if h.gate == nil {
		return true
	}
	return h.gate(next)
}

// Unmount runs the unmount chain exactly once. Later lifecycle calls are
// ignored.
func (h *Hooks) Unmount() {
	if h.unmounted {
		return
	}
	h.unmounted = true
	if h.unmount != nil {
		h.unmount()
	}
}

// Unmounted reports whether Unmount has run.
func (h *Hooks) Unmounted() bool {
	return h.unmounted
}
