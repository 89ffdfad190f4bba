package core

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-drift/tracked/pkg/errors"
	"github.com/go-drift/tracked/pkg/observe"
)

// Mode selects how a Slot tracks its value.
type Mode int

const (
	// Shallow slots return the raw committed value. Only Set triggers a
	// rebuild.
	Shallow Mode = iota + 1
	// Deep slots return a proxy over the latest value. A write anywhere
	// inside it triggers a rebuild.
	Deep
	// Pure slots behave like Deep slots and additionally replace the
	// top-level container with a shallow copy on every change, so the
	// committed value gets a new reference.
	Pure
)

func (m Mode) String() string {
	switch m {
	case Shallow:
		return "shallow"
	case Deep:
		return "deep"
	case Pure:
		return "pure"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the mode named name, case-insensitively.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shallow":
		return Shallow, nil
	case "deep":
		return Deep, nil
	case "pure":
		return Pure, nil
	}
	return 0, &errors.ConfigError{Point: "state", Name: name, Reason: "is not a slot mode (shallow, deep, pure)"}
}

var (
	defaultMode   = Deep
	defaultModeMu sync.RWMutex
)

// SetDefaultMode sets the mode of slots created without WithMode.
func SetDefaultMode(m Mode) {
	defaultModeMu.Lock()
	defer defaultModeMu.Unlock()
	defaultMode = m
}

// DefaultMode returns the mode of slots created without WithMode.
func DefaultMode() Mode {
	defaultModeMu.RLock()
	defer defaultModeMu.RUnlock()
	return defaultMode
}

// SlotOption configures a Slot.
type SlotOption func(*slotOptions)

type slotOptions struct {
	mode Mode
}

// WithMode overrides the default mode.
func WithMode(m Mode) SlotOption {
	return func(o *slotOptions) {
		o.mode = m
	}
}

// Slot is one named piece of tracked state on a StateBase.
//
// A slot keeps two values: the committed value in the state's Store, which
// Build reads through Value, and the realtime value, which includes writes
// not yet committed. Set and writes through the proxy returned by Get update
// the realtime value at once and queue an update; the committed value
// catches up on the next rebuild.
//
// Slot is NOT thread-safe. It must only be accessed from the UI thread.
type Slot[T any] struct {
	base    *StateBase
	name    string
	mode    Mode
	initial T
	seeded  bool
	// cell is an addressable holder for the realtime value.
	cell reflect.Value
}

// NewSlot declares a slot named name on s. The initial value is applied on
// first access. Declaring the same name twice on one state panics with a
// *errors.ConfigError.
//
// Example:
//
//	func (s *todoState) InitState() {
//	    s.items = core.NewSlot(s, "items", []Todo{})
//	}
//
//	func (s *todoState) add(t Todo) {
//	    s.items.Proxy().Append(t) // rebuilds
//	}
func NewSlot[T any](s stateBase, name string, initial T, opts ...SlotOption) *Slot[T] {
	base := s.state()
	base.claim(name)
	o := slotOptions{mode: DefaultMode()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Slot[T]{base: base, name: name, mode: o.mode, initial: initial}
}

// Name returns the slot name.
func (s *Slot[T]) Name() string {
	return s.name
}

// Mode returns the slot mode.
func (s *Slot[T]) Mode() Mode {
	return s.mode
}

func (s *Slot[T]) seed() {
	if s.seeded {
		return
	}
	s.seeded = true
	s.cell = reflect.New(reflect.TypeFor[T]()).Elem()
	s.cell.Set(reflect.ValueOf(&s.initial).Elem())
	s.base.store.seed(s.name, s.initial)
}

// Get reads the slot. Shallow slots return the raw committed value. Deep
// and pure slots return an *observe.Proxy over the realtime value when it is
// structured, and the raw realtime value otherwise.
func (s *Slot[T]) Get() any {
	s.seed()
	if s.mode == Shallow {
		v, _ := s.base.store.Get(s.name)
		return v
	}
	return observe.Root{
		Resolve:   s.resolve,
		Store:     s.store,
		Signal:    s.signal,
		Slot:      s.name,
		Component: s.base.ID(),
	}.Wrap(s.cell)
}

// Proxy returns Get as a proxy, or nil when the slot is shallow or its
// value is not structured.
func (s *Slot[T]) Proxy() *observe.Proxy {
	p, _ := s.Get().(*observe.Proxy)
	return p
}

// Value returns the committed value, the one Build should render.
func (s *Slot[T]) Value() T {
	s.seed()
	v, _ := s.base.store.Get(s.name)
	t, _ := v.(T)
	return t
}

// Current returns the realtime value, including updates not yet committed.
func (s *Slot[T]) Current() T {
	s.seed()
	t, _ := s.cell.Interface().(T)
	return t
}

// Set replaces the value. It queues an update only when v differs from the
// current value; maps, slices and pointers compare by identity.
func (s *Slot[T]) Set(v T) {
	s.seed()
	if p, ok := any(v).(*observe.Proxy); ok {
		if raw, ok := p.Value().(T); ok {
			v = raw
		}
	}
	if observe.SameRef(s.cell.Interface(), v) {
		return
	}
	s.cell.Set(reflect.ValueOf(&v).Elem())
	s.base.RequestUpdate(map[string]any{s.name: v})
}

// Update replaces the value with fn applied to the current value.
func (s *Slot[T]) Update(fn func(T) T) {
	s.Set(fn(s.Current()))
}

func (s *Slot[T]) resolve() (reflect.Value, bool) {
	return s.cell, s.cell.IsValid()
}

// store replaces the realtime value wholesale. Proxies call it when the
// root container cannot be written in place.
func (s *Slot[T]) store(nv reflect.Value) bool {
	if !nv.IsValid() || !nv.Type().AssignableTo(s.cell.Type()) {
		return false
	}
	s.cell.Set(nv)
	return true
}

func (s *Slot[T]) signal() {
	if s.mode == Pure {
		if cp := observe.ShallowCopy(s.cell.Interface()); cp != nil {
			s.store(reflect.ValueOf(cp))
		}
	}
	s.base.RequestUpdate(map[string]any{s.name: s.cell.Interface()})
}
