package core

import (
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/tracked/pkg/errors"
	"github.com/go-drift/tracked/pkg/lifecycle"
)

// stateBase is satisfied by any struct that embeds StateBase.
// NewSlot and UseController accept stateBase so callers can pass s directly.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// StateBase provides common functionality for stateful widget states.
// Embed this struct in your state to eliminate boilerplate.
//
// Example:
//
//	type myState struct {
//	    core.StateBase
//	    count *core.Slot[int]
//	}
//
//	func (s *myState) InitState() {
//	    s.count = core.NewSlot(s, "count", 0)
//	}
type StateBase struct {
	element   *StatefulElement
	disposers []func()
	disposed  bool
	mu        sync.Mutex

	host  State
	store Store
	hooks *lifecycle.Hooks
	slots map[string]bool
	id    string
}

// setElement stores the element reference for triggering rebuilds.
// This method is called automatically by the framework.
func (s *StateBase) setElement(element *StatefulElement) {
	s.SetElement(element)
}

// SetElement stores the element reference for triggering rebuilds.
// This method is called automatically by the framework.
func (s *StateBase) SetElement(element *StatefulElement) {
	s.element = element
	if element != nil {
		s.host = element.state
	}
}

// Element returns the element associated with this state.
// Returns nil if the state has not been mounted yet.
func (s *StateBase) Element() *StatefulElement {
	return s.element
}

// ID identifies this state instance in diagnostics.
func (s *StateBase) ID() string {
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s.id
}

// Hooks returns the lifecycle hook chain of this state. The state's own
// DidMount, DidUpdate, ShouldUpdate and WillUnmount methods are captured on
// first use, so call it from InitState or later.
func (s *StateBase) Hooks() *lifecycle.Hooks {
	if s.hooks == nil {
		s.hooks = lifecycle.New(s.host)
	}
	return s.hooks
}

// Store returns the committed state store.
func (s *StateBase) Store() *Store {
	return &s.store
}

// RequestUpdate queues partial for merging into the committed values and
// schedules a rebuild. Safe to call after disposal (becomes a no-op).
func (s *StateBase) RequestUpdate(partial map[string]any) {
	if s.disposed {
		return
	}
	s.store.Queue(partial)
	if s.element != nil {
		s.element.MarkNeedsBuild()
	}
}

// claim registers a slot name, panicking when it is already taken.
func (s *StateBase) claim(name string) {
	if s.slots[name] {
		panic(&errors.ConfigError{Point: "state", Name: name, Reason: "is declared twice"})
	}
	if s.slots == nil {
		s.slots = make(map[string]bool)
	}
	s.slots[name] = true
}

// SetState executes the given function and schedules a rebuild.
// Safe to call even after disposal (becomes a no-op).
//
// SetState is NOT thread-safe. It must only be called from the UI thread.
func (s *StateBase) SetState(fn func()) {
	if s.disposed {
		return
	}
	if fn != nil {
		fn()
	}
	if s.element != nil {
		s.element.MarkNeedsBuild()
	}
}

// OnDispose registers a cleanup function to be called when the state is disposed.
// Returns an unregister function that can be called to remove the disposer.
// The cleanup function will only be called once.
func (s *StateBase) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		// Already disposed, run cleanup immediately
		cleanup()
		return func() {}
	}

	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// RunDisposers executes all registered disposers in reverse order.
// This is called automatically by Dispose().
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true

	for i := len(s.disposers) - 1; i >= 0; i-- {
		if s.disposers[i] != nil {
			s.disposers[i]()
		}
	}
	s.disposers = nil
}

// Dispose cleans up resources. Override this method if you need custom cleanup,
// but always call s.RunDisposers() or s.StateBase.Dispose() in your override.
func (s *StateBase) Dispose() {
	s.RunDisposers()
}

// InitState is a no-op default implementation.
// Override this method to initialize your state.
func (s *StateBase) InitState() {}

// Build is a no-op default implementation that returns nil.
// Override this method to build your widget tree.
func (s *StateBase) Build(ctx BuildContext) Widget {
	return nil
}

// DidChangeDependencies is a no-op default implementation.
func (s *StateBase) DidChangeDependencies() {}

// DidUpdateWidget is a no-op default implementation.
// Override this method to respond to widget configuration changes.
func (s *StateBase) DidUpdateWidget(oldWidget StatefulWidget) {}

// IsDisposed returns true if this state has been disposed.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
