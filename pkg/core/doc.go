// Package core provides the component tree that hosts tracked state.
//
// A Widget is an immutable description of a component. An Element is the
// instantiation of a Widget at a location in the tree; it owns the State of
// a stateful widget and drives its lifecycle. A BuildOwner collects the
// elements that need rebuilding and rebuilds them, shallowest first, when
// FlushBuild is called.
//
// # Stateful Widgets
//
// Embed StateBase in your state struct and declare slots in InitState:
//
//	type counterState struct {
//	    core.StateBase
//	    count *core.Slot[int]
//	}
//
//	func (s *counterState) InitState() {
//	    s.count = core.NewSlot(s, "count", 0)
//	}
//
//	func (s *counterState) Build(ctx core.BuildContext) core.Widget {
//	    return Label{Text: fmt.Sprint(s.count.Value())}
//	}
//
// # Slots
//
// A Slot is one named piece of state. Writes to it, either through Set or
// through the proxy returned by Get, are applied to the realtime value at
// once and queued on the state's Store. The element merges the queue into
// the committed values on its next rebuild, so Build always reads a
// consistent snapshot through Value.
//
// Slots come in three modes. Shallow slots only notice Set. Deep slots hand
// out an *observe.Proxy and notice writes anywhere inside the value. Pure
// slots behave like deep slots and also replace the top-level container on
// every change, so consumers comparing by reference see a new value.
//
// # Lifecycle
//
// The state's DidMount, ShouldUpdate, SnapshotBeforeUpdate, DidUpdate and
// WillUnmount methods run first at their point. Handlers attached through
// Hooks run after them, in the order they were attached. The first
// before-update handler to return false rejects the rebuild; the queued
// updates are still committed. UseOnce attaches an initializer that
// runs until it reports success and whose cleanup runs at unmount.
//
// # Hooks
//
// UseController and UseOnce manage resources with automatic cleanup when
// the state is disposed or unmounted.
package core
