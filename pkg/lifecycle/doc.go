// Package lifecycle composes independent callbacks onto the lifecycle points
// of a stateful component.
//
// A component host calls four entry points on a Hooks value: Mount after the
// first build, BeforeUpdate before every rebuild, Update after every rebuild
// and Unmount when the component leaves the tree. Each point runs a chain:
// the host's own handler first (DidMount, ShouldUpdate, DidUpdate or
// WillUnmount on the state, captured when the Hooks is created), then every
// attachment in the order it was declared.
//
//	func (s *profileState) InitState() {
//	    h := s.Hooks()
//	    lifecycle.Must(h.OnMount("subscribe", s.subscribe))
//	    lifecycle.Must(h.OnBeforeUpdate("throttle", s.throttle))
//	    lifecycle.Must(h.Once("fetch", func() (bool, func()) {
//	        if s.userID.Value() == "" {
//	            return false, nil
//	        }
//	        cancel := s.fetch()
//	        return true, cancel
//	    }))
//	}
//
// # Gate
//
// BeforeUpdate is a gate: the first handler that returns false rejects the
// update and the handlers after it are not evaluated.
//
// # Once
//
// A Once attachment fires on mount and on every update until its callback
// reports done or returns a cleanup. A returned cleanup runs exactly once,
// at unmount.
package lifecycle
