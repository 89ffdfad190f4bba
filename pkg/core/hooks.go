package core

import "github.com/go-drift/tracked/pkg/lifecycle"

// UseController creates a controller and registers it for automatic disposal.
// The controller will be disposed when the state is disposed.
//
// Example:
//
//	func (s *feedState) InitState() {
//	    s.poller = core.UseController(s, func() *Poller {
//	        return NewPoller(30 * time.Second)
//	    })
//	}
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(func() {
		controller.Dispose()
	})
	return controller
}

// UseOnce registers fn with the state's hook chain through
// lifecycle.Hooks.Once. It panics with a *errors.ConfigError when fn is nil,
// so call it from InitState.
//
// Example:
//
//	func (s *feedState) InitState() {
//	    core.UseOnce(s, "subscribe", func() (bool, func()) {
//	        if s.feed.Value() == "" {
//	            return false, nil
//	        }
//	        unsub := bus.Subscribe(s.feed.Value(), s.onMessage)
//	        return true, unsub
//	    })
//	}
func UseOnce(s stateBase, name string, fn func() (done bool, cleanup func())) {
	lifecycle.Must(s.state().Hooks().Once(name, fn))
}
