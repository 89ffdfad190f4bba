package lifecycle

// once is the shared state of one Once attachment.
type once struct {
	fn        func() (bool, func())
	satisfied bool
	cleanup   func()
}

func (o *once) run() {
	if o.satisfied {
		return
	}
	done, cleanup := o.fn()
	if cleanup != nil {
		o.cleanup = cleanup
		o.satisfied = true
		return
	}
	o.satisfied = done
}

func (o *once) release() {
	cleanup := o.cleanup
	o.cleanup = nil
	if cleanup != nil {
		cleanup()
	}
}

// Once attaches fn to the mount and update chains with a shared satisfied
// flag. fn runs on mount and after each update until it returns true or a
// non-nil cleanup; after that it is skipped. A cleanup replaces any earlier
// one from the same attachment and runs once, at unmount.
func (h *Hooks) Once(name string, fn func() (done bool, cleanup func())) error {
	if fn == nil {
		return invalid(Init, name, "is not a function")
	}
	o := &once{fn: fn}
	h.addMount(o.run)
	h.addUpdate(func(Change) { o.run() })
	h.addUnmount(o.release)
	h.record(Mount, name, false)
	h.record(Update, name, false)
	h.record(Unmount, name, false)
	return nil
}
