package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/tracked/pkg/core"
	trackerrors "github.com/go-drift/tracked/pkg/errors"
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: tree did not settle")

// frameDuration is how far PumpAndSettle advances the clock per frame.
const frameDuration = 16 * time.Millisecond

// WidgetTester mounts a widget tree on its own BuildOwner and drives
// rebuilds explicitly. It installs a Recorder as the global error handler
// for its lifetime.
type WidgetTester struct {
	buildOwner *core.BuildOwner
	root       core.Element
	clock      *FakeClock
	recorder   *Recorder
	prevMode   core.Mode
	dispatches []func()
}

// NewWidgetTester creates a tester with default test environment.
// Call Cleanup() when done, or use NewWidgetTesterWithT() instead.
func NewWidgetTester() *WidgetTester {
	t := &WidgetTester{
		buildOwner: core.NewBuildOwner(),
		clock:      NewFakeClock(),
		recorder:   NewRecorder(),
		prevMode:   core.DefaultMode(),
	}
	trackerrors.SetHandler(t.recorder)
	return t
}

// NewWidgetTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree and restores the global error handler and
// default slot mode. Must be called if not using NewWidgetTesterWithT.
func (t *WidgetTester) Cleanup() {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
	trackerrors.SetHandler(nil)
	core.SetDefaultMode(t.prevMode)
}

// SetDefaultMode sets the mode of slots declared without WithMode. Must be
// called before PumpWidget.
func (t *WidgetTester) SetDefaultMode(m core.Mode) {
	core.SetDefaultMode(m)
}

// Clock returns the fake clock driving After callbacks.
func (t *WidgetTester) Clock() *FakeClock {
	return t.clock
}

// Recorder returns the handler collecting reported errors and diagnostics.
func (t *WidgetTester) Recorder() *Recorder {
	return t.recorder
}

// PumpWidget mounts (or remounts) a widget and runs one frame.
func (t *WidgetTester) PumpWidget(widget core.Widget) error {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
	before := t.recorder.buildErrorCount()
	t.root = core.MountRoot(widget, t.buildOwner)
	if err := t.buildErrorSince(before); err != nil {
		return err
	}
	return t.Pump()
}

// Pump runs a single frame: queued dispatches, due timers, then the build
// flush. It returns the first build error reported during the frame. A
// panicking callback is reported as a PanicError and the frame continues.
func (t *WidgetTester) Pump() error {
	before := t.recorder.buildErrorCount()

	dispatches := t.dispatches
	t.dispatches = nil
	for _, fn := range dispatches {
		invoke("tester.Dispatch", fn)
	}
	for _, fn := range t.clock.due() {
		invoke("tester.After", fn)
	}

	t.buildOwner.FlushBuild()
	return t.buildErrorSince(before)
}

func invoke(op string, fn func()) {
	defer trackerrors.Recover(op)
	fn()
}

func (t *WidgetTester) buildErrorSince(n int) error {
	if errs := t.recorder.BuildErrors(); len(errs) > n {
		return errs[n]
	}
	return nil
}

// PumpAndSettle runs frames until the tree is idle or the timeout is
// reached. Each frame advances the fake clock by 16ms.
// Returns ErrSettleTimeout if the tree does not settle within timeout.
func (t *WidgetTester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.needsWork() {
			return nil
		}
		t.clock.Advance(frameDuration)
		elapsed += frameDuration
	}
	return ErrSettleTimeout
}

// needsWork returns true if the tree has pending work.
func (t *WidgetTester) needsWork() bool {
	return t.buildOwner.NeedsWork() ||
		t.clock.Pending() > 0 ||
		len(t.dispatches) > 0
}

// Dispatch queues a callback for the next frame.
func (t *WidgetTester) Dispatch(fn func()) {
	t.dispatches = append(t.dispatches, fn)
}

// After queues a callback for the first frame at least d after now on the
// fake clock.
func (t *WidgetTester) After(d time.Duration, fn func()) {
	t.clock.AfterFunc(d, fn)
}

// RootElement returns the root element of the mounted tree.
func (t *WidgetTester) RootElement() core.Element {
	return t.root
}

// Find evaluates a finder against the current element tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.root),
		finder:   finder,
	}
}
