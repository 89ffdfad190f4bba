// Package testing provides a widget testing harness for tracked state.
//
// # Quick Start
//
// Create a tester, pump a widget, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := trackedtest.NewWidgetTesterWithT(t)
//	    tester.PumpWidget(Counter{})
//
//	    state := trackedtest.StateOf[*counterState](
//	        tester.Find(trackedtest.ByState[*counterState]()))
//	    state.count.Set(1)
//	    tester.Pump()
//
//	    if !tester.Find(trackedtest.BySlot("count", 1)).Exists() {
//	        t.Error("expected count 1")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture the element tree with committed state and compare it against
// testdata/<name>.snapshot.json:
//
//	tester.CaptureSnapshot().Match(t, "counter")
//
// Update snapshots with:
//
//	go test ./... -update
//
// # Delayed Updates
//
// After schedules a callback on the fake clock. Advance the clock and
// pump, or let PumpAndSettle do both:
//
//	tester.After(time.Second, func() { s.items.Set(loaded) })
//	tester.PumpAndSettle(5 * time.Second)
//
// # Diagnostics
//
// The tester installs a Recorder as the global error handler. Build
// failures and orphaned writes can be inspected through Recorder().
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import trackedtest "github.com/go-drift/tracked/pkg/testing"
package testing
