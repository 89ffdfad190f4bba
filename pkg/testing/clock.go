package testing

import (
	"slices"
	"sync"
	"time"
)

// FakeClock provides controllable time for deterministic tests of delayed
// state updates. All methods are safe for concurrent use.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []fakeTimer
	seq    int
}

type fakeTimer struct {
	at  time.Time
	seq int
	fn  func()
}

// NewFakeClock returns a FakeClock starting at a fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Timers that become due run on the
// next WidgetTester.Pump, not here.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set sets the clock to an exact time.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// AfterFunc schedules fn to run once the clock has advanced by d.
func (c *FakeClock) AfterFunc(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.timers = append(c.timers, fakeTimer{at: c.now.Add(d), seq: c.seq, fn: fn})
}

// Pending returns the number of timers not yet run.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// due removes and returns the timers that are due, earliest first.
func (c *FakeClock) due() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	slices.SortFunc(c.timers, func(a, b fakeTimer) int {
		if cmp := a.at.Compare(b.at); cmp != 0 {
			return cmp
		}
		return a.seq - b.seq
	})
	var fns []func()
	i := 0
	for ; i < len(c.timers) && !c.timers[i].at.After(c.now); i++ {
		fns = append(fns, c.timers[i].fn)
	}
	c.timers = slices.Delete(c.timers, 0, i)
	return fns
}
