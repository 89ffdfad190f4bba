package testbed

import (
	"time"

	"github.com/go-drift/tracked/pkg/core"
)

// Scheduler delays a callback, as WidgetTester.After does.
type Scheduler func(d time.Duration, fn func())

// Loader fetches Items after Delay on mount and keeps them in a deep slot.
// A Counter is rendered for every loaded item.
type Loader struct {
	Items    []string
	Delay    time.Duration
	Schedule Scheduler
}

func (l Loader) CreateElement() core.Element {
	return core.NewStatefulElement(l, nil)
}

func (l Loader) Key() any { return nil }

func (l Loader) CreateState() core.State {
	return &LoaderState{}
}

// LoaderState is the state of Loader.
type LoaderState struct {
	core.StateBase
	Items *core.Slot[[]string]
}

func (s *LoaderState) InitState() {
	w := s.Element().Widget().(Loader)
	s.Items = core.NewSlot(s, "items", []string(nil))
	core.UseOnce(s, "load", func() (bool, func()) {
		w.Schedule(w.Delay, func() {
			s.Items.Set(append([]string(nil), w.Items...))
		})
		return true, nil
	})
}

func (s *LoaderState) Build(ctx core.BuildContext) core.Widget {
	items := s.Items.Value()
	if len(items) == 0 {
		return Label{Text: "loading"}
	}
	return Counter{Initial: len(items)}
}
