// Package testbed provides internal test widgets for the testing framework.
package testbed

import (
	"fmt"

	"github.com/go-drift/tracked/pkg/core"
	"github.com/go-drift/tracked/pkg/lifecycle"
)

// Counter is a stateful widget holding a count in a slot and rendering it
// as a Label.
type Counter struct {
	Initial  int
	OnChange func(count int)
}

func (c Counter) CreateElement() core.Element {
	return core.NewStatefulElement(c, nil)
}

func (c Counter) Key() any { return nil }

func (c Counter) CreateState() core.State {
	return &CounterState{}
}

// CounterState is the state of Counter.
type CounterState struct {
	core.StateBase
	Count    *core.Slot[int]
	Builds   int
	onChange func(int)
}

func (s *CounterState) InitState() {
	w := s.Element().Widget().(Counter)
	s.Count = core.NewSlot(s, "count", w.Initial)
	s.onChange = w.OnChange
}

// Increment adds one to the count.
func (s *CounterState) Increment() {
	s.Count.Update(func(n int) int { return n + 1 })
}

func (s *CounterState) Build(ctx core.BuildContext) core.Widget {
	s.Builds++
	return Label{Text: fmt.Sprintf("%d", s.Count.Value())}
}

func (s *CounterState) DidUpdate(prev lifecycle.Change) {
	if s.onChange != nil {
		s.onChange(s.Count.Value())
	}
}

func (s *CounterState) DidUpdateWidget(oldWidget core.StatefulWidget) {
	if w, ok := s.Element().Widget().(Counter); ok {
		s.onChange = w.OnChange
	}
}

// Label is a leaf widget showing text.
type Label struct {
	Text string
}

func (l Label) CreateElement() core.Element {
	return core.NewStatelessElement(l, nil)
}

func (l Label) Key() any { return nil }

func (l Label) Build(ctx core.BuildContext) core.Widget { return nil }
