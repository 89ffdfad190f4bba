package core_test

import (
	"fmt"

	"github.com/go-drift/tracked/pkg/core"
	"github.com/go-drift/tracked/pkg/lifecycle"
)

type counter struct {
	core.StatefulBase
}

func (counter) CreateState() core.State { return &counterState{} }

type counterState struct {
	core.StateBase
	count *core.Slot[int]
}

func (s *counterState) InitState() {
	s.count = core.NewSlot(s, "count", 0)
}

func (s *counterState) DidMount() {
	fmt.Println("mounted")
}

func (s *counterState) Build(ctx core.BuildContext) core.Widget {
	fmt.Println("render", s.count.Value())
	return nil
}

// This example shows a slot driving rebuilds. Setting the value it
// already holds does not schedule a build.
func ExampleNewSlot() {
	owner := core.NewBuildOwner()
	root := core.MountRoot(counter{}, owner)
	state := root.(*core.StatefulElement).State().(*counterState)

	state.count.Set(1)
	owner.FlushBuild()

	state.count.Set(1)
	owner.FlushBuild()

	// Output:
	// render 0
	// mounted
	// render 1
}

type todoList struct {
	core.StatefulBase
}

func (todoList) CreateState() core.State { return &todoState{} }

type todoState struct {
	core.StateBase
	items *core.Slot[[]string]
}

func (s *todoState) InitState() {
	s.items = core.NewSlot(s, "items", []string{})
	lifecycle.Must(s.Hooks().OnUpdate("log", func(prev lifecycle.Change) {
		fmt.Println("was", prev.State["items"], "now", s.items.Value())
	}))
}

func (s *todoState) Build(ctx core.BuildContext) core.Widget { return nil }

// This example shows writes through a slot's proxy. Appending to the list
// in place is enough to schedule a build.
func ExampleSlot_Proxy() {
	owner := core.NewBuildOwner()
	root := core.MountRoot(todoList{}, owner)
	state := root.(*core.StatefulElement).State().(*todoState)

	state.items.Proxy().Append("write docs")
	owner.FlushBuild()

	// Output:
	// was [] now [write docs]
}

type feed struct {
	core.StatefulBase
}

func (feed) CreateState() core.State { return &feedState{} }

type feedState struct {
	core.StateBase
	topic *core.Slot[string]
}

func (s *feedState) InitState() {
	s.topic = core.NewSlot(s, "topic", "", core.WithMode(core.Shallow))
	core.UseOnce(s, "subscribe", func() (bool, func()) {
		topic := s.topic.Value()
		if topic == "" {
			return false, nil
		}
		fmt.Println("subscribe", topic)
		return true, func() { fmt.Println("unsubscribe", topic) }
	})
}

func (s *feedState) Build(ctx core.BuildContext) core.Widget { return nil }

// This example shows an initializer that waits for its input, runs once,
// and releases its resource on unmount.
func ExampleUseOnce() {
	owner := core.NewBuildOwner()
	root := core.MountRoot(feed{}, owner)
	state := root.(*core.StatefulElement).State().(*feedState)

	state.topic.Set("releases")
	owner.FlushBuild()
	state.topic.Set("security")
	owner.FlushBuild()

	root.Unmount()

	// Output:
	// subscribe releases
	// unsubscribe releases
}

type ticker struct{ stopped bool }

func (t *ticker) Dispose() { t.stopped = true }

// This example shows a controller released together with its state.
func ExampleUseController() {
	state := &core.StateBase{}
	t := core.UseController(state, func() *ticker { return &ticker{} })

	state.Dispose()
	fmt.Println("stopped:", t.stopped)

	// Output:
	// stopped: true
}

// This example shows Stateful for small widgets with one piece of local
// state.
func ExampleStateful() {
	var bump func()
	widget := core.Stateful(
		func() int { return 0 },
		func(n int, ctx core.BuildContext, setState func(func(int) int)) core.Widget {
			fmt.Println("n =", n)
			bump = func() { setState(func(v int) int { return v + 1 }) }
			return nil
		},
	)

	owner := core.NewBuildOwner()
	core.MountRoot(widget, owner)
	bump()
	owner.FlushBuild()

	// Output:
	// n = 0
	// n = 1
}
