package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/tracked/pkg/errors"
	"github.com/go-drift/tracked/pkg/observe"
)

// slotState declares its slots through setup and counts builds.
type slotState struct {
	StateBase
	setup  func(s *slotState)
	builds int
}

func (s *slotState) InitState() {
	if s.setup != nil {
		s.setup(s)
	}
}

func (s *slotState) Build(ctx BuildContext) Widget {
	s.builds++
	return nil
}

func mountSlots(t *testing.T, setup func(s *slotState)) (*slotState, *BuildOwner, Element) {
	t.Helper()
	state := &slotState{setup: setup}
	owner := NewBuildOwner()
	element := MountRoot(testStatefulWidget{createStateFn: func() State { return state }}, owner)
	require.Equal(t, 1, state.builds)
	return state, owner, element
}

func TestSlot_CounterRebuildsOnlyOnChange(t *testing.T) {
	var count *Slot[int]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		count = NewSlot(s, "count", 0)
	})

	assert.Equal(t, 0, count.Get())

	count.Set(1)
	owner.FlushBuild()
	assert.Equal(t, 2, state.builds)
	assert.Equal(t, 1, count.Value())

	count.Set(1)
	owner.FlushBuild()
	assert.Equal(t, 2, state.builds, "setting the same value must not rebuild")
}

func TestSlot_UpdatesBetweenFlushesRebuildOnce(t *testing.T) {
	var count *Slot[int]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		count = NewSlot(s, "count", 0)
	})

	count.Update(func(n int) int { return n + 1 })
	count.Update(func(n int) int { return n + 1 })
	assert.Equal(t, 0, count.Value(), "committed value waits for the rebuild")
	assert.Equal(t, 2, count.Current())

	owner.FlushBuild()
	assert.Equal(t, 2, state.builds)
	assert.Equal(t, 2, count.Value())
}

func TestSlot_ProxyAppendRebuilds(t *testing.T) {
	var items *Slot[[]string]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		items = NewSlot(s, "items", []string{})
	})

	items.Proxy().Append("milk")
	owner.FlushBuild()

	assert.Equal(t, 2, state.builds)
	assert.Equal(t, []string{"milk"}, items.Value())
	assert.Equal(t, 1, items.Proxy().Len())
}

func TestSlot_NestedWritesReachTheSlot(t *testing.T) {
	type profile struct {
		Name string
		Tags map[string][]string
	}
	var user *Slot[profile]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		user = NewSlot(s, "user", profile{Name: "ada", Tags: map[string][]string{}})
	})

	p := user.Proxy()
	p.Set("Name", "grace")
	p.At("Tags").Set("langs", []string{"cobol"})
	p.Lookup("Tags", "langs").(*observe.Proxy).Append("fortran")
	owner.FlushBuild()

	assert.Equal(t, 2, state.builds)
	got := user.Value()
	assert.Equal(t, "grace", got.Name)
	assert.Equal(t, []string{"cobol", "fortran"}, got.Tags["langs"])
}

func TestSlot_NoOpWriteDoesNotRebuild(t *testing.T) {
	var cfg *Slot[map[string]int]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		cfg = NewSlot(s, "cfg", map[string]int{"retries": 3})
	})

	cfg.Proxy().Set("retries", 3)
	owner.FlushBuild()

	assert.Equal(t, 1, state.builds)
	assert.False(t, owner.NeedsWork())
}

type account struct {
	ID string
}

func TestSlot_IdentityMapCache(t *testing.T) {
	var cache *Slot[*observe.IdentityMap[account, string]]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		cache = NewSlot(s, "cache", observe.NewIdentityMap[account, string]())
	})
	alice := &account{ID: "alice"}

	cache.Proxy().Set(alice, "avatar.png")
	owner.FlushBuild()

	assert.Equal(t, 2, state.builds)
	assert.Equal(t, "avatar.png", cache.Proxy().Get(alice))
	assert.True(t, cache.Proxy().Has(alice))
	assert.False(t, cache.Proxy().Has(&account{ID: "alice"}), "keys compare by identity")
	assert.Panics(t, func() { cache.Proxy().Len() })
}

func TestSlot_PureReplacesTopLevel(t *testing.T) {
	var pure, deep *Slot[map[string]int]
	_, owner, _ := mountSlots(t, func(s *slotState) {
		pure = NewSlot(s, "pure", map[string]int{"a": 1}, WithMode(Pure))
		deep = NewSlot(s, "deep", map[string]int{"a": 1}, WithMode(Deep))
	})
	pureBefore, deepBefore := pure.Value(), deep.Value()

	pure.Proxy().Set("b", 2)
	deep.Proxy().Set("b", 2)
	owner.FlushBuild()

	assert.False(t, observe.SameRef(pureBefore, pure.Value()))
	assert.True(t, observe.SameRef(deepBefore, deep.Value()))
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, pure.Value())
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, deep.Value())
}

func TestSlot_ShallowReturnsRawCommittedValue(t *testing.T) {
	var tags *Slot[map[string]bool]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		tags = NewSlot(s, "tags", map[string]bool{}, WithMode(Shallow))
	})

	raw, ok := tags.Get().(map[string]bool)
	require.True(t, ok, "shallow slots are not proxied")
	assert.Nil(t, tags.Proxy())

	raw["quiet"] = true
	owner.FlushBuild()
	assert.Equal(t, 1, state.builds, "in-place writes are not tracked")

	next := map[string]bool{"loud": true}
	tags.Set(next)
	assert.NotContains(t, tags.Get(), "loud", "Get returns the committed value")
	owner.FlushBuild()
	assert.Equal(t, 2, state.builds)
	assert.Equal(t, next, tags.Get())
}

func TestSlot_SetUnwrapsProxy(t *testing.T) {
	var list *Slot[[]int]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		list = NewSlot(s, "list", []int{1, 2})
	})

	raw, ok := observe.As[[]int](list.Proxy())
	require.True(t, ok)
	list.Set(raw)
	owner.FlushBuild()

	assert.Equal(t, 1, state.builds, "setting a slot to its current value is a no-op")
}

func TestSlot_DuplicateNamePanics(t *testing.T) {
	state := &StateBase{}
	NewSlot(state, "count", 0)

	var cfg *errors.ConfigError
	func() {
		defer func() {
			cfg, _ = recover().(*errors.ConfigError)
		}()
		NewSlot(state, "count", "again")
	}()

	require.NotNil(t, cfg)
	assert.Equal(t, `state "count": is declared twice`, cfg.Error())
}

func TestSlot_OrphanedWriteReportsAndDoesNotRebuild(t *testing.T) {
	handler := captureErrors(t)

	var groups *Slot[map[string]map[string]int]
	state, owner, _ := mountSlots(t, func(s *slotState) {
		groups = NewSlot(s, "groups", map[string]map[string]int{"a": {"x": 0}})
	})

	child := groups.Proxy().At("a")
	groups.Set(map[string]map[string]int{"b": {}})
	owner.FlushBuild()
	require.Equal(t, 2, state.builds)

	child.Set("x", 1)

	require.Len(t, handler.orphans, 1)
	orphan := handler.orphans[0]
	assert.Equal(t, "groups", orphan.Slot)
	assert.Equal(t, "set", orphan.Op)
	assert.Equal(t, []any{"a", "x"}, orphan.Path)
	assert.Equal(t, state.ID(), orphan.Component)
	assert.False(t, state.Store().HasPending())
	assert.False(t, owner.NeedsWork())
}

func TestSlot_WritesAfterUnmountAreDropped(t *testing.T) {
	var count *Slot[int]
	state, owner, element := mountSlots(t, func(s *slotState) {
		count = NewSlot(s, "count", 0)
	})

	element.Unmount()
	count.Set(5)

	assert.False(t, state.Store().HasPending())
	assert.False(t, owner.NeedsWork())
}

func TestSlot_DefaultMode(t *testing.T) {
	defer SetDefaultMode(DefaultMode())
	SetDefaultMode(Shallow)

	s := NewSlot(&StateBase{}, "n", []int{1})

	assert.Equal(t, Shallow, s.Mode())
	assert.Equal(t, "n", s.Name())
}

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Mode{
		"shallow": Shallow,
		" Deep ":  Deep,
		"PURE":    Pure,
	} {
		got, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseMode("frozen")
	var cfg *errors.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "frozen", cfg.Name)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
