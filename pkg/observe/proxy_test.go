package observe

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/tracked/pkg/errors"
)

type Item struct {
	Value int
}

type Doc struct {
	Title string
	Items []*Item
	Meta  map[string]any
	hidden int
}

type counter struct {
	n int
}

func (c *counter) signal() { c.n++ }

// diagnostics installs a handler that records orphaned writes.
func diagnostics(t *testing.T) *[]*errors.OrphanError {
	t.Helper()
	var got []*errors.OrphanError
	errors.SetHandler(&recordingHandler{onDiagnostic: func(err *errors.OrphanError) {
		got = append(got, err)
	}})
	t.Cleanup(func() { errors.SetHandler(nil) })
	return &got
}

type recordingHandler struct {
	errors.LogHandler
	onDiagnostic func(*errors.OrphanError)
}

func (h *recordingHandler) HandleDiagnostic(err *errors.OrphanError) {
	h.onDiagnostic(err)
}

// cell returns an addressable holder for v and a resolver reading it.
func cell[T any](v T) (reflect.Value, Resolver) {
	c := reflect.New(reflect.TypeFor[T]()).Elem()
	c.Set(reflect.ValueOf(&v).Elem())
	return c, func() (reflect.Value, bool) { return c, true }
}

func TestWrap_PrimitivesPassThrough(t *testing.T) {
	var c counter
	tests := []any{1, "text", 2.5, true, nil, func() {}}
	for _, v := range tests {
		got := Wrap(v, Static(v), c.signal)
		if _, ok := got.(*Proxy); ok {
			t.Errorf("Wrap(%T) returned a proxy", v)
		}
	}
	assert.Equal(t, 1, Wrap(1, Static(1), c.signal))
}

func TestWrap_StructWithoutExportedFieldsPassesThrough(t *testing.T) {
	v := &counter{}
	_, ok := Wrap(v, Static(v), nil).(*Proxy)
	assert.False(t, ok)
}

func TestProxy_NestedWriteSignalsOnce(t *testing.T) {
	var c counter
	doc := &Doc{Title: "a", Items: []*Item{{Value: 1}}, Meta: map[string]any{"tags": []any{"x"}}}
	p := Wrap(doc, Static(doc), c.signal).(*Proxy)

	p.At("Items").At(0).Update("Value", func(v any) any { return v.(int) + 1 })

	assert.Equal(t, 2, doc.Items[0].Value)
	assert.Equal(t, 1, c.n)
	assert.Equal(t, 2, p.Lookup("Items", 0, "Value"))

	p.Set("Title", "b")
	assert.Equal(t, "b", doc.Title)
	assert.Equal(t, 2, c.n)

	p.At("Meta").At("tags").Set(0, "y")
	assert.Equal(t, []any{"y"}, doc.Meta["tags"])
	assert.Equal(t, 3, c.n)
}

func TestProxy_SameValueIsNoop(t *testing.T) {
	var c counter
	shared := &Item{Value: 3}
	doc := &Doc{Title: "a", Items: []*Item{shared}}
	p := Wrap(doc, Static(doc), c.signal).(*Proxy)

	p.Set("Title", "a")
	p.At("Items").Set(0, shared)
	p.At("Items").At(0).Set("Value", 3)

	assert.Equal(t, 0, c.n)
}

func TestProxy_RewritingNaNIsNoop(t *testing.T) {
	var c counter
	reading := &struct{ Celsius float64 }{Celsius: math.NaN()}
	p := Wrap(reading, Static(reading), c.signal).(*Proxy)

	p.Set("Celsius", math.NaN())
	assert.Equal(t, 0, c.n)

	p.Set("Celsius", 21.5)
	assert.Equal(t, 1, c.n)
}

func TestProxy_ReadsAreIdempotent(t *testing.T) {
	var c counter
	doc := &Doc{Items: []*Item{{Value: 1}}}
	first := Wrap(doc, Static(doc), c.signal).(*Proxy)
	second := Wrap(doc, Static(doc), c.signal).(*Proxy)

	assert.Equal(t, first.Lookup("Items", 0, "Value"), second.Lookup("Items", 0, "Value"))
	assert.Equal(t, first.At("Items").Len(), second.At("Items").Len())
	assert.Equal(t, keysOf(first), keysOf(second))
	assert.Equal(t, 0, c.n)
}

func keysOf(p *Proxy) []any {
	var out []any
	for k := range p.Keys() {
		out = append(out, k)
	}
	return out
}

func TestProxy_UnexportedFieldsAreInvisible(t *testing.T) {
	doc := &Doc{hidden: 7}
	p := Wrap(doc, Static(doc), nil).(*Proxy)
	assert.Nil(t, p.Get("hidden"))
	assert.Equal(t, []any{"Title", "Items", "Meta"}, keysOf(p))
	assert.Panics(t, func() { p.Set("hidden", 1) })
}

func TestProxy_WritesFollowReplacedBacking(t *testing.T) {
	var c counter
	state := map[string]any{"foo": map[string]any{"bar": 1}}
	resolve := func() (reflect.Value, bool) {
		v := reflect.ValueOf(state["foo"])
		return v, v.IsValid()
	}
	original := state["foo"].(map[string]any)
	p := Wrap(original, resolve, c.signal).(*Proxy)

	replacement := map[string]any{"bar": 10}
	state["foo"] = replacement
	p.Set("bar", 11)

	assert.Equal(t, 11, replacement["bar"])
	assert.Equal(t, 1, original["bar"])
	assert.Equal(t, 1, c.n)
	assert.Equal(t, 11, p.Get("bar"))
}

func TestProxy_OrphanedWriteStaysLocal(t *testing.T) {
	got := diagnostics(t)
	var c counter
	state := map[string]any{"foo": map[string]any{"bar": 1}}
	resolve := func() (reflect.Value, bool) {
		v := reflect.ValueOf(state["foo"])
		return v, v.IsValid()
	}
	original := state["foo"].(map[string]any)
	p := Wrap(original, resolve, c.signal).(*Proxy)

	state["foo"] = 42
	require.True(t, p.Stale())
	p.Set("bar", 5)

	assert.Equal(t, 0, c.n)
	assert.Equal(t, 5, original["bar"])
	require.Len(t, *got, 1)
	assert.Equal(t, "set", (*got)[0].Op)
	assert.Equal(t, []any{"bar"}, (*got)[0].Path)
}

func TestProxy_NestedDeadEnd(t *testing.T) {
	got := diagnostics(t)
	var c counter
	root := map[string]any{"inner": map[string]any{"x": 0}}
	p := Wrap(root, Static(root), c.signal).(*Proxy)
	inner := p.At("inner")
	require.NotNil(t, inner)

	delete(root, "inner")
	inner.Set("x", 1)

	assert.Equal(t, 0, c.n)
	assert.Len(t, *got, 1)
	assert.Equal(t, []any{"inner", "x"}, (*got)[0].Path)
}

func TestProxy_ValueTypedElementsWriteBack(t *testing.T) {
	var c counter
	m := map[string]Item{"a": {Value: 1}}
	p := Wrap(m, Static(m), c.signal).(*Proxy)

	p.At("a").Set("Value", 5)

	assert.Equal(t, 5, m["a"].Value)
	assert.Equal(t, 1, c.n)
}

func TestProxy_ArrayInsideStructValue(t *testing.T) {
	type grid struct {
		Cells [3]int
	}
	var c counter
	holder, resolve := cell(grid{})
	p := Root{Resolve: resolve, Signal: c.signal}.Wrap(holder).(*Proxy)

	p.At("Cells").Set(1, 9)

	assert.Equal(t, [3]int{0, 9, 0}, holder.Interface().(grid).Cells)
	assert.Equal(t, 1, c.n)
}

func TestProxy_AppendRootSlice(t *testing.T) {
	var c counter
	holder, resolve := cell([]int{})
	p := Root{Resolve: resolve, Signal: c.signal}.Wrap(holder).(*Proxy)

	p.Append(1)

	assert.Equal(t, []int{1}, holder.Interface())
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 1, c.n)

	p.Append()
	assert.Equal(t, 1, c.n)
}

func TestProxy_AppendNestedSliceInMap(t *testing.T) {
	var c counter
	m := map[string][]int{"xs": nil}
	p := Wrap(m, Static(m), c.signal).(*Proxy)

	p.At("xs").Append(3, 4)

	assert.Equal(t, []int{3, 4}, m["xs"])
	assert.Equal(t, 1, c.n)
}

func TestProxy_AppendConvertsNumbers(t *testing.T) {
	holder, resolve := cell([]float64(nil))
	p := Root{Resolve: resolve}.Wrap(holder).(*Proxy)
	p.Append(1)
	assert.Equal(t, []float64{1}, holder.Interface())
	assert.Panics(t, func() { p.Append("one") })
}

func TestProxy_DeleteBuiltinMap(t *testing.T) {
	var c counter
	m := map[string]int{"a": 1}
	p := Wrap(m, Static(m), c.signal).(*Proxy)

	assert.False(t, p.Delete("missing"))
	assert.Equal(t, 0, c.n)
	assert.True(t, p.Delete("a"))
	assert.Equal(t, 1, c.n)
	assert.Empty(t, m)
}

func TestProxy_SetOnNilMapStoresNewMap(t *testing.T) {
	var c counter
	type bag struct {
		Tags map[string]bool
	}
	holder, resolve := cell(bag{})
	p := Root{Resolve: resolve, Signal: c.signal}.Wrap(holder).(*Proxy)

	p.At("Tags").Set("go", true)

	assert.Equal(t, map[string]bool{"go": true}, holder.Interface().(bag).Tags)
	assert.Equal(t, 1, c.n)
}

func TestProxy_AllSortedMapKeys(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	p := Wrap(m, Static(m), nil).(*Proxy)

	var keys []any
	var vals []any
	for k, v := range p.All() {
		keys = append(keys, k)
		vals = append(vals, v)
	}
	assert.Equal(t, []any{"a", "b", "c"}, keys)
	assert.Equal(t, []any{1, 2, 3}, vals)
}

func TestProxy_SetTypeMismatchPanics(t *testing.T) {
	doc := &Doc{}
	p := Wrap(doc, Static(doc), nil).(*Proxy)
	assert.Panics(t, func() { p.Set("Title", 3) })
	assert.Panics(t, func() { p.Set("Missing", 3) })
	assert.Panics(t, func() { p.Len() })
}

func TestProxy_SetOutOfRangePanics(t *testing.T) {
	xs := []int{1}
	p := Wrap(xs, Static(xs), nil).(*Proxy)
	assert.Nil(t, p.Get(4))
	assert.Panics(t, func() { p.Set(4, 1) })
}

func TestProxy_AssignProxyUnwraps(t *testing.T) {
	var c counter
	doc := &Doc{Items: []*Item{{Value: 1}, {Value: 2}}}
	p := Wrap(doc, Static(doc), c.signal).(*Proxy)

	items := p.At("Items")
	items.Set(0, items.Get(1))

	assert.Same(t, doc.Items[0], doc.Items[1])
	assert.Equal(t, 1, c.n)
}

func TestSameRef(t *testing.T) {
	a := map[string]int{"x": 1}
	b := map[string]int{"x": 1}
	assert.True(t, SameRef(a, a))
	assert.False(t, SameRef(a, b))
	assert.True(t, SameRef(1, 1))
	assert.True(t, SameRef(Item{1}, Item{1}))

	xs := []int{1, 2}
	assert.True(t, SameRef(xs, xs))
	assert.False(t, SameRef(xs, xs[:1]))

	p := Wrap(a, Static(a), nil)
	assert.True(t, SameRef(p, a))
}

func TestShallowCopy(t *testing.T) {
	inner := &Item{Value: 1}
	m := map[string]*Item{"a": inner}
	cp := ShallowCopy(m).(map[string]*Item)
	assert.False(t, SameRef(m, cp))
	assert.Same(t, inner, cp["a"])

	xs := []*Item{inner}
	xcp := ShallowCopy(xs).([]*Item)
	assert.False(t, SameRef(xs, xcp))
	assert.Same(t, inner, xcp[0])

	pcp := ShallowCopy(inner).(*Item)
	assert.NotSame(t, inner, pcp)
	assert.Equal(t, *inner, *pcp)

	s := NewSet(1, 2)
	scp := ShallowCopy(s).(*Set[int])
	assert.NotSame(t, s, scp)
	assert.Equal(t, []int{1, 2}, scp.Values())

	assert.Equal(t, 3, ShallowCopy(3))
	assert.Nil(t, ShallowCopy(nil))
}

func TestAs(t *testing.T) {
	doc := &Doc{Items: []*Item{{Value: 4}}}
	p := Wrap(doc, Static(doc), nil).(*Proxy)

	item, ok := As[*Item](p.Lookup("Items", 0))
	require.True(t, ok)
	assert.Same(t, doc.Items[0], item)

	v, ok := As[int](p.Lookup("Items", 0, "Value"))
	require.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = As[string](p.Lookup("Items", 0, "Value"))
	assert.False(t, ok)
}
