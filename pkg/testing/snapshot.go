package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/go-drift/tracked/pkg/core"
)

// Snapshot captures the element tree and the committed state of every
// stateful element in it.
type Snapshot struct {
	Tree *Node `json:"tree"`
}

// Node represents an element in the serialized tree.
type Node struct {
	ID       string         `json:"id"`
	Widget   string         `json:"widget"`
	State    map[string]any `json:"state,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// CaptureSnapshot captures the current element tree.
func (t *WidgetTester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	if t.root != nil {
		snap.Tree = captureNode(t.root, &typeCounter{})
	}
	return snap
}

// JSON returns the indented JSON encoding of the snapshot.
func (s *Snapshot) JSON() []byte {
	data, err := marshalSnapshot(s)
	if err != nil {
		// captureNode only stores JSON-safe values.
		panic(fmt.Sprintf("snapshot: %v", err))
	}
	return data
}

// Match compares the snapshot against testdata/<name>.snapshot.json. Run
// the test with -update to rewrite the file.
func (s *Snapshot) Match(t *testing.T, name string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".snapshot.json"),
	)
	g.Assert(t, name, s.JSON())
}

// Diff returns a line diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, b := s.JSON(), other.JSON()
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// --- Internal ---

// typeCounter assigns stable IDs like "Counter#0", "Counter#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func captureNode(e core.Element, counter *typeCounter) *Node {
	node := &Node{
		ID:     counter.next(widgetTypeName(e.Widget())),
		Widget: fmt.Sprintf("%T", e.Widget()),
	}

	if holder, ok := stateOf(e).(interface{ Store() *core.Store }); ok {
		if committed := holder.Store().Read(); len(committed) > 0 {
			node.State = make(map[string]any, len(committed))
			for name, v := range committed {
				node.State[name] = snapshotValue(v)
			}
		}
	}

	e.VisitChildren(func(child core.Element) bool {
		node.Children = append(node.Children, captureNode(child, counter))
		return true
	})
	return node
}

func widgetTypeName(w core.Widget) string {
	t := reflect.TypeOf(w)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	// Generic instantiations carry their type arguments in the name.
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// snapshotValue keeps values that encode as JSON and formats the rest.
func snapshotValue(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
