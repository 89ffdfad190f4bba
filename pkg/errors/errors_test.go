package errors

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackErrorString(t *testing.T) {
	err := &TrackError{
		Op:   "config.LoadOptional",
		Kind: KindInit,
		Err:  &ConfigError{Point: "state", Name: "mode", Reason: "unknown mode"},
	}
	got := err.Error()
	want := `config.LoadOptional [init]: state "mode": unknown mode`
	if got != want {
		t.Errorf("TrackError.Error() = %q, want %q", got, want)
	}
}

func TestTrackErrorWithSlot(t *testing.T) {
	err := &TrackError{
		Op:   "core.Slot.Set",
		Kind: KindOrphaned,
		Slot: "items",
		Err:  &OrphanError{Slot: "items", Op: "set"},
	}
	want := "slot=items"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
	var orphan *OrphanError
	if !asOrphan(err, &orphan) {
		t.Error("expected Unwrap to expose the OrphanError")
	}
}

func asOrphan(err *TrackError, target **OrphanError) bool {
	o, ok := err.Unwrap().(*OrphanError)
	if ok {
		*target = o
	}
	return ok
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindConfig, "config"},
		{KindOrphaned, "orphaned"},
		{KindInit, "init"},
		{KindPanic, "panic"},
		{KindBuild, "build"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestConfigErrorString(t *testing.T) {
	err := &ConfigError{Point: "mount", Name: "FetchData", Reason: "is not a function"}
	want := `mount "FetchData": is not a function`
	if got := err.Error(); got != want {
		t.Errorf("ConfigError.Error() = %q, want %q", got, want)
	}
}

func TestOrphanErrorString(t *testing.T) {
	err := &OrphanError{Slot: "foo", Path: []any{"items", 0, "Value"}, Op: "set"}
	want := "can not update state foo: set at items[0].Value, cause of type changed or removed"
	if got := err.Error(); got != want {
		t.Errorf("OrphanError.Error() = %q, want %q", got, want)
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []any
		want string
	}{
		{nil, "<root>"},
		{[]any{"a"}, "a"},
		{[]any{0, "b"}, "[0].b"},
		{[]any{"a", "b", 12}, "a.b[12]"},
		{[]any{"m", true}, "m[true]"},
		{[]any{"rows", 105, -1}, "rows[105][-1]"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Errorf("FormatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "lifecycle.Unmount",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic in lifecycle.Unmount: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *TrackError
	handler := &testHandler{
		onError: func(err *TrackError) {
			capturedErr = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&TrackError{
		Op:   "test.op",
		Kind: KindInit,
		Err:  &ConfigError{Point: "state", Name: "x", Reason: "bad"},
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportDiagnostic(t *testing.T) {
	var captured []*OrphanError
	handler := &testHandler{
		onDiagnostic: func(err *OrphanError) {
			captured = append(captured, err)
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	ReportDiagnostic(nil)
	ReportDiagnostic(&OrphanError{Slot: "foo", Op: "set"})

	require.Len(t, captured, 1)
	assert.Equal(t, "foo", captured[0].Slot)
	assert.False(t, captured[0].Timestamp.IsZero())
}

func TestRecover(t *testing.T) {
	var capturedPanic *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if capturedPanic.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "intentional test panic")
	}
	if capturedPanic.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", capturedPanic.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback value = %v, want 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if DefaultHandler == nil {
		t.Error("SetHandler(nil) should set default LogHandler, not nil")
	}
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestBuildErrorString(t *testing.T) {
	err := &BuildError{
		Widget:    "*testbed.Counter",
		Element:   "*core.StatefulElement",
		Recovered: "nil pointer dereference",
		Timestamp: time.Now(),
	}
	want := "panic in *testbed.Counter.Build(): nil pointer dereference"
	if got := err.Error(); got != want {
		t.Errorf("BuildError.Error() = %q, want %q", got, want)
	}

	err3 := &BuildError{
		Widget:  "*testbed.Counter",
		Element: "*core.StatefulElement",
	}
	want3 := "unknown error in *testbed.Counter.Build()"
	if got3 := err3.Error(); got3 != want3 {
		t.Errorf("BuildError.Error() = %q, want %q", got3, want3)
	}
}

func TestLogHandler_Diagnostic(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	h.HandleDiagnostic(&OrphanError{Slot: "cache", Path: []any{"entries", 2}, Op: "set", Component: "abc"})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="orphaned state write"`)
	assert.Contains(t, out, "slot=cache")
	assert.Contains(t, out, "path=entries[2]")
	assert.Contains(t, out, "component=abc")
}

func TestLogHandler_VerboseStack(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	h.HandlePanic(&PanicError{Op: "op", Value: "boom", StackTrace: "frame"})
	assert.NotContains(t, buf.String(), "stack=")

	buf.Reset()
	h.Verbose = true
	h.HandlePanic(&PanicError{Op: "op", Value: "boom", StackTrace: "frame"})
	assert.Contains(t, buf.String(), "stack=frame")
}

type testHandler struct {
	onError      func(*TrackError)
	onPanic      func(*PanicError)
	onBuildError func(*BuildError)
	onDiagnostic func(*OrphanError)
}

func (h *testHandler) HandleError(err *TrackError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleBuildError(err *BuildError) {
	if h.onBuildError != nil {
		h.onBuildError(err)
	}
}

func (h *testHandler) HandleDiagnostic(err *OrphanError) {
	if h.onDiagnostic != nil {
		h.onDiagnostic(err)
	}
}
