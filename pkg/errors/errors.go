// Package errors provides structured error handling for tracked state and
// lifecycle hooks.
//
// Three kinds of failure exist. A ConfigError is fatal and raised when a
// lifecycle attachment or slot declaration is invalid. An OrphanError is a
// diagnostic: a write reached a proxy whose backing value is no longer
// reachable from its slot, so the write stayed local. Build panics are
// recovered by the element tree and reported as BuildError.
package errors

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates an invalid declaration.
	KindConfig
	// KindOrphaned indicates a write through a stale proxy.
	KindOrphaned
	// KindInit indicates an initialization error.
	KindInit
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindBuild indicates a build-time widget error.
	KindBuild
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindOrphaned:
		return "orphaned"
	case KindInit:
		return "init"
	case KindPanic:
		return "panic"
	case KindBuild:
		return "build"
	default:
		return "unknown"
	}
}

// TrackError represents a structured error raised by this module.
type TrackError struct {
	// Op is the operation that failed (e.g., "config.LoadOptional").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Slot is the state slot name, if applicable.
	Slot string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *TrackError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("%s [%s] slot=%s: %v", e.Op, e.Kind, e.Slot, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid declaration: a lifecycle attachment whose
// target is not callable, or a slot name declared twice on one state.
type ConfigError struct {
	// Point is the lifecycle point or "state" for slot declarations.
	Point string
	// Name identifies the offending attachment or slot.
	Name string
	// Reason describes what is wrong.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Point, e.Name, e.Reason)
}

// OrphanError describes a write that could not reach its slot because the
// backing value was replaced by an incompatible value or removed.
type OrphanError struct {
	// Slot is the owning slot name.
	Slot string
	// Path is the chain of keys from the slot value to the written location.
	Path []any
	// Op is the proxy operation ("set", "append", "delete").
	Op string
	// Component identifies the state instance owning the slot.
	Component string
	// Timestamp is when the write happened.
	Timestamp time.Time
}

func (e *OrphanError) Error() string {
	return fmt.Sprintf("can not update state %s: %s at %s, cause of type changed or removed", e.Slot, e.Op, FormatPath(e.Path))
}

// FormatPath renders a key path as dotted/indexed notation.
func FormatPath(path []any) string {
	if len(path) == 0 {
		return "<root>"
	}
	var sb strings.Builder
	for i, key := range path {
		switch k := key.(type) {
		case int:
			sb.WriteString("[")
			sb.WriteString(strconv.Itoa(k))
			sb.WriteString("]")
		case string:
			if i > 0 {
				sb.WriteString(".")
			}
			sb.WriteString(k)
		default:
			fmt.Fprintf(&sb, "[%v]", k)
		}
	}
	return sb.String()
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "lifecycle.Unmount").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BuildError represents a failure during widget build.
type BuildError struct {
	// Widget is the type name of the widget that failed.
	Widget string
	// Element is the element type (StatelessElement, StatefulElement).
	Element string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Build(): %v", e.Widget, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Build(): %v", e.Widget, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Build()", e.Widget)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the module.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *TrackError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a widget build fails.
	HandleBuildError(err *BuildError)
	// HandleDiagnostic is called for non-fatal orphaned writes.
	HandleDiagnostic(err *OrphanError)
}
