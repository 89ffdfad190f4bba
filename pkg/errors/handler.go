package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives every reported error. It defaults to a
	// LogHandler on slog.Default.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		h = &LogHandler{}
	}
	DefaultHandler = h
}

func getHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// dispatch stamps a zero timestamp and hands err to the current handler.
func dispatch[E any](err *E, stamp *time.Time, deliver func(ErrorHandler, *E)) {
	if err == nil {
		return
	}
	if stamp != nil && stamp.IsZero() {
		*stamp = time.Now()
	}
	if h := getHandler(); h != nil {
		deliver(h, err)
	}
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *TrackError) {
	if err == nil {
		return
	}
	dispatch(err, &err.Timestamp, ErrorHandler.HandleError)
}

// ReportPanic sends a panic error to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	dispatch(err, &err.Timestamp, ErrorHandler.HandlePanic)
}

// ReportBuildError sends a build error to the global handler.
func ReportBuildError(err *BuildError) {
	if err == nil {
		return
	}
	dispatch(err, &err.Timestamp, ErrorHandler.HandleBuildError)
}

// ReportDiagnostic sends an orphaned-write diagnostic to the global handler.
// Diagnostics never interrupt the caller.
func ReportDiagnostic(err *OrphanError) {
	if err == nil {
		return
	}
	dispatch(err, &err.Timestamp, ErrorHandler.HandleDiagnostic)
}

// Recover reports a panic in progress as a PanicError and stops it.
// It must be deferred directly:
//
//	defer errors.Recover("tester.Dispatch")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
	}
}

// RecoverWithCallback is like Recover but also calls the provided callback
// with the panic value after reporting it.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
		if callback != nil {
			callback(r)
		}
	}
}

// CaptureStack returns the call stack of its caller's caller, one
// "function\n\tfile:line" pair per frame.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteByte('\n')
		if !more {
			break
		}
	}
	return sb.String()
}
