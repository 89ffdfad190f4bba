package core

import (
	"sync"

	"github.com/go-drift/tracked/pkg/errors"
)

// ErrorWidgetBuilder returns the widget mounted in place of a failed
// build. Returning nil mounts an empty placeholder.
type ErrorWidgetBuilder func(err *errors.BuildError) Widget

var (
	errorWidgetBuilder ErrorWidgetBuilder = DefaultErrorWidgetBuilder
	errorBuilderMu     sync.RWMutex
)

// SetErrorWidgetBuilder configures the global error widget builder.
// Pass nil to restore the default builder.
func SetErrorWidgetBuilder(builder ErrorWidgetBuilder) {
	errorBuilderMu.Lock()
	defer errorBuilderMu.Unlock()
	if builder == nil {
		errorWidgetBuilder = DefaultErrorWidgetBuilder
	} else {
		errorWidgetBuilder = builder
	}
}

// GetErrorWidgetBuilder returns the current error widget builder.
func GetErrorWidgetBuilder() ErrorWidgetBuilder {
	errorBuilderMu.RLock()
	defer errorBuilderMu.RUnlock()
	return errorWidgetBuilder
}

// DefaultErrorWidgetBuilder returns nil, so failed builds render the
// built-in placeholder, which has no children.
func DefaultErrorWidgetBuilder(err *errors.BuildError) Widget {
	return nil
}

// ErrorBoundaryCapture is implemented by elements that take over build
// errors from their descendants. Only the nearest boundary is asked. When
// it returns false the failed build falls back to the ErrorWidgetBuilder.
type ErrorBoundaryCapture interface {
	CaptureError(err *errors.BuildError) bool
}
