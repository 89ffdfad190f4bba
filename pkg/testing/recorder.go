package testing

import (
	"log/slog"
	"sync"

	"github.com/go-drift/tracked/pkg/errors"
)

// Recorder is an errors.ErrorHandler that keeps every report for later
// assertions. Reports are also passed to the embedded LogHandler, which
// discards them unless Logger is set.
type Recorder struct {
	errors.LogHandler

	mu          sync.Mutex
	tracks      []*errors.TrackError
	panics      []*errors.PanicError
	buildErrors []*errors.BuildError
	orphans     []*errors.OrphanError
}

// NewRecorder returns a Recorder with a discarding logger.
func NewRecorder() *Recorder {
	return &Recorder{LogHandler: errors.LogHandler{Logger: slog.New(slog.DiscardHandler)}}
}

func (r *Recorder) HandleError(err *errors.TrackError) {
	r.mu.Lock()
	r.tracks = append(r.tracks, err)
	r.mu.Unlock()
	r.LogHandler.HandleError(err)
}

func (r *Recorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	r.panics = append(r.panics, err)
	r.mu.Unlock()
	r.LogHandler.HandlePanic(err)
}

func (r *Recorder) HandleBuildError(err *errors.BuildError) {
	r.mu.Lock()
	r.buildErrors = append(r.buildErrors, err)
	r.mu.Unlock()
	r.LogHandler.HandleBuildError(err)
}

func (r *Recorder) HandleDiagnostic(err *errors.OrphanError) {
	r.mu.Lock()
	r.orphans = append(r.orphans, err)
	r.mu.Unlock()
	r.LogHandler.HandleDiagnostic(err)
}

// Errors returns the recorded TrackErrors.
func (r *Recorder) Errors() []*errors.TrackError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.TrackError(nil), r.tracks...)
}

// Panics returns the recorded panics.
func (r *Recorder) Panics() []*errors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.PanicError(nil), r.panics...)
}

// BuildErrors returns the recorded build failures.
func (r *Recorder) BuildErrors() []*errors.BuildError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.BuildError(nil), r.buildErrors...)
}

// Orphans returns the recorded orphaned-write diagnostics.
func (r *Recorder) Orphans() []*errors.OrphanError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.OrphanError(nil), r.orphans...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks, r.panics, r.buildErrors, r.orphans = nil, nil, nil, nil
}

func (r *Recorder) buildErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buildErrors)
}
