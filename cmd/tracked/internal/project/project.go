// Package project locates the Go module a command runs in and reads what
// it declares about tracked.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	trackerrors "github.com/go-drift/tracked/pkg/errors"
)

// TrackedPath is the module path of this library.
const TrackedPath = "github.com/go-drift/tracked"

// Module summarizes a go.mod file.
type Module struct {
	// Root is the directory holding go.mod.
	Root string
	// Path is the module path.
	Path string
	// GoVersion is the go directive, empty when absent.
	GoVersion string
	// Tracked is the required version of this library, empty when the
	// module does not require it.
	Tracked string
	// Replacement is the target of a replace directive for this library.
	Replacement string
}

// FindRoot walks up from start to the nearest directory containing go.mod.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &trackerrors.TrackError{Op: "project.FindRoot", Kind: trackerrors.KindInit, Err: fmt.Errorf("not in a Go module (no go.mod found above %s)", start)}
		}
		dir = parent
	}
}

// Load parses dir/go.mod.
func Load(dir string) (*Module, error) {
	path := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &trackerrors.TrackError{Op: "project.Load", Kind: trackerrors.KindInit, Err: fmt.Errorf("failed to read go.mod: %w", err)}
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, &trackerrors.TrackError{Op: "project.Load", Kind: trackerrors.KindInit, Err: err}
	}
	if f.Module == nil {
		return nil, &trackerrors.TrackError{Op: "project.Load", Kind: trackerrors.KindInit, Err: fmt.Errorf("%s has no module directive", path)}
	}
	if err := module.CheckImportPath(f.Module.Mod.Path); err != nil {
		return nil, &trackerrors.TrackError{Op: "project.Load", Kind: trackerrors.KindInit, Err: err}
	}

	m := &Module{Root: dir, Path: f.Module.Mod.Path}
	if f.Go != nil {
		m.GoVersion = f.Go.Version
	}
	for _, r := range f.Require {
		if r.Mod.Path == TrackedPath {
			m.Tracked = r.Mod.Version
		}
	}
	for _, r := range f.Replace {
		if r.Old.Path == TrackedPath {
			m.Replacement = r.New.Path
			if r.New.Version != "" {
				m.Replacement += "@" + r.New.Version
			}
		}
	}
	return m, nil
}

// Uses reports whether the module requires this library or is this
// library.
func (m *Module) Uses() bool {
	return m.Tracked != "" || m.Path == TrackedPath
}
