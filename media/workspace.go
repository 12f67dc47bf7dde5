package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is a temporary directory for the intermediate files of a
// session.
//
// Create instances with [NewWorkspace].
type Workspace struct {
	dir  string
	keep bool
	subs int
}

// NewWorkspace creates a temporary directory. If keep is true it is left in
// place by [Workspace.Close].
func NewWorkspace(keep bool) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "termplay-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	return &Workspace{dir: dir, keep: keep}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Kept reports whether the workspace survives [Workspace.Close].
func (w *Workspace) Kept() bool {
	return w.keep
}

// Keep marks the workspace to survive [Workspace.Close].
func (w *Workspace) Keep() {
	w.keep = true
}

// Sub creates a numbered subdirectory for the movie at path, named after its
// base name without extension. Movies with the same name get separate
// directories.
func (w *Workspace) Sub(path string) (string, error) {
	w.subs++

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Join(w.dir, fmt.Sprintf("%02d-%s", w.subs, name))

	err := os.Mkdir(dir, 0o750)
	if err != nil {
		return "", fmt.Errorf("creating workspace directory: %w", err)
	}

	return dir, nil
}

// Close removes the workspace unless it is kept.
func (w *Workspace) Close() error {
	if w.keep {
		return nil
	}

	err := os.RemoveAll(w.dir)
	if err != nil {
		return fmt.Errorf("removing workspace: %w", err)
	}

	return nil
}
