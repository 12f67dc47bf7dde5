package media

import (
	"errors"
	"fmt"

	"golang.org/x/term"

	"go.jacobcolvin.com/termplay/resolution"
)

// ErrNotTerminal indicates a file descriptor that is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// TerminalGeometry returns the size in cells of the terminal at fd.
func TerminalGeometry(fd int) (resolution.Geometry, error) {
	if !term.IsTerminal(fd) {
		return resolution.Geometry{}, ErrNotTerminal
	}

	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return resolution.Geometry{}, fmt.Errorf("reading terminal size: %w", err)
	}

	return resolution.Geometry{Rows: rows, Cols: cols}, nil
}
