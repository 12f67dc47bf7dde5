package playback

import (
	"fmt"
	"io"

	"go.jacobcolvin.com/termplay/resolution"
)

const (
	clearScreen = "\x1b[2J\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// ClearScreen erases the terminal and homes the cursor.
func ClearScreen(w io.Writer) error {
	_, err := io.WriteString(w, clearScreen)

	return err
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) error {
	_, err := io.WriteString(w, hideCursor)

	return err
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) error {
	_, err := io.WriteString(w, showCursor)

	return err
}

// ResizeTerminal asks the terminal to resize its window to hold grid, with
// one spare row for the cursor. Terminals that do not support window
// manipulation ignore the request.
func ResizeTerminal(w io.Writer, grid resolution.Grid) error {
	_, err := fmt.Fprintf(w, "\x1b[8;%d;%dt", grid.Rows+1, grid.Cols)

	return err
}
