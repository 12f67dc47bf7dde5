package resolution

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Terminal cells are assumed to be 9 pixels wide and 18 pixels tall.
const (
	CellWidth  = 9
	CellHeight = 18
)

var (
	// ErrInvalidSize indicates a source size with a non-positive dimension.
	ErrInvalidSize = errors.New("invalid source size")
	// ErrInvalidGeometry indicates a terminal too small to hold any frame.
	ErrInvalidGeometry = errors.New("invalid terminal geometry")
	// ErrEmptyGrid indicates that fitting produced zero columns or rows.
	ErrEmptyGrid = errors.New("empty grid")
)

// Size is a source media size in pixels.
type Size struct {
	Width  int
	Height int
}

// Geometry is a terminal size in character cells.
type Geometry struct {
	Rows int
	Cols int
}

// Grid is the output frame size in character cells.
// One source pixel is rendered per cell.
type Grid struct {
	Cols int
	Rows int
}

// PixelSize returns the pixel size implied by g at the fixed cell aspect
// ratio.
func (g Grid) PixelSize() Size {
	return Size{Width: g.Cols * CellWidth, Height: g.Rows * CellHeight}
}

// Cells returns the number of cells in g.
func (g Grid) Cells() int {
	return g.Cols * g.Rows
}

// String returns g as "COLSxROWS", the format accepted by [ParseGrid].
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// Valid reports whether g has at least one column and one row.
func (g Grid) Valid() bool {
	return g.Cols > 0 && g.Rows > 0
}

// ParseGrid parses a "COLSxROWS" string such as "168x48".
func ParseGrid(s string) (Grid, error) {
	colsStr, rowsStr, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Grid{}, fmt.Errorf("%w: %q: want COLSxROWS", ErrEmptyGrid, s)
	}

	cols, err := strconv.Atoi(colsStr)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %q: %w", ErrEmptyGrid, s, err)
	}

	rows, err := strconv.Atoi(rowsStr)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %q: %w", ErrEmptyGrid, s, err)
	}

	g := Grid{Cols: cols, Rows: rows}
	if !g.Valid() {
		return Grid{}, fmt.Errorf("%w: %q", ErrEmptyGrid, s)
	}

	return g, nil
}

// Fit returns the largest grid that preserves the aspect ratio of src within
// the terminal, keeping one row free for the prompt.
//
// When src is strictly wider than the terminal the width is capped, otherwise
// the height is capped. The derived dimension is floored. Ratios are compared
// by cross-multiplication so that fitting a grid's own [Grid.PixelSize]
// returns the same grid.
func Fit(src Size, term Geometry) (Grid, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return Grid{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, src.Width, src.Height)
	}

	if term.Cols <= 0 || term.Rows <= 1 {
		return Grid{}, fmt.Errorf("%w: %d cols, %d rows", ErrInvalidGeometry, term.Cols, term.Rows)
	}

	termW := int64(term.Cols) * CellWidth
	termH := int64(term.Rows-1) * CellHeight
	srcW := int64(src.Width)
	srcH := int64(src.Height)

	var finalW, finalH int64

	// srcW/srcH > termW/termH
	if srcW*termH > termW*srcH {
		finalW = termW
		finalH = termW * srcH / srcW
	} else {
		finalW = termH * srcW / srcH
		finalH = termH
	}

	g := Grid{
		Cols: int(finalW / CellWidth),
		Rows: int(finalH / CellHeight),
	}
	if !g.Valid() {
		return Grid{}, fmt.Errorf("%w: %dx%d source in %dx%d terminal",
			ErrEmptyGrid, src.Width, src.Height, term.Cols, term.Rows)
	}

	return g, nil
}
