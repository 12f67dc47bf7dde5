// Package resolution computes the output grid for rendering a movie in a
// terminal.
//
// Each terminal cell is treated as a 9x18 pixel box, so a cell is twice as
// tall as it is wide. [Fit] maps a source [Size] into a terminal [Geometry]
// and returns the [Grid] of cells that best preserves the source aspect ratio,
// reserving the last terminal row for the prompt.
//
//	grid, err := resolution.Fit(
//	    resolution.Size{Width: 1920, Height: 1080},
//	    resolution.Geometry{Rows: 25, Cols: 80},
//	)
//	// grid == resolution.Grid{Cols: 80, Rows: 22}
package resolution
