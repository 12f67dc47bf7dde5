package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"go.jacobcolvin.com/termplay/resolution"
)

const (
	// Boundary is the escape sequence that homes the cursor. Every encoded
	// frame begins with it, which makes it the frame-boundary marker of an
	// encoded stream.
	Boundary = "\x1b[H"
	// RowEnd clears formatting and ends a row.
	RowEnd = "\x1b[0m\n"

	// DefaultGlyphs is the reduced-mode glyph ramp, ordered dark to bright.
	DefaultGlyphs = " .,:;i1tfLCG08@"
)

var (
	// ErrGridMismatch indicates an image whose size differs from the
	// encoder's grid.
	ErrGridMismatch = errors.New("image does not match grid")
	// ErrInvalidGrid indicates a grid with zero columns or rows.
	ErrInvalidGrid = errors.New("invalid grid")
	// ErrInvalidGlyphs indicates an empty glyph ramp.
	ErrInvalidGlyphs = errors.New("invalid glyphs")
)

// Encoder converts images into encoded frames of a fixed [resolution.Grid].
//
// The grid is fixed when the Encoder is created so every frame of a stream
// has the same number of rows and columns.
//
// Create instances with [NewEncoder].
type Encoder struct {
	glyphs []rune
	grid   resolution.Grid
	mode   Mode
}

// Option configures an [Encoder].
type Option func(*Encoder)

// WithMode sets the encoding mode. The default is [ModeTrueColor].
func WithMode(m Mode) Option {
	return func(e *Encoder) {
		e.mode = m
	}
}

// WithGlyphs sets the reduced-mode glyph ramp, ordered dark to bright.
// The default is [DefaultGlyphs].
func WithGlyphs(glyphs string) Option {
	return func(e *Encoder) {
		e.glyphs = []rune(glyphs)
	}
}

// NewEncoder creates an [Encoder] for grid.
func NewEncoder(grid resolution.Grid, opts ...Option) (*Encoder, error) {
	if !grid.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGrid, grid)
	}

	e := &Encoder{
		grid:   grid,
		mode:   ModeTrueColor,
		glyphs: []rune(DefaultGlyphs),
	}
	for _, opt := range opts {
		opt(e)
	}

	if len(e.glyphs) == 0 {
		return nil, ErrInvalidGlyphs
	}

	return e, nil
}

// Grid returns the encoder's grid.
func (e *Encoder) Grid() resolution.Grid {
	return e.grid
}

// Mode returns the encoder's mode.
func (e *Encoder) Mode() Mode {
	return e.mode
}

// Encode renders img as one frame: [Boundary], then for each row one escape
// and glyph per column followed by [RowEnd].
//
// The image must be exactly the size of the grid; use [Encoder.Fit] to
// resize arbitrary images first.
func (e *Encoder) Encode(img image.Image) (string, error) {
	b := img.Bounds()
	if b.Dx() != e.grid.Cols || b.Dy() != e.grid.Rows {
		return "", fmt.Errorf("%w: got %dx%d, want %s", ErrGridMismatch, b.Dx(), b.Dy(), e.grid)
	}

	var sb strings.Builder

	// Worst case per cell is "\x1b[48;2;255;255;255m" plus a 4 byte glyph.
	sb.Grow(len(Boundary) + e.grid.Rows*(e.grid.Cols*24+len(RowEnd)))
	sb.WriteString(Boundary)

	rgba, _ := img.(*image.RGBA)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var c color.RGBA
			if rgba != nil {
				c = rgba.RGBAAt(x, y)
			} else {
				c, _ = color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			}

			e.writeCell(&sb, c.R, c.G, c.B)
		}

		sb.WriteString(RowEnd)
	}

	return sb.String(), nil
}

func (e *Encoder) writeCell(sb *strings.Builder, r, g, b uint8) {
	if e.mode == ModeReduced {
		glyph := e.glyphs[GlyphIndex(r, g, b, len(e.glyphs))]
		fmt.Fprintf(sb, "\x1b[38;2;%d;%d;%dm%c", r, g, b, glyph)

		return
	}

	fmt.Fprintf(sb, "\x1b[48;2;%d;%d;%dm ", r, g, b)
}

// Fit scales img to exactly one pixel per grid cell.
// The grid already carries the source aspect ratio, so no padding is added.
func (e *Encoder) Fit(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, e.grid.Cols, e.grid.Rows))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	return dst
}

// GlyphIndex maps a pixel to an index into a glyph ramp of n glyphs.
//
// The channel sum is normalized to [0,1] and remapped with
// log2(1 + 15*intensity) / 4, which favors the bright end of the ramp. The
// result is floored and clamped to n-1. A sum of 0 maps to 0 and a sum of
// 765 maps to n-1.
func GlyphIndex(r, g, b uint8, n int) int {
	if n <= 1 {
		return 0
	}

	intensity := float64(int(r)+int(g)+int(b)) / 765.0
	scaled := math.Log2(intensity*15+1) / 4.0

	return min(int(scaled*float64(n)), n-1)
}
