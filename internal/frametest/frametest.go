// Package frametest provides images, streams, clocks, and writers for tests.
package frametest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Image returns a cols x rows image colored by fn.
func Image(cols, rows int, fn func(x, y int) color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	for y := range rows {
		for x := range cols {
			img.SetRGBA(x, y, fn(x, y))
		}
	}

	return img
}

// Solid returns a cols x rows image filled with c.
func Solid(cols, rows int, c color.RGBA) *image.RGBA {
	return Image(cols, rows, func(int, int) color.RGBA { return c })
}

// Gray returns an opaque gray with all channels set to v.
func Gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

// WritePNGs writes one solid PNG per color into dir, named so that lexical
// order matches the order of colors. It returns the file paths.
func WritePNGs(dir string, cols, rows int, colors ...color.RGBA) ([]string, error) {
	paths := make([]string, 0, len(colors))

	for i, c := range colors {
		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i+1))

		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}

		err = png.Encode(f, Solid(cols, rows, c))
		if err != nil {
			_ = f.Close()

			return nil, err
		}

		err = f.Close()
		if err != nil {
			return nil, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Stream builds an encoded true-color stream of n frames of cols x rows
// cells. Frame i is filled with gray level i.
func Stream(n, cols, rows int) string {
	var sb strings.Builder

	for i := range n {
		sb.WriteString("\x1b[H")

		for range rows {
			for range cols {
				fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm ", i, i, i)
			}

			sb.WriteString("\x1b[0m\n")
		}
	}

	return sb.String()
}

// Clock is a manual clock. Sleep advances the clock instead of blocking.
// Safe for concurrent use.
type Clock struct {
	now   time.Time
	slept []time.Duration
	mu    sync.Mutex
}

// NewClock returns a [Clock] starting at an arbitrary fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// Sleep records d and advances the clock by d. It returns the context error
// without advancing if ctx is already done.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)

	return nil
}

// Slept returns every duration passed to Sleep.
func (c *Clock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Duration, len(c.slept))
	copy(out, c.slept)

	return out
}

// Write is one call to [Recorder.Write].
type Write struct {
	At   time.Time
	Data string
}

// Recorder is an [io.Writer] that keeps each write separately, stamped with
// the time from Now. OnWrite, if set, runs after each write with the index
// of that write.
type Recorder struct {
	Now     func() time.Time
	OnWrite func(i int)
	writes  []Write
	mu      sync.Mutex
}

// Write records a copy of p.
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()

	w := Write{Data: string(p)}
	if r.Now != nil {
		w.At = r.Now()
	}

	r.writes = append(r.writes, w)
	i := len(r.writes) - 1

	r.mu.Unlock()

	if r.OnWrite != nil {
		r.OnWrite(i)
	}

	return len(p), nil
}

// Writes returns the recorded writes in order.
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Write, len(r.writes))
	copy(out, r.writes)

	return out
}

// Strings returns the data of each recorded write.
func (r *Recorder) Strings() []string {
	writes := r.Writes()

	out := make([]string, len(writes))
	for i, w := range writes {
		out[i] = w.Data
	}

	return out
}

// JoinLF joins lines with LF line endings.
func JoinLF(ss ...string) string {
	return strings.Join(ss, "\n")
}
