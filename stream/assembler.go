package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.jacobcolvin.com/termplay/frame"
	"go.jacobcolvin.com/termplay/media"
)

var (
	// ErrNoClips indicates that no clips were given to assemble.
	ErrNoClips = errors.New("no clips")
	// ErrNoFrames indicates that no clip produced any frames.
	ErrNoFrames = errors.New("no frames")
)

// Clip is one source of frames: a directory of still images whose lexical
// file-name order is their temporal order.
type Clip struct {
	Name string
	Dir  string
	FPS  float64
}

// Assembler encodes clips into a single [Stream].
//
// Create instances with [NewAssembler].
type Assembler struct {
	enc      *frame.Encoder
	logger   *slog.Logger
	progress func(percent int)
}

// AssemblerOption configures an [Assembler].
type AssemblerOption func(*Assembler)

// WithProgress sets a function called with the percentage of frames
// processed each time another 10% boundary is crossed.
func WithProgress(fn func(percent int)) AssemblerOption {
	return func(a *Assembler) {
		a.progress = fn
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(logger *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// NewAssembler creates an [Assembler] that encodes every frame with enc.
// All clips are fitted to the encoder's grid.
func NewAssembler(enc *frame.Encoder, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		enc:    enc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Assemble encodes clips in order and concatenates their frames.
//
// The stream takes the frame rate of the first clip; a clip with a different
// rate is still included and a warning is logged. A clip whose frames cannot
// be listed, decoded, or encoded is skipped with an error log, and
// [ErrNoFrames] is returned if nothing remains.
func (a *Assembler) Assemble(ctx context.Context, clips ...Clip) (*Stream, error) {
	if len(clips) == 0 {
		return nil, ErrNoClips
	}

	grid := a.enc.Grid()
	s := New(Metadata{FPS: clips[0].FPS, Width: grid.Cols, Height: grid.Rows})

	paths := make([][]string, len(clips))
	total := 0

	for i, clip := range clips {
		if clip.FPS != s.Metadata.FPS {
			a.logger.Warn("frame rate differs, playback might be weird",
				slog.String("clip", clip.Name),
				slog.Float64("fps", clip.FPS),
				slog.Float64("stream_fps", s.Metadata.FPS),
			)
		}

		files, err := media.ListFrames(clip.Dir)
		if err != nil {
			a.logger.Error("skipping clip", slog.String("clip", clip.Name), slog.Any("error", err))

			continue
		}

		paths[i] = files
		total += len(files)
	}

	progress := NewProgress(total, a.progress)

	for i, clip := range clips {
		if len(paths[i]) == 0 {
			continue
		}

		frames, err := a.encodeClip(ctx, paths[i], progress)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("assembling %s: %w", clip.Name, ctx.Err())
			}

			a.logger.Error("skipping clip", slog.String("clip", clip.Name), slog.Any("error", err))
			progress.Advance(len(paths[i]) - len(frames))

			continue
		}

		for _, f := range frames {
			s.Append(f)
		}

		a.logger.Debug("assembled clip",
			slog.String("clip", clip.Name),
			slog.Int("frames", len(frames)),
			slog.String("grid", grid.String()),
		)
	}

	if s.Len() == 0 {
		return nil, ErrNoFrames
	}

	return s, nil
}

// encodeClip encodes every image of one clip. On error it returns the frames
// encoded so far.
func (a *Assembler) encodeClip(ctx context.Context, paths []string, progress *Progress) ([]string, error) {
	frames := make([]string, 0, len(paths))

	for _, path := range paths {
		err := ctx.Err()
		if err != nil {
			return frames, err
		}

		img, err := media.LoadImage(path)
		if err != nil {
			return frames, err
		}

		f, err := a.enc.Encode(a.enc.Fit(img))
		if err != nil {
			return frames, fmt.Errorf("encoding %s: %w", path, err)
		}

		frames = append(frames, f)

		progress.Advance(1)
	}

	return frames, nil
}

// Progress reports the percentage of completed work at every 10% boundary.
// Reported values never decrease.
//
// Create instances with [NewProgress].
type Progress struct {
	emit  func(percent int)
	total int
	done  int
	last  int
}

// NewProgress creates a [Progress] for total units of work. A nil emit
// discards reports.
func NewProgress(total int, emit func(percent int)) *Progress {
	return &Progress{total: total, emit: emit}
}

// Advance records n more units of completed work and reports the new
// percentage, rounded down to a multiple of 10, if it crossed a boundary.
func (p *Progress) Advance(n int) {
	if n <= 0 || p.total <= 0 {
		return
	}

	p.done = min(p.done+n, p.total)

	percent := p.done * 100 / p.total / 10 * 10
	if percent <= p.last {
		return
	}

	p.last = percent

	if p.emit != nil {
		p.emit(percent)
	}
}

// Percent returns the last reported percentage.
func (p *Progress) Percent() int {
	return p.last
}
