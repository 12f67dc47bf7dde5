package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.jacobcolvin.com/termplay/media"
	"go.jacobcolvin.com/termplay/resolution"
	"go.jacobcolvin.com/termplay/stream"
)

// ErrNoSources indicates that none of the given sources could be prepared.
var ErrNoSources = errors.New("no usable sources")

// prepared is an encoded stream with its sound track and workspace.
type prepared struct {
	stream *stream.Stream
	ws     *media.Workspace
	audio  string
}

// prepare extracts and encodes sources into a single stream. The first usable
// source fixes the grid for all of them. Sources that cannot be read are
// skipped with an error log.
//
// The caller must close the returned workspace.
func (a *app) prepare(ctx context.Context, sources []string) (*prepared, error) {
	ws, err := media.NewWorkspace(a.stream.Keep)
	if err != nil {
		return nil, err
	}

	p, err := a.prepareIn(ctx, ws, sources)
	if err != nil {
		return nil, errors.Join(err, ws.Close())
	}

	return p, nil
}

func (a *app) prepareIn(ctx context.Context, ws *media.Workspace, sources []string) (*prepared, error) {
	var (
		grid   resolution.Grid
		clips  []stream.Clip
		tracks []string
	)

	for i, src := range sources {
		fmt.Fprintf(a.stderr, "Preparing %s (%d/%d)\n", filepath.Base(src), i+1, len(sources))

		clip, track, err := a.source(ctx, ws, src, &grid)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			slog.Error("skipping source", slog.String("source", src), slog.Any("error", err))

			continue
		}

		clips = append(clips, clip)

		if track != "" {
			tracks = append(tracks, track)
		}
	}

	if len(clips) == 0 {
		return nil, ErrNoSources
	}

	var audioPath string

	if a.audio.Extract() {
		path, err := media.ConcatAudio(ctx, tracks, ws.Dir())
		if err != nil {
			slog.Warn("joining sound tracks", slog.Any("error", err))
		} else {
			audioPath = path
		}
	}

	enc, err := a.frame.NewEncoder(grid)
	if err != nil {
		return nil, err
	}

	asm := stream.NewAssembler(enc, stream.WithProgress(func(percent int) {
		fmt.Fprintf(a.stderr, "Processing... %d%%\r", percent)
	}))

	s, err := asm.Assemble(ctx, clips...)

	fmt.Fprintln(a.stderr)

	if err != nil {
		return nil, err
	}

	slog.Info("encoded",
		slog.Int("frames", s.Len()),
		slog.String("grid", grid.String()),
		slog.Float64("fps", s.Metadata.FPS),
	)

	return &prepared{stream: s, ws: ws, audio: audioPath}, nil
}

// source turns one movie or frame directory into a clip. If grid is empty it
// is set from the source's size.
func (a *app) source(ctx context.Context, ws *media.Workspace, src string, grid *resolution.Grid) (stream.Clip, string, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return stream.Clip{}, "", fmt.Errorf("reading source: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	if fi.IsDir() {
		frames, err := media.ListFrames(src)
		if err != nil {
			return stream.Clip{}, "", err
		}

		if !grid.Valid() {
			img, err := media.LoadImage(frames[0])
			if err != nil {
				return stream.Clip{}, "", err
			}

			b := img.Bounds()

			*grid, err = a.fit(resolution.Size{Width: b.Dx(), Height: b.Dy()})
			if err != nil {
				return stream.Clip{}, "", err
			}
		}

		return stream.Clip{Name: name, Dir: src, FPS: a.playback.FrameRate(0)}, "", nil
	}

	info, err := media.Probe(ctx, src)
	if err != nil {
		return stream.Clip{}, "", err
	}

	if !grid.Valid() {
		*grid, err = a.fit(resolution.Size{Width: info.Width, Height: info.Height})
		if err != nil {
			return stream.Clip{}, "", err
		}
	}

	dir, err := ws.Sub(src)
	if err != nil {
		return stream.Clip{}, "", err
	}

	err = media.ExtractFrames(ctx, src, dir, *grid)
	if err != nil {
		return stream.Clip{}, "", err
	}

	var track string

	if info.HasAudio && a.audio.Extract() {
		track, err = media.ExtractAudio(ctx, src, dir)
		if err != nil {
			slog.Warn("extracting sound track", slog.String("source", src), slog.Any("error", err))

			track = ""
		}
	}

	return stream.Clip{Name: name, Dir: dir, FPS: info.FPS}, track, nil
}

// fit sizes the grid for a source. A --resolution grid takes the place of
// the terminal's own size.
func (a *app) fit(size resolution.Size) (resolution.Grid, error) {
	geom, err := a.geometry()
	if err != nil {
		return resolution.Grid{}, err
	}

	grid, err := resolution.Fit(size, geom)
	if err != nil {
		return resolution.Grid{}, err
	}

	slog.Debug("fitted grid",
		slog.String("source", fmt.Sprintf("%dx%d", size.Width, size.Height)),
		slog.Int("term_cols", geom.Cols),
		slog.Int("term_rows", geom.Rows),
		slog.String("grid", grid.String()),
	)

	return grid, nil
}

func (a *app) geometry() (resolution.Geometry, error) {
	g, ok, err := a.playback.Grid()
	if err != nil {
		return resolution.Geometry{}, err
	}

	if ok {
		return resolution.Geometry{Rows: g.Rows + 1, Cols: g.Cols}, nil
	}

	f, ok := a.stdout.(interface{ Fd() uintptr })
	if !ok {
		return resolution.Geometry{}, media.ErrNotTerminal
	}

	geom, err := media.TerminalGeometry(int(f.Fd())) //nolint:gosec // File descriptors fit in int.
	if err != nil {
		return resolution.Geometry{}, fmt.Errorf("%w (use --%s to set a size)", err, a.playback.Flags.Resolution)
	}

	return geom, nil
}
