package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/termplay/media"
	"go.jacobcolvin.com/termplay/playback"
	"go.jacobcolvin.com/termplay/stream"
)

func (a *app) playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <movie|frame-dir>... | play <output.bz2|output.gz>",
		Short: "Encode and play movies, or replay a saved stream",
		Long: `Play encodes each movie or frame directory at a grid that fits the terminal
and plays the result in real time with its sound track.

Given a single saved stream, play replays it without re-encoding, reading the
frame rate from the metadata saved beside it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && stream.IsCompressed(args[0]) {
				return a.playSaved(cmd.Context(), args[0])
			}

			return a.playSources(cmd.Context(), args)
		},
	}

	a.frame.RegisterFlags(cmd.Flags())
	a.playback.RegisterFlags(cmd.Flags())
	a.audio.RegisterFlags(cmd.Flags())
	a.stream.RegisterFlags(cmd.Flags())

	a.registerCompletions(cmd)

	return cmd
}

func (a *app) registerCompletions(cmd *cobra.Command) {
	err := errors.Join(
		a.frame.RegisterCompletions(cmd),
		a.playback.RegisterCompletions(cmd),
		a.audio.RegisterCompletions(cmd),
		a.stream.RegisterCompletions(cmd),
	)
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}
}

func (a *app) playSources(ctx context.Context, sources []string) (err error) {
	_, err = a.stream.ParsedFormat()
	if err != nil {
		return err
	}

	p, err := a.prepare(ctx, sources)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, p.ws.Close())
	}()

	if a.stream.Persist() {
		err = a.save(p)
		if err != nil {
			return err
		}
	}

	return a.play(ctx, p.stream.Metadata, p.audio, func(s *playback.Scheduler) (playback.Stats, error) {
		return s.Play(ctx, p.stream.String())
	})
}

func (a *app) playSaved(ctx context.Context, path string) (err error) {
	dir := filepath.Dir(path)

	meta, err := stream.LoadMetadata(dir)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("no metadata beside stream, using defaults",
			slog.String("stream", path),
			slog.Float64("fps", a.playback.FrameRate(0)),
		)
	} else if err != nil {
		return err
	}

	grid, ok, err := a.playback.Grid()
	if err != nil {
		return err
	}

	if ok {
		err = playback.ResizeTerminal(a.stdout, grid)
		if err != nil {
			return err
		}
	}

	var track string

	beside := filepath.Join(dir, media.AudioName)

	_, statErr := os.Stat(beside)
	if statErr == nil {
		track = beside
	}

	r, err := stream.Open(path)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, r.Close())
	}()

	return a.play(ctx, meta, track, func(s *playback.Scheduler) (playback.Stats, error) {
		return s.PlayPersisted(ctx, r)
	})
}

// play runs fn with a scheduler for meta, bracketed by terminal setup and
// teardown.
func (a *app) play(
	ctx context.Context,
	meta stream.Metadata,
	track string,
	fn func(*playback.Scheduler) (playback.Stats, error),
) (err error) {
	coord := a.audio.NewCoordinator(track)
	coord.Open()

	s, err := a.playback.NewScheduler(a.stdout, a.playback.FrameRate(meta.FPS), playback.WithTrack(coord))
	if err != nil {
		return errors.Join(err, coord.Release())
	}

	err = a.setupTerminal(a.stdout)
	if err != nil {
		return errors.Join(err, coord.Release())
	}

	defer func() {
		err = errors.Join(err, a.restoreTerminal(a.stdout))
	}()

	stats, err := fn(s)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		slog.Info("playback interrupted",
			slog.Int("frames", stats.Frames),
			slog.Duration("elapsed", stats.Elapsed),
		)
	}

	return nil
}

// setupTerminal clears the screen and hides the cursor. The screen is left
// alone at debug level so that log output stays visible.
func (a *app) setupTerminal(w io.Writer) error {
	if !a.log.Debug() {
		err := playback.ClearScreen(w)
		if err != nil {
			return err
		}
	}

	return playback.HideCursor(w)
}

func (a *app) restoreTerminal(w io.Writer) error {
	if !a.log.Debug() {
		err := playback.ClearScreen(w)
		if err != nil {
			return err
		}
	}

	return playback.ShowCursor(w)
}

// save writes the stream to the output directory, or keeps the workspace and
// saves into it.
func (a *app) save(p *prepared) error {
	dir := a.stream.Output
	if dir == "" {
		p.ws.Keep()
		dir = p.ws.Dir()
	} else {
		err := os.MkdirAll(dir, 0o750)
		if err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	format, err := a.stream.ParsedFormat()
	if err != nil {
		return err
	}

	saved, err := stream.Save(dir, p.stream, format)
	if err != nil {
		return err
	}

	if p.audio != "" && filepath.Dir(p.audio) != dir {
		err = copyFile(p.audio, filepath.Join(dir, media.AudioName))
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(a.stderr, "Saved %s\n", saved.Stream)

	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) //nolint:gosec // Sound track inside the workspace.
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}

	defer func() {
		err = errors.Join(err, in.Close())
	}()

	out, err := os.Create(dst) //nolint:gosec // Output path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	_, err = io.Copy(out, in)

	err = errors.Join(err, out.Close())
	if err != nil {
		return fmt.Errorf("copying sound track: %w", err)
	}

	return nil
}
