package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.jacobcolvin.com/termplay/resolution"
)

// FFmpegPath is the ffmpeg binary used for extraction.
var FFmpegPath = "ffmpeg"

const (
	// FramePattern names extracted frames so that lexical order is temporal
	// order.
	FramePattern = "frame_%05d.png"
	// AudioName is the file name of an extracted or joined sound track.
	AudioName = "audio.wav"

	// oversample scales extracted frames above the grid so the final resize
	// works from a sharper source.
	oversample = 4
)

// ErrFFmpeg indicates that an ffmpeg invocation failed.
var ErrFFmpeg = errors.New("ffmpeg failed")

// ExtractFrames writes every frame of the movie at path into dir as PNG
// images of four times the size of grid.
func ExtractFrames(ctx context.Context, path, dir string, grid resolution.Grid) error {
	if !grid.Valid() {
		return fmt.Errorf("%w: %s", resolution.ErrEmptyGrid, grid)
	}

	return runFFmpeg(ctx,
		"-i", path,
		"-vf", fmt.Sprintf("scale=%d:%d", grid.Cols*oversample, grid.Rows*oversample),
		filepath.Join(dir, FramePattern),
	)
}

// ExtractAudio writes the sound track of the movie at path into dir and
// returns the file path.
func ExtractAudio(ctx context.Context, path, dir string) (string, error) {
	out := filepath.Join(dir, AudioName)

	err := runFFmpeg(ctx, "-i", path, "-vn", out)
	if err != nil {
		return "", err
	}

	return out, nil
}

// ConcatAudio joins tracks in order into a single file in dir and returns its
// path. A single track is moved rather than re-encoded. With no tracks it
// returns an empty path.
func ConcatAudio(ctx context.Context, tracks []string, dir string) (string, error) {
	out := filepath.Join(dir, AudioName)

	switch len(tracks) {
	case 0:
		return "", nil

	case 1:
		err := os.Rename(tracks[0], out)
		if err != nil {
			return "", fmt.Errorf("moving audio: %w", err)
		}

		return out, nil
	}

	list := filepath.Join(dir, "audio.txt")

	var sb strings.Builder
	for _, t := range tracks {
		abs, err := filepath.Abs(t)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", t, err)
		}

		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}

	err := os.WriteFile(list, []byte(sb.String()), 0o600)
	if err != nil {
		return "", fmt.Errorf("writing audio list: %w", err)
	}

	err = runFFmpeg(ctx, "-f", "concat", "-safe", "0", "-i", list, "-c", "copy", out)
	if err != nil {
		return "", err
	}

	return out, nil
}

func runFFmpeg(ctx context.Context, args ...string) error {
	args = append([]string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}, args...)

	//nolint:gosec // Arguments are file paths from the CLI and the workspace.
	cmd := exec.CommandContext(ctx, FFmpegPath, args...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	slog.DebugContext(ctx, "running ffmpeg", slog.Any("args", cmd.Args))

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%w: %w%s", ErrFFmpeg, err, stderrTail(&stderr))
	}

	return nil
}
