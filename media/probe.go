package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobePath is the ffprobe binary used by [Probe].
var FFprobePath = "ffprobe"

// ErrProbe indicates that a movie's size or frame rate could not be read.
var ErrProbe = errors.New("probe failed")

// Info describes a movie.
type Info struct {
	Width    int
	Height   int
	FPS      float64
	HasAudio bool
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
}

// Probe reads the size and frame rate of the first video stream of the movie
// at path.
func Probe(ctx context.Context, path string) (Info, error) {
	//nolint:gosec // Movie path is a CLI argument.
	cmd := exec.CommandContext(ctx, FFprobePath,
		"-hide_banner",
		"-loglevel", "error",
		"-print_format", "json",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.DebugContext(ctx, "running ffprobe", slog.Any("args", cmd.Args))

	err := cmd.Run()
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %w%s", ErrProbe, path, err, stderrTail(&stderr))
	}

	info, err := ParseProbe(stdout.Bytes())
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}

	return info, nil
}

// ParseProbe parses the JSON output of ffprobe -show_streams.
func ParseProbe(data []byte) (Info, error) {
	var res probeResult

	err := json.Unmarshal(data, &res)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrProbe, err)
	}

	var (
		info  Info
		video bool
	)

	for _, s := range res.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true

		case "video":
			if video {
				continue
			}

			video = true
			info.Width = s.Width
			info.Height = s.Height

			info.FPS, err = ParseRate(s.AvgFrameRate)
			if err != nil {
				info.FPS, err = ParseRate(s.RFrameRate)
			}

			if err != nil {
				return Info{}, fmt.Errorf("%w: frame rate: %w", ErrProbe, err)
			}
		}
	}

	if !video {
		return Info{}, fmt.Errorf("%w: no video stream", ErrProbe)
	}

	if info.Width <= 0 || info.Height <= 0 {
		return Info{}, fmt.Errorf("%w: size %dx%d", ErrProbe, info.Width, info.Height)
	}

	return info, nil
}

// ParseRate parses a frame rate written as a decimal ("29.97") or a ratio
// ("30000/1001"). The rate must be positive.
func ParseRate(s string) (float64, error) {
	num, den, ratio := strings.Cut(s, "/")

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("rate %q: %w", s, err)
	}

	if ratio {
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("rate %q: %w", s, err)
		}

		if d == 0 {
			return 0, fmt.Errorf("rate %q: zero denominator", s)
		}

		n /= d
	}

	if n <= 0 {
		return 0, fmt.Errorf("rate %q: not positive", s)
	}

	return n, nil
}

// stderrTail formats the last line of a tool's stderr for an error message.
func stderrTail(b *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")

	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return ""
	}

	return ": " + last
}
