package playback

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
	"runtime/trace"
	"strings"
	"time"

	"go.jacobcolvin.com/termplay/frame"
)

// ErrInvalidFPS indicates a frame rate that is not a positive finite number.
var ErrInvalidFPS = errors.New("invalid frame rate")

// Track is an audio track started with the first frame of each pass and
// stopped when the pass completes.
type Track interface {
	// Start plays the track from the beginning.
	Start() error
	// Stop stops the track if it is playing.
	Stop() error
	// Release stops the track and frees it.
	Release() error
}

// Stats summarizes a playback session.
type Stats struct {
	// Iterations is the number of passes started over the stream.
	Iterations int
	// Frames is the number of frames scheduled, flushed or dropped.
	Frames int
	// Flushed is the number of frames written.
	Flushed int
	// Dropped is the number of frames skipped to catch up with the clock.
	Dropped int
	// Elapsed is the wall time of the session.
	Elapsed time.Duration
}

// Scheduler replays encoded streams in real time.
//
// Each frame is written with a single Write once the next frame boundary is
// seen. After writing frame n the scheduler sleeps until n frame intervals
// have passed since the pass began, so frames are never early. When writing
// falls behind the clock, whole frames are dropped until the frame count
// catches up with the time elapsed.
//
// Create instances with [NewScheduler].
type Scheduler struct {
	w      io.Writer
	clock  Clock
	track  Track
	logger *slog.Logger
	tpf    time.Duration
	loop   bool
}

// Option configures a [Scheduler].
type Option func(*Scheduler)

// WithClock sets the clock. The default is [SystemClock].
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithTrack sets an audio track to start with the first frame. The track is
// released when playback returns.
func WithTrack(t Track) Option {
	return func(s *Scheduler) {
		s.track = t
	}
}

// WithLoop repeats playback until the context is canceled.
func WithLoop(loop bool) Option {
	return func(s *Scheduler) {
		s.loop = loop
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a [Scheduler] that writes frames to w at fps frames
// per second.
func NewScheduler(w io.Writer, fps float64, opts ...Option) (*Scheduler, error) {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFPS, fps)
	}

	s := &Scheduler{
		w:      w,
		clock:  SystemClock{},
		logger: slog.Default(),
		tpf:    time.Duration(float64(time.Second) / fps),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.tpf <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFPS, fps)
	}

	return s, nil
}

// FrameInterval returns the time between frames.
func (s *Scheduler) FrameInterval() time.Duration {
	return s.tpf
}

// Play replays the encoded text. Canceling ctx ends playback with a nil
// error; the stats cover what was played.
func (s *Scheduler) Play(ctx context.Context, text string) (Stats, error) {
	ctx, task := trace.NewTask(ctx, "playback")
	defer task.End()
	defer s.release()

	var stats Stats

	start := s.clock.Now()

	err := s.playText(ctx, &stats, text, true)
	stats.Elapsed = s.clock.Now().Sub(start)

	s.done(stats, err)

	return stats, err
}

// PlayPersisted replays encoded text read incrementally from r, such as a
// decompressing reader from [stream.Open]. When looping, the text read in
// the first pass is kept and later passes replay it from memory.
func (s *Scheduler) PlayPersisted(ctx context.Context, r io.Reader) (Stats, error) {
	ctx, task := trace.NewTask(ctx, "playback")
	defer task.End()
	defer s.release()

	var (
		stats    Stats
		captured strings.Builder
	)

	start := s.clock.Now()

	var capture *strings.Builder
	if s.loop {
		capture = &captured
	}

	completed, err := s.pass(ctx, &stats, readerLines(r, capture))
	if err == nil && completed && s.loop {
		err = s.playText(ctx, &stats, captured.String(), false)
	}

	stats.Elapsed = s.clock.Now().Sub(start)

	s.done(stats, err)

	return stats, err
}

// playText plays text, once if first is set, then again for as long as
// looping is enabled.
func (s *Scheduler) playText(ctx context.Context, stats *Stats, text string, first bool) error {
	for first || s.loop {
		first = false
		before := stats.Frames

		completed, err := s.pass(ctx, stats, textLines(text))
		if err != nil || !completed {
			return err
		}

		if stats.Frames == before {
			s.logger.Warn("stream has no frames, not looping")

			return nil
		}
	}

	return nil
}

// pass plays one pass over lines. It reports false if ctx was canceled.
func (s *Scheduler) pass(ctx context.Context, stats *Stats, lines iter.Seq2[string, error]) (bool, error) {
	p := &timing{
		Scheduler: s,
		stats:     stats,
		t0:        s.clock.Now(),
	}

	stats.Iterations++

	for line, err := range lines {
		if err != nil {
			return false, fmt.Errorf("reading stream: %w", err)
		}

		if ctx.Err() != nil {
			return false, nil
		}

		l := frame.Classify(line)

		if l.Kind == frame.KindBoundary && p.open {
			ok, err := p.finish(ctx)
			if err != nil || !ok {
				return false, err
			}
		}

		if !l.HasData() {
			continue
		}

		if !p.open {
			p.open = true
			p.keep = p.n >= p.target

			if p.keep {
				p.buf.WriteString(frame.Boundary)
			}
		}

		if p.keep {
			p.buf.WriteString(l.Data)
		}
	}

	if p.open {
		ok, err := p.finish(ctx)
		if err != nil || !ok {
			return false, err
		}
	}

	p.stopTrack()

	s.logger.Debug("pass complete",
		slog.Int("iteration", stats.Iterations),
		slog.Int("frames", p.n),
		slog.Int("dropped", p.dropped),
	)

	return true, nil
}

// timing is the state of one pass.
type timing struct {
	*Scheduler

	stats   *Stats
	t0      time.Time
	buf     strings.Builder
	n       int
	target  int
	dropped int
	open    bool
	keep    bool
	started bool
}

// finish flushes or drops the current frame, then waits until the next
// frame is due. It reports false if ctx was canceled.
func (p *timing) finish(ctx context.Context) (bool, error) {
	if p.keep {
		err := p.flush(ctx)
		if err != nil {
			return false, err
		}
	} else {
		p.dropped++
		p.stats.Dropped++
	}

	p.open = false
	p.n++
	p.stats.Frames++

	wait := time.Duration(p.n)*p.tpf - p.clock.Now().Sub(p.t0)
	if wait > 0 {
		err := p.clock.Sleep(ctx, wait)
		if err != nil {
			return false, nil //nolint:nilerr // Cancellation ends playback normally.
		}
	}

	p.target = int(p.clock.Now().Sub(p.t0) / p.tpf)

	return true, nil
}

func (p *timing) flush(ctx context.Context) error {
	if p.buf.Len() == 0 {
		return nil
	}

	defer trace.StartRegion(ctx, "flush").End()

	if !p.started && p.track != nil {
		p.started = true

		err := p.track.Start()
		if err != nil {
			p.logger.Warn("starting audio", slog.Any("error", err))
		}
	}

	_, err := io.WriteString(p.w, p.buf.String())
	p.buf.Reset()

	if err != nil {
		return fmt.Errorf("writing frame %d: %w", p.n, err)
	}

	p.stats.Flushed++

	return nil
}

// stopTrack stops the track if this pass started it.
func (p *timing) stopTrack() {
	if !p.started {
		return
	}

	err := p.track.Stop()
	if err != nil {
		p.logger.Warn("stopping audio", slog.Any("error", err))
	}
}

func (s *Scheduler) release() {
	if s.track == nil {
		return
	}

	err := s.track.Release()
	if err != nil {
		s.logger.Warn("releasing audio", slog.Any("error", err))
	}
}

func (s *Scheduler) done(stats Stats, err error) {
	if err != nil {
		return
	}

	attrs := []any{
		slog.Int("iterations", stats.Iterations),
		slog.Int("frames", stats.Frames),
		slog.Int("flushed", stats.Flushed),
		slog.Int("dropped", stats.Dropped),
		slog.Duration("elapsed", stats.Elapsed),
	}

	if stats.Dropped > 0 {
		s.logger.Info("playback finished behind the clock", attrs...)

		return
	}

	s.logger.Debug("playback finished", attrs...)
}

func textLines(text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for line := range strings.SplitAfterSeq(text, "\n") {
			if line == "" {
				continue
			}

			if !yield(line, nil) {
				return
			}
		}
	}
}

// readerLines yields the lines of r. Each line read is also appended to
// capture, if set.
func readerLines(r io.Reader, capture *strings.Builder) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReader(r)

		for {
			line, err := br.ReadString('\n')
			if line != "" {
				if capture != nil {
					capture.WriteString(line)
				}

				if !yield(line, nil) {
					return
				}
			}

			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield("", err)

				return
			}
		}
	}
}
