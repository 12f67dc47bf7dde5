package playback_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/termplay/frame"
	"go.jacobcolvin.com/termplay/internal/frametest"
	"go.jacobcolvin.com/termplay/playback"
	"go.jacobcolvin.com/termplay/stream"
)

const tpf = 100 * time.Millisecond

var discard = slog.New(slog.DiscardHandler)

type fakeTrack struct {
	startErr error
	starts   int
	stops    int
	releases int
}

func (f *fakeTrack) Start() error {
	f.starts++

	return f.startErr
}

func (f *fakeTrack) Stop() error {
	f.stops++

	return nil
}

func (f *fakeTrack) Release() error {
	f.releases++

	return nil
}

// newFake returns a scheduler at 10 fps on a fake clock, writing to a
// recorder stamped by that clock.
func newFake(t *testing.T, opts ...playback.Option) (*playback.Scheduler, *frametest.Clock, *frametest.Recorder) {
	t.Helper()

	clk := frametest.NewClock()
	rec := &frametest.Recorder{Now: clk.Now}

	s, err := playback.NewScheduler(rec, 10,
		append([]playback.Option{playback.WithClock(clk), playback.WithLogger(discard)}, opts...)...)
	require.NoError(t, err)

	return s, clk, rec
}

// homed returns the frames of text as the scheduler writes them, each
// starting with the cursor-home marker.
func homed(text string) []string {
	frames := frame.Split(text)
	for i, f := range frames {
		frames[i] = frame.Boundary + f
	}

	return frames
}

//nolint:paralleltest // Goroutine leak check.
func TestPlayRealTime(t *testing.T) {
	defer leaktest.Check(t)()

	rec := &frametest.Recorder{Now: time.Now}

	s, err := playback.NewScheduler(rec, 10, playback.WithLogger(discard))
	require.NoError(t, err)

	start := time.Now()

	stats, err := s.Play(t.Context(), frametest.Stream(3, 2, 2))
	require.NoError(t, err)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 450*time.Millisecond)

	writes := rec.Strings()
	require.Len(t, writes, 3)

	for i, w := range writes {
		assert.True(t, strings.HasPrefix(w, frame.Boundary), "write %d homes the cursor", i)
		assert.Equal(t, 2, strings.Count(w, frame.RowEnd), "write %d", i)
		assert.Equal(t, 4, strings.Count(w, "\x1b[48;2;"), "write %d", i)
	}

	assert.Equal(t, 3, stats.Flushed)
	assert.Equal(t, 0, stats.Dropped)
}

func TestPlayDropsFrames(t *testing.T) {
	t.Parallel()

	s, clk, rec := newFake(t)
	start := clk.Now()

	rec.OnWrite = func(i int) {
		if i == 1 {
			clk.Advance(250 * time.Millisecond)
		}
	}

	text := frametest.Stream(5, 2, 2)
	frames := homed(text)

	stats, err := s.Play(t.Context(), text)
	require.NoError(t, err)

	assert.Equal(t, playback.Stats{
		Iterations: 1,
		Frames:     5,
		Flushed:    4,
		Dropped:    1,
		Elapsed:    500 * time.Millisecond,
	}, stats)

	assert.Equal(t, []string{frames[0], frames[1], frames[3], frames[4]}, rec.Strings())

	var at []time.Duration
	for _, w := range rec.Writes() {
		at = append(at, w.At.Sub(start))
	}

	assert.Equal(t, []time.Duration{0, 100 * time.Millisecond, 350 * time.Millisecond, 400 * time.Millisecond}, at)
}

func TestPlayNeverEarly(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		costs []time.Duration
	}{
		"on time": {
			costs: []time.Duration{0, 0, 0, 0, 0, 0, 0, 0},
		},
		"jitter": {
			costs: []time.Duration{10, 90, 30, 99, 0, 50, 20, 80},
		},
		"slow frames": {
			costs: []time.Duration{0, 210, 0, 0, 330, 0, 120, 0},
		},
		"always slow": {
			costs: []time.Duration{150, 150, 150, 150, 150, 150, 150, 150},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, clk, rec := newFake(t)
			start := clk.Now()

			rec.OnWrite = func(i int) {
				if i < len(tc.costs) {
					clk.Advance(tc.costs[i] * time.Millisecond)
				}
			}

			text := frametest.Stream(12, 1, 1)
			index := map[string]int{}

			for i, f := range homed(text) {
				index[f] = i
			}

			stats, err := s.Play(t.Context(), text)
			require.NoError(t, err)

			last := -1

			for _, w := range rec.Writes() {
				i, ok := index[w.Data]
				require.True(t, ok)

				assert.Greater(t, i, last, "frame indices increase")
				assert.GreaterOrEqual(t, w.At.Sub(start), time.Duration(i)*tpf, "frame %d early", i)

				last = i
			}

			assert.Equal(t, 12, stats.Frames)
			assert.Equal(t, stats.Frames, stats.Flushed+stats.Dropped)
			assert.InDelta(t, 12*tpf, stats.Elapsed, float64(tpf))
		})
	}
}

func TestPlayLayouts(t *testing.T) {
	t.Parallel()

	first := frametest.Stream(4, 3, 2)
	frames := homed(first)

	var after strings.Builder
	for _, f := range frame.Split(first) {
		after.WriteString(f + frame.Boundary)
	}

	tcs := map[string]struct {
		text string
	}{
		"marker before each frame": {text: first},
		"marker after each frame":  {text: after.String()},
		"repeated markers":         {text: frame.Boundary + "\n" + first},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, _, rec := newFake(t)

			stats, err := s.Play(t.Context(), tc.text)
			require.NoError(t, err)

			assert.Equal(t, frames, rec.Strings())
			assert.Equal(t, 4, stats.Frames)
			assert.Equal(t, 400*time.Millisecond, stats.Elapsed)
		})
	}
}

func TestPlayPersistedMatchesPlay(t *testing.T) {
	t.Parallel()

	text := frametest.Stream(6, 3, 2)

	s := stream.New(stream.Metadata{FPS: 10, Width: 3, Height: 2})
	for _, f := range frame.Split(text) {
		s.Append(frame.Boundary + f)
	}

	saved, err := stream.Save(t.TempDir(), s, stream.FormatBzip2)
	require.NoError(t, err)

	r, err := stream.Open(saved.Stream)
	require.NoError(t, err)

	t.Cleanup(func() { _ = r.Close() })

	mem, _, memRec := newFake(t)
	memStats, err := mem.Play(t.Context(), text)
	require.NoError(t, err)

	disk, _, diskRec := newFake(t)
	diskStats, err := disk.PlayPersisted(t.Context(), r)
	require.NoError(t, err)

	assert.Equal(t, homed(text), diskRec.Strings())
	assert.Equal(t, memRec.Strings(), diskRec.Strings())
	assert.Equal(t, memStats, diskStats)
}

func TestPlayLoopCanceled(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		play func(context.Context, *playback.Scheduler, string) (playback.Stats, error)
	}{
		"in memory": {
			play: func(ctx context.Context, s *playback.Scheduler, text string) (playback.Stats, error) {
				return s.Play(ctx, text)
			},
		},
		"persisted": {
			play: func(ctx context.Context, s *playback.Scheduler, text string) (playback.Stats, error) {
				return s.PlayPersisted(ctx, strings.NewReader(text))
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			track := &fakeTrack{}
			s, _, rec := newFake(t, playback.WithLoop(true), playback.WithTrack(track))

			rec.OnWrite = func(i int) {
				if i == 2 {
					cancel()
				}
			}

			text := frametest.Stream(2, 2, 2)
			frames := homed(text)

			stats, err := tc.play(ctx, s, text)
			require.NoError(t, err)

			assert.Equal(t, []string{frames[0], frames[1], frames[0]}, rec.Strings())
			assert.Equal(t, 2, stats.Iterations)
			assert.Equal(t, 3, stats.Flushed)
			assert.Equal(t, 2, track.starts)
			assert.Equal(t, 1, track.stops, "stopped after the completed pass only")
			assert.Equal(t, 1, track.releases)
		})
	}
}

func TestPlayCanceledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	track := &fakeTrack{}
	s, _, rec := newFake(t, playback.WithLoop(true), playback.WithTrack(track))

	stats, err := s.Play(ctx, frametest.Stream(3, 1, 1))
	require.NoError(t, err)

	assert.Empty(t, rec.Writes())
	assert.Equal(t, 0, stats.Flushed)
	assert.Equal(t, 0, track.starts)
	assert.Equal(t, 0, track.stops)
	assert.Equal(t, 1, track.releases)
}

func TestPlayTrack(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		startErr error
	}{
		"started with first frame": {},
		"start failure is not fatal": {startErr: errors.New("no device")},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			track := &fakeTrack{startErr: tc.startErr}
			s, _, rec := newFake(t, playback.WithTrack(track))

			rec.OnWrite = func(i int) {
				if i == 0 {
					assert.Equal(t, 1, track.starts, "started before the first write returns")
				}
			}

			stats, err := s.Play(t.Context(), frametest.Stream(3, 1, 1))
			require.NoError(t, err)

			assert.Equal(t, 3, stats.Flushed)
			assert.Equal(t, 1, track.starts)
			assert.Equal(t, 1, track.stops)
			assert.Equal(t, 1, track.releases)
		})
	}
}

func TestPlayTrackStoppedEachPass(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	track := &fakeTrack{}
	s, _, rec := newFake(t, playback.WithLoop(true), playback.WithTrack(track))

	var at []string

	rec.OnWrite = func(i int) {
		if i%2 == 0 {
			at = append(at, fmt.Sprintf("starts=%d stops=%d", track.starts, track.stops))
		}

		if i == 4 {
			cancel()
		}
	}

	stats, err := s.Play(ctx, frametest.Stream(2, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Iterations)
	assert.Equal(t, []string{"starts=1 stops=0", "starts=2 stops=1", "starts=3 stops=2"}, at)
	assert.Equal(t, 2, track.stops)
	assert.Equal(t, 1, track.releases)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestPlayErrors(t *testing.T) {
	t.Parallel()

	t.Run("write", func(t *testing.T) {
		t.Parallel()

		track := &fakeTrack{}

		s, err := playback.NewScheduler(failWriter{}, 10,
			playback.WithClock(frametest.NewClock()),
			playback.WithTrack(track),
			playback.WithLogger(discard),
		)
		require.NoError(t, err)

		_, err = s.Play(t.Context(), frametest.Stream(2, 1, 1))
		require.ErrorIs(t, err, io.ErrClosedPipe)
		assert.Equal(t, 1, track.releases)
	})

	t.Run("read", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("corrupt stream")
		s, _, rec := newFake(t)

		r := io.MultiReader(strings.NewReader(frametest.Stream(2, 1, 1)), iotest.ErrReader(boom))

		_, err := s.PlayPersisted(t.Context(), r)
		require.ErrorIs(t, err, boom)
		assert.Len(t, rec.Writes(), 1)
	})
}

func TestPlayLoopEmptyStream(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	clk := frametest.NewClock()
	rec := &frametest.Recorder{}

	s, err := playback.NewScheduler(rec, 10,
		playback.WithClock(clk),
		playback.WithLoop(true),
		playback.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	require.NoError(t, err)

	stats, err := s.Play(t.Context(), frame.Boundary+"\n")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Iterations)
	assert.Empty(t, rec.Writes())
	assert.Contains(t, logs.String(), "no frames")
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		fps  float64
		want time.Duration
		err  bool
	}{
		"ten":      {fps: 10, want: 100 * time.Millisecond},
		"film":     {fps: 24, want: 41666666},
		"zero":     {fps: 0, err: true},
		"negative": {fps: -5, err: true},
		"huge":     {fps: 1e12, err: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, err := playback.NewScheduler(io.Discard, tc.fps)
			if tc.err {
				require.ErrorIs(t, err, playback.ErrInvalidFPS)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, s.FrameInterval())
		})
	}
}

func TestSystemClockSleep(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := playback.SystemClock{}.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)

	start := time.Now()
	require.NoError(t, playback.SystemClock{}.Sleep(t.Context(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
