package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/termplay/frame"
	"go.jacobcolvin.com/termplay/log"
	"go.jacobcolvin.com/termplay/stream"
)

func (a *app) previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <movie|frame-dir|output.bz2|output.gz>...",
		Short: "Step through encoded frames interactively",
		Long: `Preview encodes the sources, or loads a saved stream, and shows the frames
in a full-screen view.

Keys: space pauses, left and right step one frame while paused, q quits.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.preview(cmd.Context(), args)
		},
	}

	a.frame.RegisterFlags(cmd.Flags())
	a.playback.RegisterFlags(cmd.Flags())

	err := errors.Join(
		a.frame.RegisterCompletions(cmd),
		a.playback.RegisterCompletions(cmd),
	)
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func (a *app) preview(ctx context.Context, args []string) error {
	text, meta, err := a.previewText(ctx, args)
	if err != nil {
		return err
	}

	frames := frame.Split(text)
	if len(frames) == 0 {
		return stream.ErrNoFrames
	}

	pub := log.NewPublisher()
	defer pub.Close() //nolint:errcheck // Close never fails.

	handler, err := a.log.NewHandler(pub)
	if err != nil {
		return err
	}

	prev := slog.Default()
	slog.SetDefault(slog.New(handler))

	defer slog.SetDefault(prev)

	m := newPreviewModel(frames, a.playback.FrameRate(meta.FPS), a.playback.Loop, pub)
	defer m.sub.Close()

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(a.stdout))

	_, err = p.Run()
	if err != nil && (ctx.Err() == nil || !errors.Is(err, tea.ErrProgramKilled)) {
		return fmt.Errorf("running preview: %w", err)
	}

	return nil
}

// previewText returns the encoded text and metadata of the sources.
func (a *app) previewText(ctx context.Context, args []string) (string, stream.Metadata, error) {
	if len(args) == 1 && stream.IsCompressed(args[0]) {
		return loadSaved(args[0])
	}

	a.audio.Disable = true

	p, err := a.prepare(ctx, args)
	if err != nil {
		return "", stream.Metadata{}, err
	}

	err = p.ws.Close()
	if err != nil {
		return "", stream.Metadata{}, err
	}

	return p.stream.String(), p.stream.Metadata, nil
}

func loadSaved(path string) (text string, meta stream.Metadata, err error) {
	meta, err = stream.LoadMetadata(filepath.Dir(path))
	if err != nil {
		slog.Warn("no usable metadata beside stream", slog.Any("error", err))

		meta = stream.Metadata{}
	}

	r, err := stream.Open(path)
	if err != nil {
		return "", stream.Metadata{}, err
	}

	defer func() {
		err = errors.Join(err, r.Close())
	}()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", stream.Metadata{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return string(b), meta, nil
}

// tickMsg signals that it is time to advance to the next frame.
type tickMsg struct{}

// logMsg carries a status line published by the logger.
type logMsg string

// previewModel shows one decoded frame at a time with a status line.
type previewModel struct {
	sub      *log.Subscription
	status   string
	frames   []string
	interval time.Duration
	index    int
	loop     bool
	paused   bool
	done     bool
}

func newPreviewModel(frames []string, fps float64, loop bool, pub *log.Publisher) *previewModel {
	return &previewModel{
		frames:   frames,
		interval: time.Duration(float64(time.Second) / fps),
		loop:     loop,
		sub:      pub.Subscribe(),
		status:   pub.Last(),
	}
}

func (m *previewModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *previewModel) waitLog() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-m.sub.C()
		if !ok {
			return nil
		}

		return logMsg(line)
	}
}

// Init starts playback and the log feed.
func (m *previewModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitLog())
}

// Update handles key, tick, and log messages.
func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "space":
			m.paused = !m.paused
			if !m.paused && m.done {
				m.done = false
				m.index = 0
			}

			if !m.paused {
				return m, m.tick()
			}

		case "right", "l":
			if m.paused {
				m.step(1)
			}

		case "left", "h":
			if m.paused {
				m.step(-1)
			}
		}

	case logMsg:
		m.status = string(msg)

		return m, m.waitLog()

	case tickMsg:
		if m.paused || m.done {
			return m, nil
		}

		if m.index+1 >= len(m.frames) && !m.loop {
			m.done = true

			return m, nil
		}

		m.step(1)

		return m, m.tick()
	}

	return m, nil
}

// step moves by delta frames, wrapping at either end.
func (m *previewModel) step(delta int) {
	n := len(m.frames)
	m.index = ((m.index+delta)%n + n) % n
}

// View renders the current frame and the status line.
func (m *previewModel) View() tea.View {
	var sb strings.Builder

	sb.WriteString(m.frames[m.index])
	sb.WriteString(m.statusLine())

	v := tea.NewView(sb.String())
	v.AltScreen = true

	return v
}

func (m *previewModel) statusLine() string {
	parts := []string{fmt.Sprintf("frame %d/%d", m.index+1, len(m.frames))}

	switch {
	case m.paused:
		parts = append(parts, "paused")
	case m.done:
		parts = append(parts, "done")
	}

	if m.status != "" {
		parts = append(parts, m.status)
	}

	return strings.Join(parts, " | ")
}
