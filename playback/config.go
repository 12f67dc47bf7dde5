package playback

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/termplay/resolution"
)

// DefaultFPS is the frame rate of a persisted stream with no metadata.
const DefaultFPS = 24

// Flags holds CLI flag names for playback configuration.
type Flags struct {
	FPS        string
	Loop       string
	Resolution string
}

// Config holds CLI flag values for playback configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags].
type Config struct {
	Flags      Flags
	Resolution string
	FPS        float64
	Loop       bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			FPS:        "fps",
			Loop:       "loop",
			Resolution: "resolution",
		},
	}
}

// RegisterFlags adds playback flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.Float64Var(&c.FPS, c.Flags.FPS, 0,
		fmt.Sprintf("playback frame rate (default: the source rate, or %d for a saved stream without metadata)", DefaultFPS))
	flags.BoolVarP(&c.Loop, c.Flags.Loop, "l", false,
		"loop playback until interrupted")
	flags.StringVarP(&c.Resolution, c.Flags.Resolution, "r", "",
		"encode at COLSxROWS instead of the terminal size, and resize the terminal to it before playing a saved stream")
}

// RegisterCompletions registers shell completions for playback flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	for _, name := range []string{c.Flags.FPS, c.Flags.Resolution} {
		err := cmd.RegisterFlagCompletionFunc(name, cobra.NoFileCompletions)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// FrameRate returns the configured frame rate, falling back to source and
// then [DefaultFPS] when unset.
func (c *Config) FrameRate(source float64) float64 {
	switch {
	case c.FPS > 0:
		return c.FPS
	case source > 0:
		return source
	}

	return DefaultFPS
}

// Grid returns the configured grid, if any.
func (c *Config) Grid() (resolution.Grid, bool, error) {
	if c.Resolution == "" {
		return resolution.Grid{}, false, nil
	}

	g, err := resolution.ParseGrid(c.Resolution)
	if err != nil {
		return resolution.Grid{}, false, err
	}

	return g, true, nil
}

// NewScheduler creates a [Scheduler] writing to w at fps with the
// configured loop mode.
func (c *Config) NewScheduler(w io.Writer, fps float64, opts ...Option) (*Scheduler, error) {
	return NewScheduler(w, fps, append([]Option{WithLoop(c.Loop)}, opts...)...)
}
