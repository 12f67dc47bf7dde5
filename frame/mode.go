package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/termplay/resolution"
)

// ErrUnknownMode indicates an unrecognized encoding mode string.
var ErrUnknownMode = errors.New("unknown mode")

// Mode selects how a cell is drawn.
type Mode int

const (
	// ModeTrueColor draws each cell as a space on a 24-bit background color.
	ModeTrueColor Mode = iota
	// ModeReduced draws each cell as a glyph chosen by intensity, in a 24-bit
	// foreground color.
	ModeReduced
)

var modeNames = map[Mode]string{
	ModeTrueColor: "truecolor",
	ModeReduced:   "reduced",
}

// String returns the flag value for m.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode string. It is case insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "truecolor", "color":
		return ModeTrueColor, nil
	case "reduced", "ascii":
		return ModeReduced, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// GetAllModeStrings returns the canonical mode names.
func GetAllModeStrings() []string {
	return []string{ModeTrueColor.String(), ModeReduced.String()}
}

// Flags holds CLI flag names for encoder configuration.
type Flags struct {
	Mode   string
	Glyphs string
}

// Config holds CLI flag values for encoder configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewEncoder] once the grid is known.
type Config struct {
	Flags  Flags
	Mode   string
	Glyphs string
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Mode:   "mode",
			Glyphs: "glyphs",
		},
	}
}

// RegisterFlags adds encoder flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Mode, c.Flags.Mode, "m", ModeTrueColor.String(),
		fmt.Sprintf("cell encoding, one of: %s", GetAllModeStrings()))
	flags.StringVar(&c.Glyphs, c.Flags.Glyphs, DefaultGlyphs,
		"glyph ramp for reduced mode, ordered dark to bright")
}

// RegisterCompletions registers shell completions for encoder flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Mode,
		cobra.FixedCompletions(GetAllModeStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Mode, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Glyphs, cobra.NoFileCompletions)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Glyphs, err)
	}

	return nil
}

// NewEncoder creates an [Encoder] for grid using the configured mode and
// glyphs.
func (c *Config) NewEncoder(grid resolution.Grid) (*Encoder, error) {
	name := c.Mode
	if name == "" {
		name = ModeTrueColor.String()
	}

	mode, err := ParseMode(name)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithMode(mode)}
	if c.Glyphs != "" {
		opts = append(opts, WithGlyphs(c.Glyphs))
	}

	return NewEncoder(grid, opts...)
}
