package audio

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for audio configuration.
type Flags struct {
	Path    string
	Disable string
}

// Config holds CLI flag values for audio configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags].
type Config struct {
	Flags   Flags
	Path    string
	Disable bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Path:    "audio",
			Disable: "no-audio",
		},
	}
}

// RegisterFlags adds audio flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Path, c.Flags.Path, "a", "",
		"audio file to play instead of the movie's sound track")
	flags.BoolVar(&c.Disable, c.Flags.Disable, false,
		"play without audio")
}

// RegisterCompletions registers shell completions for audio flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	return cmd.MarkFlagFilename(c.Flags.Path, "wav", "mp3")
}

// TrackPath returns the track to play: none if audio is disabled, else the
// configured file, else fallback.
func (c *Config) TrackPath(fallback string) string {
	switch {
	case c.Disable:
		return ""
	case c.Path != "":
		return c.Path
	}

	return fallback
}

// Extract reports whether sound tracks should be extracted from movies.
func (c *Config) Extract() bool {
	return !c.Disable && c.Path == ""
}

// NewCoordinator creates a [Coordinator] for the track chosen by
// [Config.TrackPath].
func (c *Config) NewCoordinator(fallback string, opts ...CoordinatorOption) *Coordinator {
	return NewCoordinator(c.TrackPath(fallback), opts...)
}
