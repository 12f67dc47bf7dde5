package stream

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for stream persistence.
type Flags struct {
	Output string
	Format string
	Keep   string
}

// Config holds CLI flag values for stream persistence.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags].
type Config struct {
	Flags  Flags
	Output string
	Format string
	Keep   bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Output: "output",
			Format: "format",
			Keep:   "keep",
		},
	}
}

// RegisterFlags adds persistence flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Output, c.Flags.Output, "o", "",
		"directory to save the stream to (default: the temporary workspace)")
	flags.StringVar(&c.Format, c.Flags.Format, string(FormatBzip2),
		fmt.Sprintf("compression of saved streams, one of: %s", GetAllFormatStrings()))
	flags.BoolVar(&c.Keep, c.Flags.Keep, false,
		"keep the workspace and save the stream and metadata into it")
}

// RegisterCompletions registers shell completions for persistence flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Format, err)
	}

	err = cmd.MarkFlagDirname(c.Flags.Output)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Output, err)
	}

	return nil
}

// ParsedFormat returns the configured [Format], defaulting to [FormatBzip2].
func (c *Config) ParsedFormat() (Format, error) {
	if c.Format == "" {
		return FormatBzip2, nil
	}

	return ParseFormat(c.Format)
}

// Persist reports whether the stream should be saved.
func (c *Config) Persist() bool {
	return c.Keep || c.Output != ""
}
