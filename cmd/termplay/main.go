// Command termplay plays movies in the terminal as 24-bit ANSI color frames.
//
// Movies are split into still images with ffmpeg, encoded at a grid that
// fits the terminal, and replayed in real time with their sound track.
// Encoded streams can be saved compressed and replayed later without
// re-encoding.
//
// # Usage
//
//	termplay play [flags] <movie|frame-dir>...
//	termplay play [flags] <output.bz2|output.gz>
//	termplay encode [flags] <movie|frame-dir>...
//	termplay preview [flags] <movie|frame-dir|output.bz2>...
//	termplay version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/termplay/audio"
	"go.jacobcolvin.com/termplay/frame"
	"go.jacobcolvin.com/termplay/log"
	"go.jacobcolvin.com/termplay/playback"
	"go.jacobcolvin.com/termplay/profile"
	"go.jacobcolvin.com/termplay/stream"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, os.Stderr)
	rootCmd := a.rootCmd()

	err := rootCmd.ExecuteContext(ctx)

	stopErr := a.profiler.Stop()
	if stopErr != nil {
		fmt.Fprintf(os.Stderr, "stopping profiler: %v\n", stopErr)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}

// app holds the configuration shared by all commands.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	profiler *profile.Profiler

	log      *log.Config
	profile  *profile.Config
	frame    *frame.Config
	playback *playback.Config
	audio    *audio.Config
	stream   *stream.Config
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		stdout:   stdout,
		stderr:   stderr,
		log:      log.NewConfig(),
		profile:  profile.NewConfig(),
		frame:    frame.NewConfig(),
		playback: playback.NewConfig(),
		audio:    audio.NewConfig(),
		stream:   stream.NewConfig(),
	}
	a.profiler = a.profile.NewProfiler()

	return a
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "termplay",
		Short: "Play movies in the terminal",
		Long: `termplay encodes movies as 24-bit ANSI color frames sized to the terminal
and plays them in real time, dropping frames rather than falling behind the
sound track.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			handler, err := a.log.NewHandler(a.stderr)
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(handler))

			a.profiler = a.profile.NewProfiler()

			return a.profiler.Start()
		},
	}

	a.log.RegisterFlags(rootCmd.PersistentFlags())
	a.profile.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(a.playCmd(), a.encodeCmd(), a.previewCmd(), a.versionCmd())

	err := errors.Join(
		a.log.RegisterCompletions(rootCmd),
		a.profile.RegisterCompletions(rootCmd),
	)
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return rootCmd
}
