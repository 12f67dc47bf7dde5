package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func (a *app) encodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <movie|frame-dir>...",
		Short: "Encode movies to a saved stream without playing",
		Long: `Encode extracts and encodes each movie or frame directory, then saves the
compressed stream, its metadata, and the sound track for later playback with
"termplay play".

The stream is written to --output, or to a kept working directory when
--output is unset.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			_, err = a.stream.ParsedFormat()
			if err != nil {
				return err
			}

			p, err := a.prepare(cmd.Context(), args)
			if err != nil {
				return err
			}

			defer func() {
				err = errors.Join(err, p.ws.Close())
			}()

			return a.save(p)
		},
	}

	a.frame.RegisterFlags(cmd.Flags())
	a.playback.RegisterFlags(cmd.Flags())
	a.audio.RegisterFlags(cmd.Flags())
	a.stream.RegisterFlags(cmd.Flags())

	a.registerCompletions(cmd)

	return cmd
}
