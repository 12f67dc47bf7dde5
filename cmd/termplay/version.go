package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/termplay/version"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			out, err := version.Get().YAML()
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(a.stdout, string(out))

			return err
		},
	}
}
