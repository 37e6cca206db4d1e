package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bamsammich/crtcopy/internal/config"
)

func newConfigCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the config file path and the defaults it sets",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "# %s\n", config.Path())
			return config.Encode(stdout, cfg)
		},
	}
}
