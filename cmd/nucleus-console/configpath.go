package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nucleus-console/pkg/config"
)

func newConfigPathCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config-path",
		Short: "Print the resolved config path and the search order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := loadConfig(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path == "" {
				fmt.Fprintln(out, "config: (none, using defaults)")
			} else {
				fmt.Fprintf(out, "config: %s\n", path)
			}
			fmt.Fprintln(out, "candidates:")
			for _, p := range config.ConfigPathCandidates(flags.config) {
				fmt.Fprintf(out, "  %s\n", p)
			}
			fmt.Fprintf(out, "data dir: %s\n", config.DefaultConfigDir())
			return nil
		},
	}
}
