package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nucleus-console/pkg/console"
)

func newExecCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <command...>",
		Short: "Run one console command and print the lines it produces",
		Example: `  nucleus-console exec ls
  nucleus-console exec ping ose-com
  nucleus-console exec scan ose-com rootkit -v`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			log := a.session.Log
			start := log.Len()
			run, err := a.interp.Submit(ctx, strings.Join(args, " "))
			if run != nil {
				select {
				case <-run.Done():
				case <-ctx.Done():
					a.interp.Abort()
					<-run.Done()
				}
				if err == nil {
					err = run.Err()
				}
			}

			th := console.NoTheme()
			out := cmd.OutOrStdout()
			for _, l := range log.Since(start) {
				fmt.Fprintln(out, th.FormatLine(l))
			}
			return err
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
