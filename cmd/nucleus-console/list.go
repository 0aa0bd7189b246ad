package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"nucleus-console/pkg/engine"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON bool
		region string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the host registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			hosts := a.session.Hosts.List()
			if region != "" {
				var filtered []engine.Host
				for _, h := range hosts {
					if h.Region == region {
						filtered = append(filtered, h)
					}
				}
				hosts = filtered
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if hosts == nil {
					hosts = []engine.Host{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(hosts)
			}
			for _, g := range engine.GroupByRegion(hosts) {
				fmt.Fprintf(out, "%s (%d nodes)\n", g.Region, len(g.Hosts))
				for _, h := range g.Hosts {
					fmt.Fprintf(out, "%-12s%s\n", h.ID, engine.FormatHostRow(h))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print hosts as JSON")
	cmd.Flags().StringVar(&region, "region", "", "Only list hosts in this region")
	return cmd
}
