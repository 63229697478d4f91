package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBackendsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "Show registered GPU backends and whether they can run here",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.newDetector(a.config)

			available := make(map[string]bool)
			for _, name := range d.AvailableBackends() {
				available[name] = true
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BACKEND\tAVAILABLE")
			for _, name := range d.Backends() {
				fmt.Fprintf(tw, "%s\t%t\n", name, available[name])
			}
			return tw.Flush()
		},
	}
}
