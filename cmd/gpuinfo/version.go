package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shepherd-project/gpuinfo/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo().FullString())
			return nil
		},
	}
}
