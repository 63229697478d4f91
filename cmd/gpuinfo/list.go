package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shepherd-project/gpuinfo/internal/gpu"
	"github.com/shepherd-project/gpuinfo/internal/report"
)

func newListCmd(a *app) *cobra.Command {
	var backend, format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the GPUs on this host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if backend == "" {
				backend = a.config.Detector.Backend
			}
			if format == "" {
				format = a.config.Output.Format
			}

			r, err := report.Collect(cmd.Context(), a.newDetector(a.config), backend)
			if gpu.IsNotSupported(err) {
				return &exitError{
					code: exitNotSupported,
					err:  fmt.Errorf("no data available: %w", err),
				}
			}
			if err != nil {
				return err
			}
			return r.Encode(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&backend, "backend", "b", "", "GPU backend (auto, vulkan, nvidia-smi, rocminfo)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (table, json, yaml)")
	return cmd
}
