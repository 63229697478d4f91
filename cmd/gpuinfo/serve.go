package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shepherd-project/gpuinfo/internal/logger"
	"github.com/shepherd-project/gpuinfo/internal/server"
	"github.com/shepherd-project/gpuinfo/internal/shutdown"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GPU inventory over HTTP until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			srv := server.NewServer(cfg, a.newDetector(a.config), a.config.Detector.Backend)
			if err := srv.Start(); err != nil {
				return err
			}

			shutdownMgr := shutdown.NewManager(shutdownTimeout)
			shutdownMgr.Register("http-server", func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			}, shutdown.PriorityCritical)

			shutdownMgr.Start()
			logger.Infof("Press Ctrl+C to stop")
			shutdownMgr.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
