package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shepherd-project/gpuinfo/internal/config"
	"github.com/shepherd-project/gpuinfo/internal/gpu"
	"github.com/shepherd-project/gpuinfo/internal/logger"
)

// Exit codes.
const (
	exitFailure      = 1
	exitNotSupported = 2
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// app holds state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	manager *config.Manager
	config  *config.Config

	newDetector func(cfg *config.Config) detector
}

// detector is the part of *gpu.Detector the commands use.
type detector interface {
	Detect(ctx context.Context, backend string) (string, []gpu.GPU, error)
	Backends() []string
	AvailableBackends() []string
}

func newApp() *app {
	return &app{newDetector: defaultDetector}
}

func defaultDetector(cfg *config.Config) detector {
	return gpu.NewDetector(&gpu.Config{
		VulkanLibraryPaths: cfg.Detector.VulkanLibraryPaths,
		CommandTimeout:     cfg.Detector.CommandTimeoutDuration(),
		Logger:             logger.GetLogger(),
	})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gpuinfo",
		Short:         "Enumerate GPUs through the Vulkan loader",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $GPUINFO_CONFIG_DIR/gpuinfo.yaml or config/gpuinfo.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newListCmd(a),
		newBackendsCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the config file and initializes the global logger.
func (a *app) setup() error {
	if a.configPath != "" {
		a.manager = config.NewManagerWithPath(a.configPath)
	} else {
		a.manager = config.NewManager()
	}

	cfg, err := a.manager.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.config = cfg

	if err := logger.InitLogger(&cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debugf("Loaded config from %s", a.manager.GetConfigPath())
	return nil
}

func main() {
	err := newRootCmd(newApp()).Execute()
	_ = logger.Close()
	if err == nil {
		return
	}

	code := exitFailure
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		code = exitErr.code
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
