// Package gpu enumerates the GPUs installed on the host and normalizes their
// properties into a vendor-neutral GPU record.
//
// The primary backend loads the Vulkan loader at runtime (see EnumerateGPUs).
// Vendor command-line tools are available as independent backends behind the
// same Provider interface, selected by name through a Detector.
package gpu

import (
	"context"
	"fmt"
	"time"
)

// Backend names.
const (
	BackendAuto      = "auto"
	BackendVulkan    = "vulkan"
	BackendNvidiaSMI = "nvidia-smi"
	BackendRocminfo  = "rocminfo"
)

// Provider defines the interface for GPU information backends.
// Each backend produces the same GPU records from a different source.
type Provider interface {
	// Name returns the backend name (e.g., "vulkan", "nvidia-smi")
	Name() string

	// IsAvailable checks if the backend can run on this system.
	// This should be a lightweight check (e.g., library or command existence).
	IsAvailable() bool

	// Detect discovers all GPUs visible to this backend.
	Detect(ctx context.Context) ([]GPU, error)
}

// Detector manages the registered backends and dispatches detection by name.
type Detector struct {
	providers []Provider
	logger    Logger
}

// Logger interface for GPU package logging.
// This avoids direct dependency on internal/logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (n noopLogger) Debugf(format string, args ...interface{}) {}
func (n noopLogger) Infof(format string, args ...interface{})  {}
func (n noopLogger) Errorf(format string, args ...interface{}) {}

// Config contains configuration for the GPU detector.
type Config struct {
	// Vulkan loader names or paths; empty means the platform defaults
	VulkanLibraryPaths []string
	// Timeout for each vendor tool invocation
	CommandTimeout time.Duration
	// Logger for logging (optional)
	Logger Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CommandTimeout: 10 * time.Second,
	}
}

// NewDetector creates a new GPU detector with all registered backends.
func NewDetector(cfg *Config) *Detector {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Detector{
		providers: registerProviders(cfg, logger),
		logger:    logger,
	}
}

// NewDetectorWithProviders creates a detector over the given providers, in
// the given order.
func NewDetectorWithProviders(logger Logger, providers ...Provider) *Detector {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Detector{providers: providers, logger: logger}
}

// Detect runs the named backend and returns the name of the backend that
// produced the result. BackendAuto (or "") picks the first available backend
// in registration order.
func (d *Detector) Detect(ctx context.Context, backend string) (string, []GPU, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	provider, err := d.selectProvider(backend)
	if err != nil {
		return "", nil, err
	}

	gpus, err := provider.Detect(ctx)
	if err != nil {
		d.logger.Errorf("Failed to detect GPUs via %s: %v", provider.Name(), err)
		return provider.Name(), nil, err
	}

	d.logger.Infof("Detected %d GPU(s) via %s", len(gpus), provider.Name())
	return provider.Name(), gpus, nil
}

func (d *Detector) selectProvider(backend string) (Provider, error) {
	if backend == "" || backend == BackendAuto {
		for _, provider := range d.providers {
			if provider.IsAvailable() {
				return provider, nil
			}
			d.logger.Debugf("GPU backend %s is not available", provider.Name())
		}
		return nil, fmt.Errorf("%w: no GPU backend available", ErrNotSupported)
	}

	for _, provider := range d.providers {
		if provider.Name() != backend {
			continue
		}
		if !provider.IsAvailable() {
			return nil, fmt.Errorf("%w: backend %s is not available", ErrNotSupported, backend)
		}
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// Backends returns the names of all registered backends.
func (d *Detector) Backends() []string {
	names := make([]string, 0, len(d.providers))
	for _, provider := range d.providers {
		names = append(names, provider.Name())
	}
	return names
}

// AvailableBackends returns the names of backends usable on this system.
func (d *Detector) AvailableBackends() []string {
	var names []string
	for _, provider := range d.providers {
		if provider.IsAvailable() {
			names = append(names, provider.Name())
		}
	}
	return names
}

// registerProviders returns all registered GPU backends.
// This is the central registry; order decides the "auto" choice.
func registerProviders(cfg *Config, logger Logger) []Provider {
	return []Provider{
		NewVulkanProvider(logger, cfg.VulkanLibraryPaths),
		NewNvidiaSMIProvider(logger, cfg.CommandTimeout),
		NewRocminfoProvider(logger, cfg.CommandTimeout),
	}
}
