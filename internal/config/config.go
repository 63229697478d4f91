// Package config provides configuration management for gpuinfo.
// It handles loading, saving, and validating configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = "config"
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "gpuinfo.yaml"
	// ConfigDirEnv overrides the configuration directory
	ConfigDirEnv = "GPUINFO_CONFIG_DIR"
)

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log" json:"log"`
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector" json:"detector"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" json:"level"`                  // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format" json:"format"`               // json, text
	Output     string `mapstructure:"output" yaml:"output" json:"output"`               // stdout, file, both
	Directory  string `mapstructure:"directory" yaml:"directory" json:"directory"`      // log directory
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size" json:"maxSize"`          // MB
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"maxBackups"` // number of backup files
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age" json:"maxAge"`             // days
	Compress   bool   `mapstructure:"compress" yaml:"compress" json:"compress"`         // compress old logs
}

// DetectorConfig selects and tunes the GPU backends
type DetectorConfig struct {
	Backend            string   `mapstructure:"backend" yaml:"backend" json:"backend"`                                        // auto, vulkan, nvidia-smi, rocminfo
	VulkanLibraryPaths []string `mapstructure:"vulkan_library_paths" yaml:"vulkan_library_paths" json:"vulkanLibraryPaths"` // empty = platform defaults
	CommandTimeout     int      `mapstructure:"command_timeout" yaml:"command_timeout" json:"commandTimeout"`               // seconds
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host" yaml:"host" json:"host"`
	Port         int    `mapstructure:"port" yaml:"port" json:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout" yaml:"read_timeout" json:"readTimeout"`    // seconds
	WriteTimeout int    `mapstructure:"write_timeout" yaml:"write_timeout" json:"writeTimeout"` // seconds
}

// OutputConfig controls how reports are printed by the CLI
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // table, json, yaml
}

// CommandTimeoutDuration returns the vendor tool timeout as a duration
func (d DetectorConfig) CommandTimeoutDuration() time.Duration {
	return time.Duration(d.CommandTimeout) * time.Second
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			Directory:  "logs",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
		Detector: DetectorConfig{
			Backend:        "auto",
			CommandTimeout: 10,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         9290,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true, "fatal": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
	validLogOutputs = map[string]bool{"stdout": true, "file": true, "both": true}
	validBackends   = map[string]bool{"auto": true, "vulkan": true, "nvidia-smi": true, "rocminfo": true}
	validOutputs    = map[string]bool{"table": true, "json": true, "yaml": true}
)

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate log settings
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, error, or fatal)", c.Log.Level)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}
	if !validLogOutputs[c.Log.Output] {
		return fmt.Errorf("invalid log output: %s (must be stdout, file, or both)", c.Log.Output)
	}
	if c.Log.Output != "stdout" && c.Log.Directory == "" {
		return fmt.Errorf("log directory cannot be empty when logging to file")
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		return fmt.Errorf("log rotation limits cannot be negative")
	}

	// Validate detector settings
	if !validBackends[c.Detector.Backend] {
		return fmt.Errorf("invalid GPU backend: %s (must be auto, vulkan, nvidia-smi, or rocminfo)", c.Detector.Backend)
	}
	for _, path := range c.Detector.VulkanLibraryPaths {
		if path == "" {
			return fmt.Errorf("vulkan library path cannot be empty")
		}
	}
	if c.Detector.CommandTimeout < 1 {
		return fmt.Errorf("command timeout must be at least 1 second")
	}

	// Validate server settings
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts cannot be negative")
	}

	// Validate output settings
	if !validOutputs[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be table, json, or yaml)", c.Output.Format)
	}

	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	// Allow override via environment variable
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return DefaultConfigDir
}

// Manager manages configuration loading and saving
type Manager struct {
	config     *Config
	configPath string
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		configPath: filepath.Join(GetConfigDir(), DefaultConfigFile),
	}
}

// NewManagerWithPath creates a new configuration manager with a custom config path
func NewManagerWithPath(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
