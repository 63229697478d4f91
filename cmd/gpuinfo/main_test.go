package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepherd-project/gpuinfo/internal/config"
	"github.com/shepherd-project/gpuinfo/internal/gpu"
)

type stubProvider struct {
	name      string
	available bool
	gpus      []gpu.GPU
	err       error
}

func (p *stubProvider) Name() string      { return p.name }
func (p *stubProvider) IsAvailable() bool { return p.available }

func (p *stubProvider) Detect(ctx context.Context) ([]gpu.GPU, error) {
	return p.gpus, p.err
}

// runCLI executes the root command with providers standing in for the real
// backends and returns stdout.
func runCLI(t *testing.T, providers []gpu.Provider, args ...string) (string, error) {
	t.Helper()

	a := newApp()
	a.newDetector = func(cfg *config.Config) detector {
		return gpu.NewDetectorWithProviders(nil, providers...)
	}

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "gpuinfo.yaml")}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func vulkanProvider() *stubProvider {
	return &stubProvider{
		name:      gpu.BackendVulkan,
		available: true,
		gpus: []gpu.GPU{{
			Kind:          gpu.KindDiscrete,
			Name:          "AMD Radeon RX 7900 XTX",
			Vendor:        "AMD",
			DriverVersion: "2.0.279",
			VRAM:          24560,
		}},
	}
}

func TestListJSON(t *testing.T) {
	out, err := runCLI(t, []gpu.Provider{vulkanProvider()}, "list", "--format", "json")
	require.NoError(t, err)

	var decoded struct {
		Backend string    `json:"backend"`
		GPUs    []gpu.GPU `json:"gpus"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "vulkan", decoded.Backend)
	require.Len(t, decoded.GPUs, 1)
	assert.Equal(t, "AMD", decoded.GPUs[0].Vendor)
	assert.Equal(t, uint64(24560), decoded.GPUs[0].VRAM)
}

func TestListTableByDefault(t *testing.T) {
	out, err := runCLI(t, []gpu.Provider{vulkanProvider()}, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "AMD Radeon RX 7900 XTX")
	assert.Contains(t, out, "VENDOR")
}

func TestListNotSupportedExitCode(t *testing.T) {
	_, err := runCLI(t, []gpu.Provider{&stubProvider{name: gpu.BackendVulkan}}, "list")
	require.Error(t, err)

	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitNotSupported, exitErr.code)
	assert.Contains(t, err.Error(), "no data available")
	assert.True(t, gpu.IsNotSupported(err))
}

func TestListOperationFailed(t *testing.T) {
	failing := &stubProvider{
		name:      gpu.BackendVulkan,
		available: true,
		err:       &gpu.OperationFailedError{Op: "create instance", Detail: "VK_ERROR_INCOMPATIBLE_DRIVER"},
	}
	_, err := runCLI(t, []gpu.Provider{failing}, "list")
	require.Error(t, err)

	var exitErr *exitError
	assert.False(t, errors.As(err, &exitErr))
	assert.True(t, gpu.IsOperationFailed(err))
}

func TestListUnknownFormat(t *testing.T) {
	_, err := runCLI(t, []gpu.Provider{vulkanProvider()}, "list", "--format", "xml")
	assert.Error(t, err)
}

func TestBackends(t *testing.T) {
	out, err := runCLI(t, []gpu.Provider{
		vulkanProvider(),
		&stubProvider{name: gpu.BackendRocminfo},
	}, "backends")
	require.NoError(t, err)
	assert.Regexp(t, `vulkan\s+true`, out)
	assert.Regexp(t, `rocminfo\s+false`, out)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpuinfo.yaml")

	a := newApp()
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "config", "init"})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, path)

	cmd = newRootCmd(newApp())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "config", "init"})
	assert.Error(t, cmd.Execute(), "existing file is not overwritten without --force")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: auto")

	out.Reset()
	cmd = newRootCmd(newApp())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "--log-level", "debug", "config", "show"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "level: debug")
	assert.Contains(t, out.String(), "port: 9290")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runCLI(t, nil, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gpuinfo")
}
