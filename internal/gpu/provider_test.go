package gpu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name      string
	available bool
	gpus      []GPU
	err       error
	calls     int
}

func (s *stubProvider) Name() string      { return s.name }
func (s *stubProvider) IsAvailable() bool { return s.available }

func (s *stubProvider) Detect(ctx context.Context) ([]GPU, error) {
	s.calls++
	return s.gpus, s.err
}

func TestNewDetector_RegistersBackends(t *testing.T) {
	d := NewDetector(nil)
	assert.Equal(t, []string{"vulkan", "nvidia-smi", "rocminfo"}, d.Backends())
}

func TestDetector_AutoPicksFirstAvailable(t *testing.T) {
	vk := &stubProvider{name: BackendVulkan, available: false}
	smi := &stubProvider{name: BackendNvidiaSMI, available: true, gpus: []GPU{{Name: "A", Vendor: "NVIDIA"}}}
	rocm := &stubProvider{name: BackendRocminfo, available: true}
	d := NewDetectorWithProviders(nil, vk, smi, rocm)

	for _, backend := range []string{"", BackendAuto} {
		used, gpus, err := d.Detect(context.Background(), backend)
		require.NoError(t, err)
		assert.Equal(t, BackendNvidiaSMI, used)
		assert.Len(t, gpus, 1)
	}
	assert.Zero(t, vk.calls)
	assert.Equal(t, 2, smi.calls)
	assert.Zero(t, rocm.calls)
}

func TestDetector_AutoNothingAvailable(t *testing.T) {
	d := NewDetectorWithProviders(nil, &stubProvider{name: BackendVulkan})

	used, gpus, err := d.Detect(context.Background(), BackendAuto)
	assert.Empty(t, used)
	assert.Nil(t, gpus)
	assert.True(t, IsNotSupported(err))
}

func TestDetector_NamedBackend(t *testing.T) {
	vk := &stubProvider{name: BackendVulkan, available: true, gpus: []GPU{{Name: "A"}}}
	rocm := &stubProvider{name: BackendRocminfo, available: true, gpus: []GPU{{Name: "B"}, {Name: "C"}}}
	d := NewDetectorWithProviders(nil, vk, rocm)

	used, gpus, err := d.Detect(context.Background(), BackendRocminfo)
	require.NoError(t, err)
	assert.Equal(t, BackendRocminfo, used)
	assert.Len(t, gpus, 2)
	assert.Zero(t, vk.calls)
}

func TestDetector_NamedBackendUnavailable(t *testing.T) {
	d := NewDetectorWithProviders(nil, &stubProvider{name: BackendNvidiaSMI})

	_, _, err := d.Detect(context.Background(), BackendNvidiaSMI)
	assert.True(t, IsNotSupported(err))
}

func TestDetector_UnknownBackend(t *testing.T) {
	d := NewDetectorWithProviders(nil, &stubProvider{name: BackendVulkan, available: true})

	_, _, err := d.Detect(context.Background(), "opengl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
	assert.False(t, IsNotSupported(err))
}

func TestDetector_PropagatesProviderError(t *testing.T) {
	failure := &OperationFailedError{Op: "enumerate physical devices", Detail: "No Vulkan-compatible GPUs found."}
	d := NewDetectorWithProviders(nil, &stubProvider{name: BackendVulkan, available: true, err: failure})

	used, gpus, err := d.Detect(context.Background(), BackendVulkan)
	assert.Equal(t, BackendVulkan, used)
	assert.Nil(t, gpus)
	assert.True(t, IsOperationFailed(err))
}

func TestDetector_AvailableBackends(t *testing.T) {
	d := NewDetectorWithProviders(nil,
		&stubProvider{name: BackendVulkan, available: true},
		&stubProvider{name: BackendNvidiaSMI},
		&stubProvider{name: BackendRocminfo, available: true},
	)

	assert.Equal(t, []string{"vulkan", "nvidia-smi", "rocminfo"}, d.Backends())
	assert.Equal(t, []string{"vulkan", "rocminfo"}, d.AvailableBackends())
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindUnknown, KindIntegrated, KindDiscrete, KindVirtual, KindCPU} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var decoded Kind
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, k, decoded)
	}

	assert.Equal(t, "unknown", Kind(42).String())

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("quantum")))
}

func TestOperationFailedError(t *testing.T) {
	err := &OperationFailedError{Op: "create instance", Detail: "VK_ERROR_INITIALIZATION_FAILED"}
	assert.Equal(t, "gpu operation failed: create instance: VK_ERROR_INITIALIZATION_FAILED", err.Error())

	err = &OperationFailedError{Detail: "boom"}
	assert.Equal(t, "gpu operation failed: boom", err.Error())

	wrapped := errors.Join(errors.New("context"), err)
	assert.True(t, IsOperationFailed(wrapped))
	assert.False(t, IsOperationFailed(ErrNotSupported))
	assert.False(t, IsNotSupported(err))
}
