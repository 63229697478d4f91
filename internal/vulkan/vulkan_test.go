package vulkan

import (
	"errors"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNot64Bit(t *testing.T) {
	t.Helper()
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("C layouts are checked for 64-bit targets only")
	}
}

// TestPhysicalDevicePropertiesLayout checks the struct matches the C ABI.
func TestPhysicalDevicePropertiesLayout(t *testing.T) {
	skipIfNot64Bit(t)

	var p PhysicalDeviceProperties
	assert.Equal(t, uintptr(824), unsafe.Sizeof(p))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(p.VendorID))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(p.DeviceType))
	assert.Equal(t, uintptr(20), unsafe.Offsetof(p.DeviceName))
	assert.Equal(t, uintptr(276), unsafe.Offsetof(p.PipelineCacheUUID))
	assert.Equal(t, uintptr(296), unsafe.Offsetof(p.Limits))
	assert.Equal(t, uintptr(800), unsafe.Offsetof(p.SparseProperties))
}

// TestPhysicalDeviceMemoryPropertiesLayout checks the struct matches the C ABI.
func TestPhysicalDeviceMemoryPropertiesLayout(t *testing.T) {
	skipIfNot64Bit(t)

	var m PhysicalDeviceMemoryProperties
	assert.Equal(t, uintptr(520), unsafe.Sizeof(m))
	assert.Equal(t, uintptr(4), unsafe.Offsetof(m.MemoryTypes))
	assert.Equal(t, uintptr(260), unsafe.Offsetof(m.MemoryHeapCount))
	assert.Equal(t, uintptr(264), unsafe.Offsetof(m.MemoryHeaps))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(MemoryHeap{}))
	assert.Equal(t, uintptr(8), unsafe.Sizeof(MemoryType{}))
}

func TestCreateInfoLayout(t *testing.T) {
	skipIfNot64Bit(t)

	var app applicationInfo
	assert.Equal(t, uintptr(48), unsafe.Sizeof(app))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(app.pApplicationName))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(app.applicationVersion))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(app.pEngineName))
	assert.Equal(t, uintptr(40), unsafe.Offsetof(app.engineVersion))
	assert.Equal(t, uintptr(44), unsafe.Offsetof(app.apiVersion))

	var info instanceCreateInfo
	assert.Equal(t, uintptr(64), unsafe.Sizeof(info))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(info.flags))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(info.pApplicationInfo))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(info.enabledLayerCount))
	assert.Equal(t, uintptr(48), unsafe.Offsetof(info.enabledExtensionCount))
	assert.Equal(t, uintptr(56), unsafe.Offsetof(info.ppEnabledExtensionNames))
}

func TestMakeAPIVersion(t *testing.T) {
	assert.Equal(t, uint32(1<<22), APIVersion10)
	assert.Equal(t, uint32(1<<22|3<<12|250), MakeAPIVersion(0, 1, 3, 250))
}

func TestResult(t *testing.T) {
	tests := []struct {
		result  Result
		name    string
		isError bool
	}{
		{Success, "VK_SUCCESS", false},
		{Incomplete, "VK_INCOMPLETE", false},
		{ErrorInitializationFailed, "VK_ERROR_INITIALIZATION_FAILED", true},
		{ErrorIncompatibleDriver, "VK_ERROR_INCOMPATIBLE_DRIVER", true},
		{ErrorUnknown, "VK_ERROR_UNKNOWN", true},
		{Result(-1000001004), "VkResult(-1000001004)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.result.String())
			assert.Equal(t, tt.isError, tt.result.IsError())
			assert.Contains(t, tt.result.Error(), tt.name)
		})
	}

	var err error = ErrorOutOfHostMemory
	var res Result
	require.True(t, errors.As(err, &res))
	assert.Equal(t, ErrorOutOfHostMemory, res)
	assert.Equal(t, "VK_ERROR_OUT_OF_HOST_MEMORY: a host memory allocation has failed", err.Error())
}

func TestPhysicalDeviceTypeString(t *testing.T) {
	assert.Equal(t, "VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU", PhysicalDeviceTypeDiscreteGPU.String())
	assert.Equal(t, "VK_PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU", PhysicalDeviceTypeIntegratedGPU.String())
	assert.Equal(t, "VkPhysicalDeviceType(9)", PhysicalDeviceType(9).String())
}

func TestMemoryHeapFlagsHas(t *testing.T) {
	f := MemoryHeapDeviceLocalBit | MemoryHeapMultiInstanceBit
	assert.True(t, f.Has(MemoryHeapDeviceLocalBit))
	assert.True(t, MemoryHeapFlags(0x1).Has(MemoryHeapDeviceLocalBit))
	assert.False(t, MemoryHeapFlags(0x2).Has(MemoryHeapDeviceLocalBit))
	assert.False(t, MemoryHeapFlags(0).Has(MemoryHeapDeviceLocalBit))
}

func TestDefaultLibraryNames(t *testing.T) {
	names := DefaultLibraryNames()
	require.NotEmpty(t, names)
	for _, n := range names {
		assert.Contains(t, n, "vulkan")
	}
}

// TestLoad_MissingLibrary checks that an absent loader is reported as
// ErrLibraryNotFound rather than a crash.
func TestLoad_MissingLibrary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "libvulkan-does-not-exist.so")

	lib, err := Load(missing)
	assert.Nil(t, lib)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLibraryNotFound))
	assert.Contains(t, err.Error(), missing)
}

// TestLoad_System exercises the real loader when one is installed.
func TestLoad_System(t *testing.T) {
	lib, err := Load()
	if errors.Is(err, ErrLibraryNotFound) || errors.Is(err, ErrMissingEntryPoint) {
		t.Skipf("no usable Vulkan loader: %v", err)
	}
	require.NoError(t, err)
	defer lib.Close()

	inst, err := lib.CreateInstance(&InstanceCreateInfo{
		ApplicationInfo: &ApplicationInfo{
			ApplicationName: "gpuinfo-test",
			EngineName:      "gpuinfo-test",
			APIVersion:      APIVersion10,
		},
	})
	if err != nil {
		t.Skipf("instance creation failed: %v", err)
	}
	defer inst.Destroy()

	devices, err := inst.EnumeratePhysicalDevices()
	require.NoError(t, err)
	for _, d := range devices {
		props := inst.PhysicalDeviceProperties(d)
		mem := inst.PhysicalDeviceMemoryProperties(d)
		assert.LessOrEqual(t, mem.MemoryHeapCount, uint32(MaxMemoryHeaps))
		t.Logf("vendor=%#x type=%s heaps=%d", props.VendorID, props.DeviceType, mem.MemoryHeapCount)
	}

	inst.Destroy()
	assert.NoError(t, lib.Close())
	assert.NoError(t, lib.Close())
}
