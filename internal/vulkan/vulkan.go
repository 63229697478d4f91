// Package vulkan loads the system Vulkan loader at runtime and exposes the
// small slice of the instance-level API needed to enumerate physical devices.
//
// Nothing here links against libvulkan. The loader is opened with dlopen (or
// LoadLibrary on Windows) and entry points are resolved through
// vkGetInstanceProcAddr, so a host without a driver is reported as an error
// value instead of a failed process start.
//
// The structs in this file mirror the 64-bit C layouts byte for byte and are
// passed to the driver by pointer.
package vulkan

import "fmt"

// Limits from vulkan_core.h.
const (
	MaxPhysicalDeviceNameSize = 256
	UUIDSize                  = 16
	MaxMemoryTypes            = 32
	MaxMemoryHeaps            = 16
)

// APIVersion10 is VK_API_VERSION_1_0.
var APIVersion10 = MakeAPIVersion(0, 1, 0, 0)

// MakeAPIVersion packs a version the way VK_MAKE_API_VERSION does.
func MakeAPIVersion(variant, major, minor, patch uint32) uint32 {
	return variant<<29 | major<<22 | minor<<12 | patch
}

// PhysicalDevice is an opaque VkPhysicalDevice handle. It is owned by the
// instance that enumerated it and becomes invalid once that instance is
// destroyed.
type PhysicalDevice uintptr

// PhysicalDeviceType is VkPhysicalDeviceType.
type PhysicalDeviceType int32

const (
	PhysicalDeviceTypeOther         PhysicalDeviceType = 0
	PhysicalDeviceTypeIntegratedGPU PhysicalDeviceType = 1
	PhysicalDeviceTypeDiscreteGPU   PhysicalDeviceType = 2
	PhysicalDeviceTypeVirtualGPU    PhysicalDeviceType = 3
	PhysicalDeviceTypeCPU           PhysicalDeviceType = 4
)

func (t PhysicalDeviceType) String() string {
	switch t {
	case PhysicalDeviceTypeOther:
		return "VK_PHYSICAL_DEVICE_TYPE_OTHER"
	case PhysicalDeviceTypeIntegratedGPU:
		return "VK_PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU"
	case PhysicalDeviceTypeDiscreteGPU:
		return "VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU"
	case PhysicalDeviceTypeVirtualGPU:
		return "VK_PHYSICAL_DEVICE_TYPE_VIRTUAL_GPU"
	case PhysicalDeviceTypeCPU:
		return "VK_PHYSICAL_DEVICE_TYPE_CPU"
	default:
		return fmt.Sprintf("VkPhysicalDeviceType(%d)", int32(t))
	}
}

// MemoryHeapFlags is VkMemoryHeapFlags.
type MemoryHeapFlags uint32

const (
	MemoryHeapDeviceLocalBit   MemoryHeapFlags = 0x00000001
	MemoryHeapMultiInstanceBit MemoryHeapFlags = 0x00000002
)

// Has reports whether every bit in flag is set.
func (f MemoryHeapFlags) Has(flag MemoryHeapFlags) bool {
	return f&flag == flag
}

const (
	physicalDeviceLimitsSize           = 504
	physicalDeviceSparsePropertiesSize = 20
)

// PhysicalDeviceProperties is VkPhysicalDeviceProperties. Limits and sparse
// properties are kept as opaque bytes; only the header fields are decoded.
type PhysicalDeviceProperties struct {
	APIVersion        uint32
	DriverVersion     uint32
	VendorID          uint32
	DeviceID          uint32
	DeviceType        PhysicalDeviceType
	DeviceName        [MaxPhysicalDeviceNameSize]byte
	PipelineCacheUUID [UUIDSize]byte
	_                 [4]byte
	Limits            [physicalDeviceLimitsSize]byte
	SparseProperties  [physicalDeviceSparsePropertiesSize]byte
	_                 [4]byte
}

// MemoryType is VkMemoryType.
type MemoryType struct {
	PropertyFlags uint32
	HeapIndex     uint32
}

// MemoryHeap is VkMemoryHeap.
type MemoryHeap struct {
	Size  uint64
	Flags MemoryHeapFlags
	_     uint32
}

// PhysicalDeviceMemoryProperties is VkPhysicalDeviceMemoryProperties. Only
// the first MemoryTypeCount types and MemoryHeapCount heaps are meaningful.
type PhysicalDeviceMemoryProperties struct {
	MemoryTypeCount uint32
	MemoryTypes     [MaxMemoryTypes]MemoryType
	MemoryHeapCount uint32
	MemoryHeaps     [MaxMemoryHeaps]MemoryHeap
}

// ApplicationInfo describes the application to the driver. Strings are
// copied into NUL-terminated buffers for the duration of the create call.
type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32
}

// InstanceCreateInfo is the Go-side description of VkInstanceCreateInfo.
// Layers and extensions are never requested.
type InstanceCreateInfo struct {
	ApplicationInfo *ApplicationInfo
}
