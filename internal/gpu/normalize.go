package gpu

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/shepherd-project/gpuinfo/internal/vulkan"
)

// Unknown is the placeholder used for names and vendors that cannot be
// resolved. Name and Vendor are never empty.
const Unknown = "Unknown"

// PCI vendor IDs recognized by VendorName. Extend this table to add vendors.
var vendorNames = map[uint32]string{
	0x8086: "Intel",
	0x10DE: "NVIDIA",
	0x1002: "AMD",
}

var deviceKinds = map[vulkan.PhysicalDeviceType]Kind{
	vulkan.PhysicalDeviceTypeIntegratedGPU: KindIntegrated,
	vulkan.PhysicalDeviceTypeDiscreteGPU:   KindDiscrete,
	vulkan.PhysicalDeviceTypeVirtualGPU:    KindVirtual,
	vulkan.PhysicalDeviceTypeCPU:           KindCPU,
}

const bytesPerMegabyte = 1024 * 1024

// VendorName maps a PCI vendor ID to a vendor name, or Unknown.
func VendorName(vendorID uint32) string {
	if name, ok := vendorNames[vendorID]; ok {
		return name
	}
	return Unknown
}

// DecodeDeviceName decodes a NUL-terminated UTF-8 name buffer. A buffer
// without a terminator is used whole. Invalid UTF-8 or an empty name gives
// Unknown.
func DecodeDeviceName(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if len(buf) == 0 || !utf8.Valid(buf) {
		return Unknown
	}
	return string(buf)
}

// DecodeDriverVersion unpacks a driver version as major.minor.patch using
// 10/10/12 bit fields. NVIDIA packs its versions differently; this layout is
// applied regardless of vendor.
func DecodeDriverVersion(v uint32) string {
	major := (v >> 22) & 0x3FF
	minor := (v >> 12) & 0x3FF
	patch := v & 0xFFF
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// KindFromDeviceType maps a Vulkan device type to a Kind. Unrecognized codes,
// including VK_PHYSICAL_DEVICE_TYPE_OTHER, map to KindUnknown.
func KindFromDeviceType(t vulkan.PhysicalDeviceType) Kind {
	if k, ok := deviceKinds[t]; ok {
		return k
	}
	return KindUnknown
}

// DeviceLocalMegabytes sums the device-local heaps among the first
// MemoryHeapCount heaps and truncates to whole megabytes.
func DeviceLocalMegabytes(mem *vulkan.PhysicalDeviceMemoryProperties) uint64 {
	n := int(mem.MemoryHeapCount)
	if n > len(mem.MemoryHeaps) {
		n = len(mem.MemoryHeaps)
	}

	var total uint64
	for _, heap := range mem.MemoryHeaps[:n] {
		if heap.Flags.Has(vulkan.MemoryHeapDeviceLocalBit) {
			total += heap.Size
		}
	}
	return total / bytesPerMegabyte
}

// Normalize builds a GPU record from the raw property structures of one
// physical device. Clock speed and temperature are not available through
// Vulkan and are left nil.
func Normalize(props *vulkan.PhysicalDeviceProperties, mem *vulkan.PhysicalDeviceMemoryProperties) GPU {
	return GPU{
		Kind:          KindFromDeviceType(props.DeviceType),
		Name:          DecodeDeviceName(props.DeviceName[:]),
		Vendor:        VendorName(props.VendorID),
		DriverVersion: DecodeDriverVersion(props.DriverVersion),
		VRAM:          DeviceLocalMegabytes(mem),
	}
}
