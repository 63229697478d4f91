package vulkan

import (
	"errors"
	"fmt"
)

var (
	// ErrLibraryNotFound means no Vulkan loader library could be opened.
	ErrLibraryNotFound = errors.New("vulkan loader library not found")
	// ErrMissingEntryPoint means a loader was opened but a required command
	// could not be resolved from it.
	ErrMissingEntryPoint = errors.New("vulkan entry point not found")
)

// Result is VkResult. Negative values are errors.
type Result int32

const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	EventSet                  Result = 3
	EventReset                Result = 4
	Incomplete                Result = 5
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorMemoryMapFailed      Result = -5
	ErrorLayerNotPresent      Result = -6
	ErrorExtensionNotPresent  Result = -7
	ErrorFeatureNotPresent    Result = -8
	ErrorIncompatibleDriver   Result = -9
	ErrorTooManyObjects       Result = -10
	ErrorFormatNotSupported   Result = -11
	ErrorFragmentedPool       Result = -12
	ErrorUnknown              Result = -13
)

var resultText = map[Result]struct{ name, desc string }{
	Success:                   {"VK_SUCCESS", "command successfully completed"},
	NotReady:                  {"VK_NOT_READY", "a fence or query has not yet completed"},
	Timeout:                   {"VK_TIMEOUT", "a wait operation has not completed in the specified time"},
	EventSet:                  {"VK_EVENT_SET", "an event is signaled"},
	EventReset:                {"VK_EVENT_RESET", "an event is unsignaled"},
	Incomplete:                {"VK_INCOMPLETE", "a return array was too small for the result"},
	ErrorOutOfHostMemory:      {"VK_ERROR_OUT_OF_HOST_MEMORY", "a host memory allocation has failed"},
	ErrorOutOfDeviceMemory:    {"VK_ERROR_OUT_OF_DEVICE_MEMORY", "a device memory allocation has failed"},
	ErrorInitializationFailed: {"VK_ERROR_INITIALIZATION_FAILED", "initialization of an object could not be completed for implementation-specific reasons"},
	ErrorDeviceLost:           {"VK_ERROR_DEVICE_LOST", "the logical or physical device has been lost"},
	ErrorMemoryMapFailed:      {"VK_ERROR_MEMORY_MAP_FAILED", "mapping of a memory object has failed"},
	ErrorLayerNotPresent:      {"VK_ERROR_LAYER_NOT_PRESENT", "a requested layer is not present or could not be loaded"},
	ErrorExtensionNotPresent:  {"VK_ERROR_EXTENSION_NOT_PRESENT", "a requested extension is not supported"},
	ErrorFeatureNotPresent:    {"VK_ERROR_FEATURE_NOT_PRESENT", "a requested feature is not supported"},
	ErrorIncompatibleDriver:   {"VK_ERROR_INCOMPATIBLE_DRIVER", "the requested version of Vulkan is not supported by the driver or is otherwise incompatible"},
	ErrorTooManyObjects:       {"VK_ERROR_TOO_MANY_OBJECTS", "too many objects of the type have already been created"},
	ErrorFormatNotSupported:   {"VK_ERROR_FORMAT_NOT_SUPPORTED", "a requested format is not supported on this device"},
	ErrorFragmentedPool:       {"VK_ERROR_FRAGMENTED_POOL", "a pool allocation has failed due to fragmentation"},
	ErrorUnknown:              {"VK_ERROR_UNKNOWN", "an unknown error has occurred"},
}

// String returns the VK_* name of the result.
func (r Result) String() string {
	if t, ok := resultText[r]; ok {
		return t.name
	}
	return fmt.Sprintf("VkResult(%d)", int32(r))
}

// Error implements error so non-success results can be returned directly.
func (r Result) Error() string {
	if t, ok := resultText[r]; ok {
		return t.name + ": " + t.desc
	}
	return r.String()
}

// IsError reports whether r is one of the negative error codes.
func (r Result) IsError() bool {
	return r < 0
}
