package gpu

import (
	"context"
	"errors"

	"github.com/shepherd-project/gpuinfo/internal/vulkan"
)

// Identity reported to the driver on instance creation.
const (
	vulkanAppName    = "GPUInfoApp"
	vulkanEngineName = "GPUInfoApp"
)

var errNoAdapters = errors.New("No Vulkan-compatible GPUs found.")

// vulkanInstance is the part of *vulkan.Instance the pipeline uses.
type vulkanInstance interface {
	EnumeratePhysicalDevices() ([]vulkan.PhysicalDevice, error)
	PhysicalDeviceProperties(pd vulkan.PhysicalDevice) vulkan.PhysicalDeviceProperties
	PhysicalDeviceMemoryProperties(pd vulkan.PhysicalDevice) vulkan.PhysicalDeviceMemoryProperties
	Destroy()
}

// vulkanLibrary is the part of *vulkan.Library the pipeline uses.
type vulkanLibrary interface {
	CreateInstance(info *vulkan.InstanceCreateInfo) (vulkanInstance, error)
	Close() error
}

type vulkanLoader func(paths ...string) (vulkanLibrary, error)

type loadedLibrary struct {
	*vulkan.Library
}

func (l loadedLibrary) CreateInstance(info *vulkan.InstanceCreateInfo) (vulkanInstance, error) {
	inst, err := l.Library.CreateInstance(info)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func loadVulkan(paths ...string) (vulkanLibrary, error) {
	lib, err := vulkan.Load(paths...)
	if err != nil {
		return nil, err
	}
	return loadedLibrary{lib}, nil
}

// EnumerateGPUs lists every Vulkan physical device on this host as a GPU
// record, in the order the loader reports them.
//
// It returns an error wrapping ErrNotSupported when no Vulkan loader can be
// opened, and an *OperationFailedError when instance creation or device
// enumeration fails or when no devices are found. It never returns an empty
// slice with a nil error. Every native handle is released before it returns.
func EnumerateGPUs() ([]GPU, error) {
	return enumerateGPUs(loadVulkan)
}

func enumerateGPUs(load vulkanLoader, paths ...string) ([]GPU, error) {
	lib, err := load(paths...)
	if err != nil {
		return nil, notSupported(err)
	}
	defer func() { _ = lib.Close() }()

	inst, err := lib.CreateInstance(&vulkan.InstanceCreateInfo{
		ApplicationInfo: &vulkan.ApplicationInfo{
			ApplicationName:    vulkanAppName,
			ApplicationVersion: 0,
			EngineName:         vulkanEngineName,
			EngineVersion:      0,
			APIVersion:         vulkan.APIVersion10,
		},
	})
	if err != nil {
		return nil, operationFailed("create instance", err)
	}
	defer inst.Destroy()

	devices, err := inst.EnumeratePhysicalDevices()
	if err != nil {
		return nil, operationFailed("enumerate physical devices", err)
	}
	if len(devices) == 0 {
		return nil, operationFailed("enumerate physical devices", errNoAdapters)
	}

	gpus := make([]GPU, 0, len(devices))
	for _, pd := range devices {
		props := inst.PhysicalDeviceProperties(pd)
		mem := inst.PhysicalDeviceMemoryProperties(pd)
		gpus = append(gpus, Normalize(&props, &mem))
	}
	return gpus, nil
}

// vulkanProvider exposes the Vulkan pipeline as a detector backend.
type vulkanProvider struct {
	logger Logger
	load   vulkanLoader
	paths  []string
}

// NewVulkanProvider creates the Vulkan backend. libraryPaths overrides the
// platform loader search list when non-empty.
func NewVulkanProvider(logger Logger, libraryPaths []string) Provider {
	if logger == nil {
		logger = noopLogger{}
	}
	return &vulkanProvider{logger: logger, load: loadVulkan, paths: libraryPaths}
}

func (p *vulkanProvider) Name() string {
	return BackendVulkan
}

func (p *vulkanProvider) IsAvailable() bool {
	lib, err := p.load(p.paths...)
	if err != nil {
		p.logger.Debugf("Vulkan loader not available: %v", err)
		return false
	}
	_ = lib.Close()
	return true
}

// Detect runs the whole pipeline synchronously. A context that is already
// done is honored before any native call; once started, the run is not
// interrupted.
func (p *vulkanProvider) Detect(ctx context.Context) ([]GPU, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gpus, err := enumerateGPUs(p.load, p.paths...)
	if err != nil {
		return nil, err
	}
	for i, g := range gpus {
		p.logger.Debugf("Detected Vulkan GPU[%d]: %s (%s, %s, %d MB)", i, g.Name, g.Vendor, g.Kind, g.VRAM)
	}
	return gpus, nil
}
