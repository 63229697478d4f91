package vulkan

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

// Structure types used by CreateInstance.
const (
	structureTypeApplicationInfo    uint32 = 0
	structureTypeInstanceCreateInfo uint32 = 1
)

// applicationInfo is the C layout of VkApplicationInfo (48 bytes).
type applicationInfo struct {
	sType              uint32
	pNext              unsafe.Pointer
	pApplicationName   *byte
	applicationVersion uint32
	pEngineName        *byte
	engineVersion      uint32
	apiVersion         uint32
}

// instanceCreateInfo is the C layout of VkInstanceCreateInfo (64 bytes).
type instanceCreateInfo struct {
	sType                   uint32
	pNext                   unsafe.Pointer
	flags                   uint32
	pApplicationInfo        *applicationInfo
	enabledLayerCount       uint32
	ppEnabledLayerNames     unsafe.Pointer
	enabledExtensionCount   uint32
	ppEnabledExtensionNames unsafe.Pointer
}

// DefaultLibraryNames returns the loader names tried by Load when no paths
// are given, in search order.
func DefaultLibraryNames() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"vulkan-1.dll"}
	case "darwin", "ios":
		return []string{"libvulkan.dylib", "libvulkan.1.dylib", "libMoltenVK.dylib"}
	default:
		return []string{"libvulkan.so.1", "libvulkan.so"}
	}
}

// Library is an opened Vulkan loader. It must be closed after every Instance
// created from it has been destroyed.
type Library struct {
	path   string
	handle uintptr

	getInstanceProcAddr func(instance uintptr, name string) uintptr

	mu     sync.Mutex
	closed bool
}

// Load opens the first loader library from paths that can be opened, or the
// platform defaults when paths is empty.
func Load(paths ...string) (*Library, error) {
	if len(paths) == 0 {
		paths = DefaultLibraryNames()
	}

	var lastErr error
	for _, p := range paths {
		handle, err := openLibrary(p)
		if err != nil {
			lastErr = err
			continue
		}

		addr, err := lookupSymbol(handle, "vkGetInstanceProcAddr")
		if err != nil || addr == 0 {
			_ = closeLibrary(handle)
			return nil, fmt.Errorf("%w: vkGetInstanceProcAddr in %s", ErrMissingEntryPoint, p)
		}

		lib := &Library{path: p, handle: handle}
		bindFunc(&lib.getInstanceProcAddr, addr)
		return lib, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%w: tried %s", ErrLibraryNotFound, strings.Join(paths, ", "))
	}
	return nil, fmt.Errorf("%w: tried %s: %v", ErrLibraryNotFound, strings.Join(paths, ", "), lastErr)
}

// Path returns the name the library was opened with.
func (l *Library) Path() string {
	return l.path
}

// Close releases the loader. Calling it more than once is a no-op.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return closeLibrary(l.handle)
}

func (l *Library) procAddr(instance uintptr, name string) (uintptr, error) {
	addr := l.getInstanceProcAddr(instance, name)
	if addr == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingEntryPoint, name)
	}
	return addr, nil
}

// CreateInstance calls vkCreateInstance with no layers and no extensions and
// resolves the instance-level commands used for enumeration.
func (l *Library) CreateInstance(info *InstanceCreateInfo) (*Instance, error) {
	addr, err := l.procAddr(0, "vkCreateInstance")
	if err != nil {
		return nil, err
	}
	var createInstance func(info *instanceCreateInfo, allocator unsafe.Pointer, instance *uintptr) Result
	bindFunc(&createInstance, addr)

	var app *ApplicationInfo
	if info != nil {
		app = info.ApplicationInfo
	}
	if app == nil {
		app = &ApplicationInfo{APIVersion: APIVersion10}
	}

	appName := cString(app.ApplicationName)
	engineName := cString(app.EngineName)
	cApp := &applicationInfo{
		sType:              structureTypeApplicationInfo,
		pApplicationName:   &appName[0],
		applicationVersion: app.ApplicationVersion,
		pEngineName:        &engineName[0],
		engineVersion:      app.EngineVersion,
		apiVersion:         app.APIVersion,
	}
	cInfo := &instanceCreateInfo{
		sType:            structureTypeInstanceCreateInfo,
		pApplicationInfo: cApp,
	}

	var handle uintptr
	res := createInstance(cInfo, nil, &handle)
	runtime.KeepAlive(cInfo)
	runtime.KeepAlive(cApp)
	runtime.KeepAlive(appName)
	runtime.KeepAlive(engineName)
	if res != Success {
		return nil, res
	}

	inst := &Instance{handle: handle}
	if err := inst.bind(l); err != nil {
		if inst.destroyInstance != nil {
			inst.destroyInstance(handle, nil)
		}
		return nil, err
	}
	return inst, nil
}

// Instance is a VkInstance plus the commands resolved for it.
type Instance struct {
	handle uintptr

	enumeratePhysicalDevices     func(instance uintptr, count *uint32, devices *PhysicalDevice) Result
	getPhysicalDeviceProperties  func(device PhysicalDevice, props *PhysicalDeviceProperties)
	getPhysicalDeviceMemoryProps func(device PhysicalDevice, props *PhysicalDeviceMemoryProperties)
	destroyInstance              func(instance uintptr, allocator unsafe.Pointer)

	mu        sync.Mutex
	destroyed bool
}

func (i *Instance) bind(l *Library) error {
	addr, err := l.procAddr(i.handle, "vkDestroyInstance")
	if err != nil {
		return err
	}
	bindFunc(&i.destroyInstance, addr)

	commands := []struct {
		name string
		fptr any
	}{
		{"vkEnumeratePhysicalDevices", &i.enumeratePhysicalDevices},
		{"vkGetPhysicalDeviceProperties", &i.getPhysicalDeviceProperties},
		{"vkGetPhysicalDeviceMemoryProperties", &i.getPhysicalDeviceMemoryProps},
	}
	for _, c := range commands {
		addr, err := l.procAddr(i.handle, c.name)
		if err != nil {
			return err
		}
		bindFunc(c.fptr, addr)
	}
	return nil
}

// EnumeratePhysicalDevices returns every physical device in the order the
// loader reports them.
func (i *Instance) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	for {
		var count uint32
		if res := i.enumeratePhysicalDevices(i.handle, &count, nil); res != Success {
			return nil, res
		}
		if count == 0 {
			return nil, nil
		}

		devices := make([]PhysicalDevice, count)
		res := i.enumeratePhysicalDevices(i.handle, &count, &devices[0])
		switch res {
		case Success:
			return devices[:count], nil
		case Incomplete:
			// A device appeared between the two calls.
			continue
		default:
			return nil, res
		}
	}
}

// PhysicalDeviceProperties calls vkGetPhysicalDeviceProperties.
func (i *Instance) PhysicalDeviceProperties(pd PhysicalDevice) PhysicalDeviceProperties {
	var props PhysicalDeviceProperties
	i.getPhysicalDeviceProperties(pd, &props)
	return props
}

// PhysicalDeviceMemoryProperties calls vkGetPhysicalDeviceMemoryProperties.
func (i *Instance) PhysicalDeviceMemoryProperties(pd PhysicalDevice) PhysicalDeviceMemoryProperties {
	var mem PhysicalDeviceMemoryProperties
	i.getPhysicalDeviceMemoryProps(pd, &mem)
	return mem
}

// Destroy calls vkDestroyInstance once. Physical device handles obtained from
// the instance are invalid afterwards.
func (i *Instance) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.destroyed {
		return
	}
	i.destroyed = true
	i.destroyInstance(i.handle, nil)
}

func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
