package vkx

import (
	"fmt"
	"log"
	"os"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// requiredDeviceExtensions must all be present for a physical device to be
// eligible: presentation plus descriptor indexing for the sampler arrays.
var requiredDeviceExtensions = []string{
	"VK_KHR_swapchain",
	"VK_EXT_descriptor_indexing",
}

// QueueFamilySelection records the graphics and presentation queue family
// indices found on a physical device. It is derived fresh per device query
// and not persisted beyond device selection and swapchain creation.
type QueueFamilySelection struct {
	Graphics uint32
	Present  uint32

	hasGraphics bool
	hasPresent  bool
}

// Complete reports whether both roles were found.
func (q QueueFamilySelection) Complete() bool {
	return q.hasGraphics && q.hasPresent
}

// Distinct reports whether graphics and presentation live on different
// families, which forces concurrent sharing for swapchain images.
func (q QueueFamilySelection) Distinct() bool {
	return q.Graphics != q.Present
}

func (q QueueFamilySelection) indices() []uint32 {
	if q.Distinct() {
		return []uint32{q.Graphics, q.Present}
	}
	return []uint32{q.Graphics}
}

func findQueueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) QueueFamilySelection {
	var sel QueueFamilySelection
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, families)

	for i := uint32(0); i < count; i++ {
		families[i].Deref()
		if !sel.hasGraphics && families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			sel.Graphics = i
			sel.hasGraphics = true
		}
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, i, surface, &supported)
		if !sel.hasPresent && supported == vk.True {
			sel.Present = i
			sel.hasPresent = true
		}
		if sel.Complete() {
			break
		}
	}
	return sel
}

// Device owns the instance, surface, physical and logical device, queues,
// the single command pool and the per-frame primary command buffers. It is
// the context object every other component takes; there are no package
// globals, so multiple devices can coexist.
type Device struct {
	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface
	gpu           vk.PhysicalDevice
	handle        vk.Device
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
	families      QueueFamilySelection
	commandPool   vk.CommandPool
	commandBufs   [FramesInFlight]vk.CommandBuffer

	memTypes      []vk.MemoryType
	maxAnisotropy float32

	provider SurfaceProvider
	cfg      Config
	log      *log.Logger
}

// Bootstrap creates the instance, surface, logical device, queues, command
// pool and the fixed set of per-frame command buffers. The first eligible
// physical device in enumeration order is selected. The provider must have
// initialized the Vulkan loader already.
func Bootstrap(provider SurfaceProvider, cfg Config) (*Device, error) {
	cfg = cfg.withDefaults()
	d := &Device{
		provider: provider,
		cfg:      cfg,
		log:      log.New(os.Stderr, "vkx: ", log.LstdFlags),
	}

	var layers []string
	if cfg.Debug {
		available, err := ValidationLayers()
		if err != nil {
			return nil, err
		}
		if !hasAll(available, []string{validationLayerName}) {
			return nil, fmt.Errorf("%w: %s", ErrValidationLayer, validationLayerName)
		}
		layers = []string{validationLayerName}
	}

	extensions := provider.RequiredInstanceExtensions()
	if cfg.Debug {
		extensions = append(extensions, "VK_EXT_debug_report")
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   safeString(cfg.AppName),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PEngineName:        safeString("vkx"),
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}, nil, &instance)
	if err := errWrap(ret, "create instance"); err != nil {
		return nil, err
	}
	d.instance = instance
	vk.InitInstance(instance)

	if cfg.Debug {
		if err := d.setupDebugCallback(); err != nil {
			d.Destroy()
			return nil, err
		}
	}

	surface, err := provider.CreateSurface(instance)
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.surface = surface

	if err := d.pickPhysicalDevice(); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createLogicalDevice(layers); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createCommandPool(); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func (d *Device) setupDebugCallback() error {
	var callback vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(d.instance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
			object uint64, location uint, messageCode int32,
			layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
			if flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0 {
				d.log.Printf("[%s] ERROR %d: %s", layerPrefix, messageCode, message)
			} else {
				d.log.Printf("[%s] WARN %d: %s", layerPrefix, messageCode, message)
			}
			return vk.Bool32(vk.False)
		},
	}, nil, &callback)
	if err := errWrap(ret, "create debug report callback"); err != nil {
		return err
	}
	d.debugCallback = callback
	return nil
}

func (d *Device) pickPhysicalDevice() error {
	var count uint32
	if err := errWrap(vk.EnumeratePhysicalDevices(d.instance, &count, nil), "enumerate physical devices"); err != nil {
		return err
	}
	if count == 0 {
		return ErrNoDevice
	}
	gpus := make([]vk.PhysicalDevice, count)
	if err := errWrap(vk.EnumeratePhysicalDevices(d.instance, &count, gpus), "enumerate physical devices"); err != nil {
		return err
	}

	for _, gpu := range gpus {
		ok, sel, err := d.deviceEligible(gpu)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		d.gpu = gpu
		d.families = sel
		d.cacheDeviceProperties()
		return nil
	}
	return ErrNoDevice
}

// deviceEligible applies the selection criteria: both queue roles, the
// required extensions, anisotropic sampling, and a surface with at least
// one format and one present mode. No scoring between eligible devices.
func (d *Device) deviceEligible(gpu vk.PhysicalDevice) (bool, QueueFamilySelection, error) {
	sel := findQueueFamilies(gpu, d.surface)
	if !sel.Complete() {
		return false, sel, nil
	}

	available, err := DeviceExtensions(gpu)
	if err != nil {
		return false, sel, err
	}
	if !hasAll(available, requiredDeviceExtensions) {
		return false, sel, nil
	}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()
	if features.SamplerAnisotropy != vk.True {
		return false, sel, nil
	}

	var formatCount, modeCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, d.surface, &formatCount, nil)
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, d.surface, &modeCount, nil)
	if formatCount == 0 || modeCount == 0 {
		return false, sel, nil
	}
	return true, sel, nil
}

func (d *Device) cacheDeviceProperties() {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.gpu, &memProps)
	memProps.Deref()
	d.memTypes = make([]vk.MemoryType, memProps.MemoryTypeCount)
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		d.memTypes[i] = memProps.MemoryTypes[i]
	}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(d.gpu, &props)
	props.Deref()
	props.Limits.Deref()
	d.maxAnisotropy = props.Limits.MaxSamplerAnisotropy
}

func (d *Device) createLogicalDevice(layers []string) error {
	priorities := []float32{1.0}
	var queueInfos []vk.DeviceQueueCreateInfo
	for _, family := range d.families.indices() {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: priorities,
		})
	}

	var device vk.Device
	ret := vk.CreateDevice(d.gpu, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueInfos)),
		PQueueCreateInfos:    queueInfos,
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy: vk.True,
		}},
		EnabledExtensionCount:   uint32(len(requiredDeviceExtensions)),
		PpEnabledExtensionNames: safeStrings(requiredDeviceExtensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}, nil, &device)
	if err := errWrap(ret, "create logical device"); err != nil {
		return err
	}
	d.handle = device

	var queue vk.Queue
	vk.GetDeviceQueue(device, d.families.Graphics, 0, &queue)
	d.graphicsQueue = queue
	vk.GetDeviceQueue(device, d.families.Present, 0, &queue)
	d.presentQueue = queue
	return nil
}

// createCommandPool creates the single pool with the individual-reset flag
// and allocates one primary command buffer per frame slot. The buffers are
// reset and re-recorded every frame, never reallocated.
func (d *Device) createCommandPool() error {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(d.handle, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.families.Graphics,
	}, nil, &pool)
	if err := errWrap(ret, "create command pool"); err != nil {
		return err
	}
	d.commandPool = pool

	bufs := make([]vk.CommandBuffer, FramesInFlight)
	ret = vk.AllocateCommandBuffers(d.handle, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: FramesInFlight,
	}, bufs)
	if err := errWrap(ret, "allocate command buffers"); err != nil {
		return err
	}
	copy(d.commandBufs[:], bufs)
	return nil
}

// WaitIdle blocks until the device has finished all outstanding work.
func (d *Device) WaitIdle() {
	if d.handle != nil {
		vk.DeviceWaitIdle(d.handle)
	}
}

// Destroy tears everything down in dependency order after waiting for the
// GPU to go idle. Safe to call on a partially bootstrapped device.
func (d *Device) Destroy() {
	d.WaitIdle()
	if d.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.handle, d.commandPool, nil)
		d.commandPool = vk.NullCommandPool
	}
	if d.handle != nil {
		vk.DestroyDevice(d.handle, nil)
		d.handle = nil
	}
	if d.surface != vk.NullSurface {
		vk.DestroySurface(d.instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
	if d.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.debugCallback, nil)
		d.debugCallback = vk.NullDebugReportCallback
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
}

// Handle returns the logical device.
func (d *Device) Handle() vk.Device { return d.handle }

// GPU returns the selected physical device.
func (d *Device) GPU() vk.PhysicalDevice { return d.gpu }

// GraphicsQueue returns the graphics submission queue.
func (d *Device) GraphicsQueue() vk.Queue { return d.graphicsQueue }

// PresentQueue returns the presentation queue, which may alias the
// graphics queue when both roles share a family.
func (d *Device) PresentQueue() vk.Queue { return d.presentQueue }

// Families returns the queue family selection made at bootstrap.
func (d *Device) Families() QueueFamilySelection { return d.families }

// CommandBuffer returns the primary command buffer for a frame slot.
func (d *Device) CommandBuffer(slot int) vk.CommandBuffer { return d.commandBufs[slot] }

// MaxSamplerAnisotropy returns the device limit cached at bootstrap.
func (d *Device) MaxSamplerAnisotropy() float32 { return d.maxAnisotropy }

// SetLogger replaces the logger used for driver diagnostics.
func (d *Device) SetLogger(l *log.Logger) { d.log = l }
