package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/platform"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan/ext"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	GraphicsQueueIndex int32

	GraphicsQueue vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties

	DepthFormat vk.Format
	// SampleCount is the rasterization sample count for every frame
	// attachment. vk.SampleCount1Bit means no MSAA resolve pass.
	SampleCount vk.SampleCountFlagBits
	// ShaderObject selects the VK_EXT_shader_object path over
	// monolithic pipelines.
	ShaderObject bool
}

// VulkanDeviceOptions carries the renderer configuration the device
// setup needs.
type VulkanDeviceOptions struct {
	SampleCount  uint32
	ShaderObject bool
	PrintInfo    bool
	// GetInstanceProcAddr is the loader entry point handed out by the
	// window system, used to resolve the extension procs.
	GetInstanceProcAddr unsafe.Pointer
}

func CreateVulkanSurface(p *platform.Platform, context *VulkanContext) bool {
	surface, err := p.Window.CreateWindowSurface(context.Instance, nil)
	if err != nil {
		core.LogFatal("Vulkan surface creation failed.")
		return false
	}
	context.Surface = vk.SurfaceFromPointer(surface)
	return true
}

func DeviceCreate(context *VulkanContext, options VulkanDeviceOptions) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	context.Device.SampleCount = vk.SampleCountFlagBits(options.SampleCount)
	context.Device.ShaderObject = options.ShaderObject

	if err := deviceCheckSampleCount(context.Device); err != nil {
		core.LogError(err.Error())
		return err
	}

	if options.PrintInfo {
		devicePrintInfo(context.Device)
	}

	core.LogInfo("Creating logical device...")

	var queuePriority float32 = 1.0
	queueCreateInfos := []vk.DeviceQueueCreateInfo{
		{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
			QueueCount:       1,
			PQueuePriorities: []float32{queuePriority},
		},
	}

	extensionNames := []string{
		ext.SwapchainExtensionName,
		ext.DeviceGeneratedCommandsExtensionName,
		ext.Maintenance5ExtensionName,
	}
	if context.Device.ShaderObject {
		extensionNames = append(extensionNames, ext.ShaderObjectExtensionName)
	}

	// Features are requested through the VkPhysicalDeviceFeatures2
	// chain, so PEnabledFeatures stays nil.
	features := ext.NewDeviceFeatures(context.Device.ShaderObject)
	defer features.Free()

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   features.Head(),
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("failed to create logical device with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Logical device created.")

	if err := ext.Load(
		options.GetInstanceProcAddr,
		unsafe.Pointer(context.Instance),
		unsafe.Pointer(context.Device.LogicalDevice),
		context.Device.ShaderObject); err != nil {
		core.LogError(err.Error())
		return err
	}

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.GraphicsQueueIndex),
		0,
		&context.Device.GraphicsQueue)
	core.LogInfo("Queues obtained.")

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		err := fmt.Errorf("failed to create graphics command pool with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	context.Device.GraphicsQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.GraphicsCommandPool,
		context.Allocator)

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
	context.Device.GraphicsQueueIndex = -1
}

// SelectPhysicalDevice picks the first enumerated device exposing a
// queue family with both graphics and present support.
func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32 = 0
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices with error `%s`", VulkanResultString(res, true))
	}
	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found")
		core.LogFatal(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices with error `%s`", VulkanResultString(res, true))
	}

	for i := 0; i < int(physicalDeviceCount); i++ {
		queueIndex := deviceFindGraphicsQueue(physicalDevices[i], context.Surface)
		if queueIndex < 0 {
			continue
		}

		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()
		properties.Limits.Deref()

		end := FindFirstZeroInByteArray(properties.DeviceName[:])
		core.LogInfo("Selected device: '%s'.", string(properties.DeviceName[:end]))
		switch properties.DeviceType {
		default:
			fallthrough
		case vk.PhysicalDeviceTypeOther:
			core.LogInfo("GPU type is Unknown.")
		case vk.PhysicalDeviceTypeIntegratedGpu:
			core.LogInfo("GPU type is Integrated.")
		case vk.PhysicalDeviceTypeDiscreteGpu:
			core.LogInfo("GPU type is Discrete.")
		case vk.PhysicalDeviceTypeVirtualGpu:
			core.LogInfo("GPU type is Virtual.")
		case vk.PhysicalDeviceTypeCpu:
			core.LogInfo("GPU type is CPU.")
		}

		context.Device.PhysicalDevice = physicalDevices[i]
		context.Device.GraphicsQueueIndex = queueIndex
		context.Device.Properties = properties

		if !DeviceDetectDepthFormat(context.Device) {
			err := fmt.Errorf("failed to find a supported depth format")
			core.LogFatal(err.Error())
			return err
		}

		core.LogInfo("Physical device selected.")
		return nil
	}

	err := fmt.Errorf("no physical devices were found which meet the requirements")
	core.LogError(err.Error())
	return err
}

func deviceFindGraphicsQueue(device vk.PhysicalDevice, surface vk.Surface) int32 {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit == 0 {
			continue
		}
		var supportsPresent vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(device, i, surface, &supportsPresent)
		if supportsPresent == vk.True {
			return int32(i)
		}
	}
	return -1
}

// DeviceDetectDepthFormat prefers a pure 32-bit float depth format and
// falls back to a packed 24-bit one.
func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatX8D24UnormPack32,
	}
	flags := vk.FormatFeatureDepthStencilAttachmentBit
	for i := 0; i < len(candidates); i++ {
		properties := vk.FormatProperties{}
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidates[i], &properties)
		properties.Deref()
		if (vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures) & flags) == flags {
			device.DepthFormat = candidates[i]
			return true
		}
	}
	return false
}

func deviceCheckSampleCount(device *VulkanDevice) error {
	supported := vk.SampleCountFlagBits(device.Properties.Limits.FramebufferColorSampleCounts) &
		vk.SampleCountFlagBits(device.Properties.Limits.FramebufferDepthSampleCounts)
	if supported&device.SampleCount == 0 {
		return fmt.Errorf("sample count %d not supported by the device", device.SampleCount)
	}
	return nil
}

func devicePrintInfo(device *VulkanDevice) {
	properties := device.Properties

	end := FindFirstZeroInByteArray(properties.DeviceName[:])
	core.LogInfo("Device name: %s", string(properties.DeviceName[:end]))
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version.Major(vk.Version(properties.ApiVersion)),
		vk.Version.Minor(vk.Version(properties.ApiVersion)),
		vk.Version.Patch(vk.Version(properties.ApiVersion)),
	)
	core.LogInfo(
		"GPU Driver version: %d.%d.%d",
		vk.Version.Major(vk.Version(properties.DriverVersion)),
		vk.Version.Minor(vk.Version(properties.DriverVersion)),
		vk.Version.Patch(vk.Version(properties.DriverVersion)),
	)
	core.LogInfo("Vendor ID: 0x%x", properties.VendorID)
	core.LogInfo("Device ID: 0x%x", properties.DeviceID)

	var extensionCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(device.PhysicalDevice, "", &extensionCount, nil); res != vk.Success {
		return
	}
	extensions := make([]vk.ExtensionProperties, extensionCount)
	if res := vk.EnumerateDeviceExtensionProperties(device.PhysicalDevice, "", &extensionCount, extensions); res != vk.Success {
		return
	}
	core.LogInfo("Device extensions:")
	for i := range extensions {
		extensions[i].Deref()
		nameEnd := FindFirstZeroInByteArray(extensions[i].ExtensionName[:])
		core.LogInfo("  %s", string(extensions[i].ExtensionName[:nameEnd]))
	}
}
