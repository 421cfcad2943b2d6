package vulkan

import (
	"fmt"
	stdmath "math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/config"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/gears"
	"github.com/spaghettifunk/vkgears/engine/math"
	"github.com/spaghettifunk/vkgears/engine/platform"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan/ext"
)

type VulkanRenderer struct {
	platform *platform.Platform
	config   *config.RendererConfig
	context  *VulkanContext

	gearPass      *VulkanGearPass
	shaderWatcher *VulkanShaderWatcher
	shaderDir     string

	FrameNumber uint64
}

func New(p *platform.Platform, cfg *config.RendererConfig) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		config:   cfg,
		context: &VulkanContext{
			Allocator: nil,
		},
	}
}

func presentModeFromConfig(mode string) vk.PresentMode {
	switch mode {
	case config.PresentModeMailbox:
		return vk.PresentModeMailbox
	case config.PresentModeImmediate:
		return vk.PresentModeImmediate
	default:
		return vk.PresentModeFifo
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32, shaderDir string) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		core.LogFatal("GetInstanceProcAddress is nil")
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogFatal("failed to initialize vk: %s", err)
		return err
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight
	vr.context.NewWidth = appWidth
	vr.context.NewHeight = appHeight
	vr.shaderDir = shaderDir

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 3, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("vkgears"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := vr.platform.RequiredVulkanExtensions()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if vr.config.Validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		core.LogInfo("Required extensions:")
		for i := 0; i < len(requiredExtensions); i++ {
			core.LogInfo(requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	requiredValidationLayerNames := []string{}
	if vr.config.Validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		if runtime.GOOS == "darwin" {
			createInfo.Flags |= 1
		}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers")
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers")
		}

		for i := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if requiredValidationLayerNames[i] == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				err := fmt.Errorf("required validation layer is missing: %s", requiredValidationLayerNames[i])
				core.LogFatal(err.Error())
				return err
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if vr.config.Validation {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vk.CreateDebugReportCallback failed with %s", err)
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	core.LogDebug("Creating Vulkan surface...")
	if !CreateVulkanSurface(vr.platform, vr.context) {
		return fmt.Errorf("failed to create platform surface")
	}

	vr.context.Device = &VulkanDevice{}
	if err := DeviceCreate(vr.context, VulkanDeviceOptions{
		SampleCount:         vr.config.SampleCount,
		ShaderObject:        vr.config.ShaderObject,
		PrintInfo:           vr.config.PrintInfo,
		GetInstanceProcAddr: procAddr,
	}); err != nil {
		core.LogError("Failed to create device!")
		return err
	}

	swapchain, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, presentModeFromConfig(vr.config.PresentMode))
	if err != nil {
		return err
	}
	vr.context.Swapchain = swapchain
	vr.context.NewWidth = vr.context.FramebufferWidth
	vr.context.NewHeight = vr.context.FramebufferHeight

	if err := vr.createFrames(); err != nil {
		return err
	}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.PresentSemaphore); res != vk.Success {
		err := fmt.Errorf("failed to create present semaphore: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	gearPass, err := NewGearPass(vr.context, shaderDir, vr.config.Reference)
	if err != nil {
		return err
	}
	vr.gearPass = gearPass

	// Hot reload is best effort; rendering works without the watcher.
	watcher, err := NewShaderWatcher(shaderDir)
	if err != nil {
		core.LogWarn("Shader watcher unavailable: %s", err)
	} else {
		vr.shaderWatcher = watcher
	}

	core.LogInfo("Vulkan renderer initialized.")
	return nil
}

func (vr *VulkanRenderer) createFrames() error {
	for i := 0; i < MaxConcurrentFrames; i++ {
		frame, err := NewFrame(vr.context)
		if err != nil {
			return err
		}
		vr.context.Frames[i] = frame
	}
	vr.context.FrameIndex = 0
	return nil
}

func (vr *VulkanRenderer) destroyFrames() {
	for i := 0; i < MaxConcurrentFrames; i++ {
		if vr.context.Frames[i] != nil {
			vr.context.Frames[i].Destroy(vr.context)
			vr.context.Frames[i] = nil
		}
	}
}

// Resized records the new framebuffer size; the swapchain is rebuilt
// at the start of the next frame.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.context.NewWidth = width
	vr.context.NewHeight = height
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// In-flight fences die with the frames; fresh ones come back
	// signaled so no slot deadlocks on its first wait.
	vr.destroyFrames()

	swapchain, err := vr.context.Swapchain.SwapchainRecreate(vr.context, vr.context.NewWidth, vr.context.NewHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = swapchain

	// The surface may have clamped the requested size.
	vr.context.NewWidth = vr.context.FramebufferWidth
	vr.context.NewHeight = vr.context.FramebufferHeight

	return vr.createFrames()
}

// DrawFrame renders one frame. A suboptimal or resized swapchain is
// rebuilt and the frame skipped.
func (vr *VulkanRenderer) DrawFrame(scene *gears.Scene) error {
	c := vr.context
	frame := c.Frames[c.FrameIndex]

	if !frame.Fence.FenceWait(c, stdmath.MaxUint64) {
		return fmt.Errorf("frame fence wait failed")
	}

	if vr.shaderWatcher != nil && vr.shaderWatcher.ConsumeDirty() {
		vk.DeviceWaitIdle(c.Device.LogicalDevice)
		if err := vr.gearPass.ReloadShaders(c); err != nil {
			core.LogWarn("Shader reload failed, keeping previous shaders: %s", err)
		}
	}

	imageIndex, result := c.Swapchain.SwapchainAcquireNextImageIndex(c, stdmath.MaxUint64, frame.AcquireSemaphore)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal ||
		c.FramebufferWidth != c.NewWidth || c.FramebufferHeight != c.NewHeight {
		// The acquire semaphore may now carry a stale signal; the
		// frames are rebuilt along with the swapchain.
		return vr.recreateSwapchain()
	}
	if result != vk.Success {
		err := fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return err
	}

	// Only reset once this frame is guaranteed to submit, or an early
	// return above would deadlock the next wait.
	if err := frame.Fence.FenceReset(c); err != nil {
		return err
	}

	cmd := frame.CommandBuffer
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if res := vk.BeginCommandBuffer(cmd, &beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin command buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	vr.recordProjectionUpdate(cmd)
	vr.recordPass(cmd, imageIndex, scene)

	if res := vk.EndCommandBuffer(cmd); res != vk.Success {
		err := fmt.Errorf("failed to end command buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{frame.AcquireSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.PresentSemaphore},
	}
	if res := vk.QueueSubmit(c.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, frame.Fence.Handle); res != vk.Success {
		err := fmt.Errorf("queue submit failed: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	result = c.Swapchain.SwapchainPresent(c, c.Device.GraphicsQueue, c.PresentSemaphore, imageIndex)
	if result != vk.Success && result != vk.Suboptimal && result != vk.ErrorOutOfDate {
		err := fmt.Errorf("queue present failed: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return err
	}

	vr.FrameNumber++
	c.FrameIndex = (c.FrameIndex + 1) % MaxConcurrentFrames
	return nil
}

// recordProjectionUpdate refreshes the projection matrix in the
// uniform buffer, fenced against the previous frame's vertex reads.
func (vr *VulkanRenderer) recordProjectionUpdate(cmd vk.CommandBuffer) {
	c := vr.context

	h := float32(c.FramebufferHeight) / float32(c.FramebufferWidth)
	projection := math.NewMat4FrustumVulkan(-1.0, 1.0, -h, h, 5.0, 60.0)

	vr.uniformBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 0)

	vk.CmdUpdateBuffer(cmd, vr.gearPass.UniformBuffer.Handle, 0, uniformBufferSize, unsafe.Pointer(&projection.Data[0]))

	vr.uniformBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit),
		vk.AccessFlags(vk.AccessTransferWriteBit),
		vk.AccessFlags(vk.AccessUniformReadBit))
}

func (vr *VulkanRenderer) uniformBarrier(cmd vk.CommandBuffer, srcStage, dstStage vk.PipelineStageFlags, srcAccess, dstAccess vk.AccessFlags) {
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              vr.gearPass.UniformBuffer.Handle,
		Offset:              0,
		Size:                uniformBufferSize,
	}
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 1, []vk.BufferMemoryBarrier{barrier}, 0, nil)
}

func (vr *VulkanRenderer) recordPass(cmd vk.CommandBuffer, imageIndex uint32, scene *gears.Scene) {
	c := vr.context
	swapchain := c.Swapchain

	attachmentStages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit) |
		vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit) |
		vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit)
	attachmentAccess := vk.AccessFlags(vk.AccessColorAttachmentWriteBit) | vk.AccessFlags(vk.AccessColorAttachmentReadBit)

	// A never-presented image has no defined contents to preserve.
	oldLayout := vk.ImageLayoutUndefined
	if swapchain.Presented[imageIndex] {
		oldLayout = vk.ImageLayoutPresentSrc
	}
	vr.swapchainImageBarrier(cmd, imageIndex,
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit), attachmentStages,
		0, attachmentAccess,
		oldLayout, vk.ImageLayoutColorAttachmentOptimal)

	target := ext.RenderingTarget{
		Width:     c.FramebufferWidth,
		Height:    c.FramebufferHeight,
		Samples:   uint32(c.Device.SampleCount),
		ColorView: unsafe.Pointer(swapchain.Views[imageIndex]),
		DepthView: unsafe.Pointer(swapchain.DepthAttachment.View),
	}
	if swapchain.ColorMSAA != nil {
		target.ColorView = unsafe.Pointer(swapchain.ColorMSAA.View)
		target.ResolveView = unsafe.Pointer(swapchain.Views[imageIndex])
	}
	ext.CmdBeginRendering(unsafe.Pointer(cmd), &target)

	vr.gearPass.Draw(c, cmd, scene)

	ext.CmdEndRendering(unsafe.Pointer(cmd))

	vr.swapchainImageBarrier(cmd, imageIndex,
		attachmentStages, vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
		attachmentAccess, 0,
		vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutPresentSrc)
}

func (vr *VulkanRenderer) swapchainImageBarrier(cmd vk.CommandBuffer, imageIndex uint32,
	srcStage, dstStage vk.PipelineStageFlags, srcAccess, dstAccess vk.AccessFlags,
	oldLayout, newLayout vk.ImageLayout) {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               vr.context.Swapchain.Images[imageIndex],
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (vr *VulkanRenderer) Shutdown() error {
	c := vr.context
	if c.Device != nil && c.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(c.Device.LogicalDevice)
	}

	if vr.shaderWatcher != nil {
		vr.shaderWatcher.Close()
		vr.shaderWatcher = nil
	}

	if vr.gearPass != nil {
		vr.gearPass.Destroy(c)
		vr.gearPass = nil
	}

	if c.PresentSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(c.Device.LogicalDevice, c.PresentSemaphore, c.Allocator)
		c.PresentSemaphore = vk.NullSemaphore
	}
	vr.destroyFrames()

	if c.Swapchain != nil {
		c.Swapchain.SwapchainDestroy(c)
		c.Swapchain = nil
	}

	if c.Device != nil {
		DeviceDestroy(c)
	}

	if c.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(c.Instance, c.debugMessenger, c.Allocator)
		c.debugMessenger = vk.NullDebugReportCallback
	}

	vk.DestroySurface(c.Instance, c.Surface, c.Allocator)
	vk.DestroyInstance(c.Instance, c.Allocator)

	core.LogInfo("Vulkan renderer shut down.")
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
