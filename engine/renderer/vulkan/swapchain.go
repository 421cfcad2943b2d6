package vulkan

import (
	"fmt"
	stdmath "math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/math"
)

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// ColorMSAA is the multisampled color attachment resolved into the
	// swapchain image; nil when the sample count is 1.
	ColorMSAA       *VulkanImage
	DepthAttachment *VulkanImage

	// Presented tracks per swapchain image whether it has ever been
	// presented. Until then its layout transition starts from
	// UNDEFINED rather than PRESENT_SRC.
	Presented []bool
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

func SwapchainCreate(context *VulkanContext, width, height uint32, desiredPresentMode vk.PresentMode) (*VulkanSwapchain, error) {
	return createSwapchain(context, width, height, desiredPresentMode)
}

// SwapchainRecreate destroys and rebuilds the swapchain resources for
// the new framebuffer size. The caller is responsible for waiting the
// device idle and rebuilding the per-frame resources.
func (vs *VulkanSwapchain) SwapchainRecreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	vs.destroySwapchain(context)
	return createSwapchain(context, width, height, vs.PresentMode)
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.destroySwapchain(context)
}

// SwapchainAcquireNextImageIndex returns the acquired image index and
// the raw result so the frame loop can react to SUBOPTIMAL and
// OUT_OF_DATE itself.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNs uint64, imageAvailableSemaphore vk.Semaphore) (uint32, vk.Result) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNs, imageAvailableSemaphore, vk.NullFence, &imageIndex)
	return imageIndex, result
}

func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
		PResults:           nil,
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	if result == vk.Success || result == vk.Suboptimal {
		vs.Presented[presentImageIndex] = true
	}
	return result
}

func querySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface capabilities")
		core.LogError(err.Error())
		return err
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface formats")
		core.LogError(err.Error())
		return err
	}
	if supportInfo.FormatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, supportInfo.FormatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, supportInfo.Formats); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface formats")
			core.LogError(err.Error())
			return err
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface present modes")
		core.LogError(err.Error())
		return err
	}
	if supportInfo.PresentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, supportInfo.PresentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, supportInfo.PresentModes); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface present modes")
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

// pickSurfaceFormat prefers an sRGB BGRA format and otherwise takes
// whatever the surface lists first.
func pickSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// pickPresentMode returns the desired mode when the surface supports
// it; FIFO is the only mode guaranteed to exist.
func pickPresentMode(modes []vk.PresentMode, desired vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == desired {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// clampImageCount clamps the desired image count to the surface
// capabilities; maxImageCount 0 means unbounded.
func clampImageCount(desired, minCount, maxCount uint32) uint32 {
	if desired < minCount {
		desired = minCount
	}
	if maxCount > 0 && desired > maxCount {
		desired = maxCount
	}
	return desired
}

func createSwapchain(context *VulkanContext, width, height uint32, desiredPresentMode vk.PresentMode) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{}

	support := VulkanSwapchainSupportInfo{}
	if err := querySwapchainSupport(context.Device.PhysicalDevice, context.Surface, &support); err != nil {
		return nil, err
	}
	if support.FormatCount == 0 {
		err := fmt.Errorf("surface reports no formats")
		core.LogError(err.Error())
		return nil, err
	}

	swapchain.ImageFormat = pickSurfaceFormat(support.Formats)
	swapchain.PresentMode = pickPresentMode(support.PresentModes, desiredPresentMode)

	swapchainExtent := vk.Extent2D{Width: width, Height: height}
	if support.Capabilities.CurrentExtent.Width != stdmath.MaxUint32 {
		swapchainExtent = support.Capabilities.CurrentExtent
	}
	min := support.Capabilities.MinImageExtent
	max := support.Capabilities.MaxImageExtent
	swapchainExtent.Width = math.Clamp(swapchainExtent.Width, min.Width, max.Width)
	swapchainExtent.Height = math.Clamp(swapchainExtent.Height, min.Height, max.Height)
	swapchain.Extent = swapchainExtent

	imageCount := clampImageCount(MaxConcurrentFrames, support.Capabilities.MinImageCount, support.Capabilities.MaxImageCount)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Handle = swapchainHandle

	context.FramebufferWidth = swapchainExtent.Width
	context.FramebufferHeight = swapchainExtent.Height

	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images")
		core.LogError(err.Error())
		return nil, err
	}
	if swapchain.ImageCount > MaxSwapchainImages {
		err := fmt.Errorf("swapchain returned %d images, more than the supported %d", swapchain.ImageCount, MaxSwapchainImages)
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	swapchain.Presented = make([]bool, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images")
		core.LogError(err.Error())
		return nil, err
	}

	for i := 0; i < int(swapchain.ImageCount); i++ {
		view, err := NewImageView(context, swapchain.Images[i], swapchain.ImageFormat.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return nil, err
		}
		swapchain.Views[i] = view
	}

	// The multisampled color target only exists when resolving.
	if context.Device.SampleCount != vk.SampleCount1Bit {
		colorMSAA, err := NewAttachmentImage(
			context,
			swapchain.ImageFormat.Format,
			swapchainExtent.Width,
			swapchainExtent.Height,
			context.Device.SampleCount,
			vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit|vk.ImageUsageTransientAttachmentBit),
			vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return nil, err
		}
		swapchain.ColorMSAA = colorMSAA
	}

	depthAttachment, err := NewAttachmentImage(
		context,
		context.Device.DepthFormat,
		swapchainExtent.Width,
		swapchainExtent.Height,
		context.Device.SampleCount,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit|vk.ImageUsageTransientAttachmentBit),
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("Swapchain created successfully (%dx%d, %d images).", swapchainExtent.Width, swapchainExtent.Height, swapchain.ImageCount)

	return swapchain, nil
}

func (vs *VulkanSwapchain) destroySwapchain(context *VulkanContext) {
	if vs.DepthAttachment != nil {
		vs.DepthAttachment.Destroy(context)
		vs.DepthAttachment = nil
	}
	if vs.ColorMSAA != nil {
		vs.ColorMSAA.Destroy(context)
		vs.ColorMSAA = nil
	}

	// Only destroy the views, not the images, since those are owned by
	// the swapchain and go away with it.
	for i := 0; i < int(vs.ImageCount); i++ {
		vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
	}

	vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
	vs.Handle = vk.NullSwapchain
}
