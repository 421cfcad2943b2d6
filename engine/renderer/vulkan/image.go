package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
)

// VulkanImage is a render target image with bound memory and a view:
// the depth attachment or the multisampled color attachment.
type VulkanImage struct {
	Name   string
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
}

// NewAttachmentImage creates a transient attachment image, allocated
// from lazily allocated memory when the device offers it.
func NewAttachmentImage(context *VulkanContext, format vk.Format, width, height uint32,
	samples vk.SampleCountFlagBits, usage vk.ImageUsageFlags, aspect vk.ImageAspectFlags) (*VulkanImage, error) {

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       samples,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var handle vk.Image
	if res := vk.CreateImage(context.Device.LogicalDevice, &imageCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create image: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.LogicalDevice, handle, &reqs)
	reqs.Deref()

	memoryType := context.FindTransientImageMemoryIndex(uint32(reqs.MemoryTypeBits))
	if memoryType < 0 {
		err := fmt.Errorf("no memory type for attachment image")
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		err := fmt.Errorf("failed to allocate image memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.BindImageMemory(context.Device.LogicalDevice, handle, memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind image memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	view, err := NewImageView(context, handle, format, aspect)
	if err != nil {
		return nil, err
	}

	kind := "color-attachment"
	if aspect&vk.ImageAspectFlags(vk.ImageAspectDepthBit) != 0 {
		kind = "depth-attachment"
	}
	image := &VulkanImage{
		Name:   core.DebugName(kind),
		Handle: handle,
		Memory: memory,
		View:   view,
		Width:  width,
		Height: height,
	}
	core.LogDebug("created %s (%dx%d)", image.Name, width, height)
	return image, nil
}

// NewImageView creates a 2D view with identity swizzles over a single
// mip and layer.
func NewImageView(context *VulkanContext, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var view vk.ImageView
	if res := vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &view); res != vk.Success {
		err := fmt.Errorf("failed to create image view: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullImageView, err
	}
	return view, nil
}

func (vi *VulkanImage) Destroy(context *VulkanContext) {
	if vi.Name != "" {
		core.LogDebug("destroying %s", vi.Name)
	}
	if vi.View != vk.NullImageView {
		vk.DestroyImageView(context.Device.LogicalDevice, vi.View, context.Allocator)
		vi.View = vk.NullImageView
	}
	if vi.Handle != vk.NullImage {
		vk.DestroyImage(context.Device.LogicalDevice, vi.Handle, context.Allocator)
		vi.Handle = vk.NullImage
	}
	if vi.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, vi.Memory, context.Allocator)
		vi.Memory = vk.NullDeviceMemory
	}
}
