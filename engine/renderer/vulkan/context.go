package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Pending framebuffer size reported by the window system. When it
	// differs from the current size the swapchain is recreated before
	// the next frame.
	NewWidth  uint32
	NewHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain *VulkanSwapchain

	Frames [MaxConcurrentFrames]*VulkanFrame
	// PresentSemaphore is signaled by the render submit and waited on
	// by the presentation engine; a single one is enough since the
	// present for frame N is enqueued before the submit of frame N+1.
	PresentSemaphore vk.Semaphore

	FrameIndex uint32
}

func (vc *VulkanContext) memoryTypeFlags() []uint32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	flags := make([]uint32, memoryProperties.MemoryTypeCount)
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		flags[i] = uint32(memoryProperties.MemoryTypes[i].PropertyFlags)
	}
	return flags
}

// FindMemoryIndex returns the index of a memory type matching the
// filter and all requested property flags, or -1.
func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	idx := selectMemoryType(vc.memoryTypeFlags(), typeFilter, propertyFlags)
	if idx < 0 {
		core.LogWarn("Unable to find suitable memory type!")
	}
	return idx
}

// FindTransientImageMemoryIndex prefers lazily allocated memory for
// attachments that never leave the GPU (depth, MSAA color), falling
// back to plain device-local memory.
func (vc *VulkanContext) FindTransientImageMemoryIndex(typeFilter uint32) int32 {
	flags := vc.memoryTypeFlags()
	idx := selectMemoryType(flags, typeFilter, uint32(vk.MemoryPropertyLazilyAllocatedBit))
	if idx < 0 {
		idx = selectMemoryType(flags, typeFilter, uint32(vk.MemoryPropertyDeviceLocalBit))
	}
	if idx < 0 {
		core.LogWarn("Unable to find suitable memory type!")
	}
	return idx
}

// selectMemoryType picks the first memory type whose bit is set in
// typeFilter and whose property flags contain all of required.
func selectMemoryType(typeFlags []uint32, typeFilter uint32, required uint32) int32 {
	for i, flags := range typeFlags {
		if typeFilter&(1<<uint32(i)) != 0 && flags&required == required {
			return int32(i)
		}
	}
	return -1
}
