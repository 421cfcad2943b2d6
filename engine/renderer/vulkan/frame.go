package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
)

// VulkanFrame holds the per-frame-in-flight resources: a command
// buffer, the fence guarding its reuse and the semaphore signaled when
// the acquired swapchain image is ready.
type VulkanFrame struct {
	CommandBuffer    vk.CommandBuffer
	Fence            *VulkanFence
	AcquireSemaphore vk.Semaphore
}

func NewFrame(context *VulkanContext) (*VulkanFrame, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        context.Device.GraphicsCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	commandBuffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, commandBuffers); res != vk.Success {
		err := fmt.Errorf("failed to allocate command buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	// Signaled so the first wait on this frame slot passes.
	fence, err := NewFence(context, true)
	if err != nil {
		return nil, err
	}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &semaphore); res != vk.Success {
		err := fmt.Errorf("failed to create semaphore: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanFrame{
		CommandBuffer:    commandBuffers[0],
		Fence:            fence,
		AcquireSemaphore: semaphore,
	}, nil
}

func (vf *VulkanFrame) Destroy(context *VulkanContext) {
	if vf.CommandBuffer != nil {
		vk.FreeCommandBuffers(context.Device.LogicalDevice, context.Device.GraphicsCommandPool, 1, []vk.CommandBuffer{vf.CommandBuffer})
		vf.CommandBuffer = nil
	}
	if vf.Fence != nil {
		vf.Fence.FenceDestroy(context)
		vf.Fence = nil
	}
	if vf.AcquireSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, vf.AcquireSemaphore, context.Allocator)
		vf.AcquireSemaphore = vk.NullSemaphore
	}
}
