package vulkan

import (
	vk "github.com/goki/vulkan"
)

// MaxConcurrentFrames is the depth of the frame ring: CPU recording
// may run at most this many frames ahead of the GPU.
const MaxConcurrentFrames = 2

// MaxSwapchainImages bounds the surface's minImageCount; the driver
// may hand out up to this many images.
const MaxSwapchainImages = 5

// Flag values newer than the bindings' generated constants. The
// numeric values come from the Vulkan registry.
const (
	// VK_MEMORY_ALLOCATE_DEVICE_ADDRESS_BIT
	memoryAllocateDeviceAddressBit vk.MemoryAllocateFlags = 0x00000002
	// VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT
	bufferUsageShaderDeviceAddressBit vk.BufferUsageFlags = 0x00020000
	// VK_BUFFER_USAGE_PREPROCESS_BUFFER_BIT_EXT
	bufferUsagePreprocessBufferBit vk.BufferUsageFlags = 0x80000000
)
