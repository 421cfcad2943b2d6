package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan/ext"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	// Address is the GPU address, non-zero only for buffers created
	// with shader device address usage.
	Address uint64
}

// NewBuffer creates a buffer with host-visible coherent memory bound
// to it. Buffers carrying the shader device address usage bit get
// their memory allocated with the device address flag and their GPU
// address resolved.
func NewBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	bufferCreateInfo := vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  vk.DeviceSize(size),
		Usage: usage,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, handle, &reqs)
	reqs.Deref()

	withAddress := usage&bufferUsageShaderDeviceAddressBit != 0
	memory, err := allocateMemory(context, uint64(reqs.Size), uint32(reqs.MemoryTypeBits),
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit), withAddress)
	if err != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, handle, context.Allocator)
		return nil, err
	}

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, handle, memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	buffer := &VulkanBuffer{Handle: handle, Memory: memory, Size: size}
	if withAddress {
		buffer.Address = ext.GetBufferDeviceAddress(
			unsafe.Pointer(context.Device.LogicalDevice), unsafe.Pointer(handle))
	}
	return buffer, nil
}

// NewPreprocessBuffer creates the scratch buffer used by generated
// command preprocessing. Its usage bits only exist in the 64-bit
// flags, so they travel on the pNext chain, and its memory comes from
// whatever type the driver reports, not host-visible memory.
func NewPreprocessBuffer(context *VulkanContext, size uint64, typeBits uint32) (*VulkanBuffer, error) {
	usage2 := ext.NewBufferUsage2Chain(ext.PreprocessBufferUsage)
	defer usage2.Free()

	bufferCreateInfo := vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		PNext: usage2.Head(),
		Size:  vk.DeviceSize(size),
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create preprocess buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	memory, err := allocateMemory(context, size, typeBits, 0, true)
	if err != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, handle, context.Allocator)
		return nil, err
	}
	if res := vk.BindBufferMemory(context.Device.LogicalDevice, handle, memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind preprocess buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	buffer := &VulkanBuffer{Handle: handle, Memory: memory, Size: size}
	buffer.Address = ext.GetBufferDeviceAddress(
		unsafe.Pointer(context.Device.LogicalDevice), unsafe.Pointer(handle))
	return buffer, nil
}

// allocateMemory allocates device memory of the given size from a
// type matching typeBits and propertyFlags.
func allocateMemory(context *VulkanContext, size uint64, typeBits, propertyFlags uint32, withAddress bool) (vk.DeviceMemory, error) {
	memoryType := context.FindMemoryIndex(typeBits, propertyFlags)
	if memoryType < 0 {
		err := fmt.Errorf("no memory type matches bits 0x%x with flags 0x%x", typeBits, propertyFlags)
		core.LogError(err.Error())
		return vk.NullDeviceMemory, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: uint32(memoryType),
	}
	if withAddress {
		flagsInfo := vk.MemoryAllocateFlagsInfo{
			SType: vk.StructureTypeMemoryAllocateFlagsInfo,
			Flags: memoryAllocateDeviceAddressBit,
		}
		ref, _ := flagsInfo.PassRef()
		allocateInfo.PNext = unsafe.Pointer(ref)
	}

	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		err := fmt.Errorf("failed to allocate buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullDeviceMemory, err
	}
	return memory, nil
}

// Upload copies host data into the buffer through a transient mapping.
func (vb *VulkanBuffer) Upload(context *VulkanContext, data []byte) error {
	var ptr unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	copy(unsafe.Slice((*byte)(ptr), len(data)), data)
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
}
