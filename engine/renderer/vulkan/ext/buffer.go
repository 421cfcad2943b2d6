package ext

/*
#include <stdlib.h>
#include "ext.h"
*/
import "C"

import (
	"unsafe"
)

// BufferUsage2Chain is the VkBufferUsageFlags2CreateInfoKHR pNext
// chain for buffers whose usage bits only exist in the 64-bit flags
// introduced with maintenance5, such as the preprocess buffer.
type BufferUsage2Chain struct {
	arena carena
	head  unsafe.Pointer
}

// PreprocessBufferUsage marks a buffer as the scratch space for
// generated command preprocessing, addressable by GPU address.
const PreprocessBufferUsage uint64 = C.VK_BUFFER_USAGE_2_PREPROCESS_BUFFER_BIT_EXT |
	C.VK_BUFFER_USAGE_2_SHADER_DEVICE_ADDRESS_BIT_KHR

func NewBufferUsage2Chain(usage uint64) *BufferUsage2Chain {
	c := &BufferUsage2Chain{}
	info := (*C.VkBufferUsageFlags2CreateInfoKHR)(c.arena.alloc(C.sizeof_VkBufferUsageFlags2CreateInfoKHR))
	info.sType = C.VK_STRUCTURE_TYPE_BUFFER_USAGE_FLAGS_2_CREATE_INFO_KHR
	info.usage = C.VkBufferUsageFlags2KHR(usage)
	c.head = unsafe.Pointer(info)
	return c
}

func (c *BufferUsage2Chain) Head() unsafe.Pointer {
	return c.head
}

func (c *BufferUsage2Chain) Free() {
	c.arena.release()
	c.head = nil
}
