// Package ext binds the Vulkan entry points the renderer needs beyond
// the 1.1 surface of the vulkan bindings: VK_EXT_device_generated_commands,
// VK_EXT_shader_object, dynamic rendering and buffer device addresses.
// All procs are resolved through vkGetDeviceProcAddr at Load time, so
// no loader library is linked.
package ext

/*
#include <stdlib.h>
#include "ext.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Non-dispatchable handles owned by this package. They are opaque to
// callers and only round-trip back into ext calls.
type (
	IndirectCommandsLayout unsafe.Pointer
	IndirectExecutionSet   unsafe.Pointer
	Shader                 unsafe.Pointer
)

// Shader stage bits as used by the indirect commands layout and
// shader object calls.
const (
	ShaderStageVertexBit   uint32 = C.VK_SHADER_STAGE_VERTEX_BIT
	ShaderStageFragmentBit uint32 = C.VK_SHADER_STAGE_FRAGMENT_BIT
)

// Device extension names enabled alongside this package.
const (
	SwapchainExtensionName               = "VK_KHR_swapchain"
	DeviceGeneratedCommandsExtensionName = "VK_EXT_device_generated_commands"
	Maintenance5ExtensionName            = "VK_KHR_maintenance5"
	ShaderObjectExtensionName            = "VK_EXT_shader_object"
)

// Load resolves all required device procs. getInstanceProcAddr is the
// loader entry point (as handed out by glfw), instance and device are
// the live handles. Shader object procs are only resolved when
// shaderObject is set.
func Load(getInstanceProcAddr, instance, device unsafe.Pointer, shaderObject bool) error {
	missing := C.vkx_load(
		C.PFN_vkGetInstanceProcAddr(getInstanceProcAddr),
		C.VkInstance(instance),
		C.VkDevice(device),
		vkBool(shaderObject),
	)
	if missing != nil {
		return fmt.Errorf("missing Vulkan entry point %s", C.GoString(missing))
	}
	return nil
}

// GetBufferDeviceAddress returns the GPU address of a buffer created
// with shader device address usage.
func GetBufferDeviceAddress(device, buffer unsafe.Pointer) uint64 {
	return uint64(C.vkx_GetBufferDeviceAddress(C.VkDevice(device), C.VkBuffer(buffer)))
}

func vkBool(b bool) C.VkBool32 {
	if b {
		return C.VK_TRUE
	}
	return C.VK_FALSE
}

// carena tracks C heap allocations for one create call so nested
// structs never expose Go pointers to the driver.
type carena struct {
	ptrs []unsafe.Pointer
}

func (a *carena) alloc(n uintptr) unsafe.Pointer {
	p := C.calloc(1, C.size_t(n))
	a.ptrs = append(a.ptrs, p)
	return p
}

func (a *carena) release() {
	for _, p := range a.ptrs {
		C.free(p)
	}
	a.ptrs = nil
}
