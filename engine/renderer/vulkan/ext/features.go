package ext

/*
#include <stdlib.h>
#include "ext.h"
*/
import "C"

import (
	"unsafe"
)

// DeviceFeatures is the feature chain handed to device creation:
// multi-draw indirect, device generated commands, maintenance5,
// buffer device addresses, dynamic rendering and optionally shader
// objects. It lives in C memory so it can sit on the create info
// pNext until the device exists.
type DeviceFeatures struct {
	arena carena
	head  unsafe.Pointer
}

func NewDeviceFeatures(shaderObject bool) *DeviceFeatures {
	f := &DeviceFeatures{}

	var shobj *C.VkPhysicalDeviceShaderObjectFeaturesEXT
	if shaderObject {
		shobj = (*C.VkPhysicalDeviceShaderObjectFeaturesEXT)(f.arena.alloc(C.sizeof_VkPhysicalDeviceShaderObjectFeaturesEXT))
		shobj.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_SHADER_OBJECT_FEATURES_EXT
		shobj.shaderObject = C.VK_TRUE
	}

	feats13 := (*C.VkPhysicalDeviceVulkan13Features)(f.arena.alloc(C.sizeof_VkPhysicalDeviceVulkan13Features))
	feats13.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_3_FEATURES
	feats13.dynamicRendering = C.VK_TRUE
	if shobj != nil {
		feats13.pNext = unsafe.Pointer(shobj)
	}

	feats12 := (*C.VkPhysicalDeviceVulkan12Features)(f.arena.alloc(C.sizeof_VkPhysicalDeviceVulkan12Features))
	feats12.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_2_FEATURES
	feats12.pNext = unsafe.Pointer(feats13)
	feats12.bufferDeviceAddress = C.VK_TRUE

	maint5 := (*C.VkPhysicalDeviceMaintenance5FeaturesKHR)(f.arena.alloc(C.sizeof_VkPhysicalDeviceMaintenance5FeaturesKHR))
	maint5.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_MAINTENANCE_5_FEATURES_KHR
	maint5.pNext = unsafe.Pointer(feats12)
	maint5.maintenance5 = C.VK_TRUE

	dgc := (*C.VkPhysicalDeviceDeviceGeneratedCommandsFeaturesEXT)(f.arena.alloc(C.sizeof_VkPhysicalDeviceDeviceGeneratedCommandsFeaturesEXT))
	dgc.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_DEVICE_GENERATED_COMMANDS_FEATURES_EXT
	dgc.pNext = unsafe.Pointer(maint5)
	dgc.deviceGeneratedCommands = C.VK_TRUE

	feats2 := (*C.VkPhysicalDeviceFeatures2)(f.arena.alloc(C.sizeof_VkPhysicalDeviceFeatures2))
	feats2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_FEATURES_2
	feats2.pNext = unsafe.Pointer(dgc)
	feats2.features.multiDrawIndirect = C.VK_TRUE

	f.head = unsafe.Pointer(feats2)
	return f
}

func (f *DeviceFeatures) Head() unsafe.Pointer {
	return f.head
}

func (f *DeviceFeatures) Free() {
	f.arena.release()
	f.head = nil
}
