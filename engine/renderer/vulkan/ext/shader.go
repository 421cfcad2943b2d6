package ext

/*
#include <stdlib.h>
#include <string.h>
#include "ext.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// ShaderCreateInfo describes one shader object. Every shader built
// here is indirect-bindable so it can live in an execution set.
type ShaderCreateInfo struct {
	Stage     uint32
	NextStage uint32
	// Code is the SPIR-V binary, a multiple of 4 bytes.
	Code []byte
	// SetLayout is the descriptor set layout visible to the shader.
	SetLayout unsafe.Pointer
	// PushConstantSize is the size of the vertex-stage push constant range.
	PushConstantSize uint32
}

// CreateShaders builds all shader objects in one call so the driver
// may link them together.
func CreateShaders(device unsafe.Pointer, infos []ShaderCreateInfo) ([]Shader, error) {
	var a carena
	defer a.release()

	entry := (*C.char)(a.alloc(5))
	copy(unsafe.Slice((*byte)(unsafe.Pointer(entry)), 5), "main\x00")

	cinfos := unsafe.Slice((*C.VkShaderCreateInfoEXT)(
		a.alloc(uintptr(len(infos))*C.sizeof_VkShaderCreateInfoEXT)), len(infos))
	for i, in := range infos {
		code := a.alloc(uintptr(len(in.Code)))
		copy(unsafe.Slice((*byte)(code), len(in.Code)), in.Code)

		layouts := (*[1]C.VkDescriptorSetLayout)(a.alloc(C.sizeof_VkDescriptorSetLayout))
		layouts[0] = C.VkDescriptorSetLayout(in.SetLayout)

		pushRange := (*C.VkPushConstantRange)(a.alloc(C.sizeof_VkPushConstantRange))
		pushRange.stageFlags = C.VK_SHADER_STAGE_VERTEX_BIT
		pushRange.offset = 0
		pushRange.size = C.uint32_t(in.PushConstantSize)

		cinfos[i].sType = C.VK_STRUCTURE_TYPE_SHADER_CREATE_INFO_EXT
		cinfos[i].flags = C.VK_SHADER_CREATE_INDIRECT_BINDABLE_BIT_EXT
		cinfos[i].stage = C.VkShaderStageFlagBits(in.Stage)
		cinfos[i].nextStage = C.VkShaderStageFlags(in.NextStage)
		cinfos[i].codeType = C.VK_SHADER_CODE_TYPE_SPIRV_EXT
		cinfos[i].codeSize = C.size_t(len(in.Code))
		cinfos[i].pCode = code
		cinfos[i].pName = entry
		cinfos[i].setLayoutCount = 1
		cinfos[i].pSetLayouts = &layouts[0]
		cinfos[i].pushConstantRangeCount = 1
		cinfos[i].pPushConstantRanges = pushRange
	}

	out := unsafe.Slice((*C.VkShaderEXT)(
		a.alloc(uintptr(len(infos))*C.sizeof_VkShaderEXT)), len(infos))
	res := C.vkx_CreateShadersEXT(C.VkDevice(device), C.uint32_t(len(infos)), &cinfos[0], &out[0])
	if res != C.VK_SUCCESS {
		return nil, fmt.Errorf("vkCreateShadersEXT failed with code %d", int32(res))
	}

	shaders := make([]Shader, len(infos))
	for i := range out {
		shaders[i] = Shader(unsafe.Pointer(out[i]))
	}
	return shaders, nil
}

func DestroyShader(device unsafe.Pointer, shader Shader) {
	C.vkx_DestroyShaderEXT(C.VkDevice(device), C.VkShaderEXT(shader))
}

// CmdBindShaders binds a vertex and a fragment shader object.
func CmdBindShaders(cmd unsafe.Pointer, vertex, fragment Shader) {
	stages := [2]C.VkShaderStageFlagBits{
		C.VK_SHADER_STAGE_VERTEX_BIT,
		C.VK_SHADER_STAGE_FRAGMENT_BIT,
	}
	shaders := [2]C.VkShaderEXT{
		C.VkShaderEXT(vertex),
		C.VkShaderEXT(fragment),
	}
	C.vkx_CmdBindShadersEXT(C.VkCommandBuffer(cmd), 2, &stages[0], &shaders[0])
}

// VertexBinding describes one vertex buffer binding for
// vkCmdSetVertexInputEXT.
type VertexBinding struct {
	Binding uint32
	Stride  uint32
}

// VertexAttribute describes one R32G32B32_SFLOAT attribute.
type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Offset   uint32
}

func CmdSetVertexInput(cmd unsafe.Pointer, bindings []VertexBinding, attrs []VertexAttribute) {
	var a carena
	defer a.release()

	cb := unsafe.Slice((*C.VkVertexInputBindingDescription2EXT)(
		a.alloc(uintptr(len(bindings))*C.sizeof_VkVertexInputBindingDescription2EXT)), len(bindings))
	for i, b := range bindings {
		cb[i].sType = C.VK_STRUCTURE_TYPE_VERTEX_INPUT_BINDING_DESCRIPTION_2_EXT
		cb[i].binding = C.uint32_t(b.Binding)
		cb[i].stride = C.uint32_t(b.Stride)
		cb[i].inputRate = C.VK_VERTEX_INPUT_RATE_VERTEX
		cb[i].divisor = 1
	}

	ca := unsafe.Slice((*C.VkVertexInputAttributeDescription2EXT)(
		a.alloc(uintptr(len(attrs))*C.sizeof_VkVertexInputAttributeDescription2EXT)), len(attrs))
	for i, at := range attrs {
		ca[i].sType = C.VK_STRUCTURE_TYPE_VERTEX_INPUT_ATTRIBUTE_DESCRIPTION_2_EXT
		ca[i].location = C.uint32_t(at.Location)
		ca[i].binding = C.uint32_t(at.Binding)
		ca[i].format = C.VK_FORMAT_R32G32B32_SFLOAT
		ca[i].offset = C.uint32_t(at.Offset)
	}

	C.vkx_CmdSetVertexInputEXT(C.VkCommandBuffer(cmd),
		C.uint32_t(len(bindings)), &cb[0], C.uint32_t(len(attrs)), &ca[0])
}

// CmdSetViewportWithCount sets a single full-size viewport.
func CmdSetViewportWithCount(cmd unsafe.Pointer, width, height uint32) {
	var vp C.VkViewport
	vp.x = 0
	vp.y = 0
	vp.width = C.float(width)
	vp.height = C.float(height)
	vp.minDepth = 0
	vp.maxDepth = 1
	C.vkx_CmdSetViewportWithCount(C.VkCommandBuffer(cmd), 1, &vp)
}

// CmdSetScissorWithCount sets a single full-size scissor.
func CmdSetScissorWithCount(cmd unsafe.Pointer, width, height uint32) {
	var sc C.VkRect2D
	sc.extent.width = C.uint32_t(width)
	sc.extent.height = C.uint32_t(height)
	C.vkx_CmdSetScissorWithCount(C.VkCommandBuffer(cmd), 1, &sc)
}

// CmdSetGearsRasterState programs the full dynamic state required by
// shader objects: triangle strips, back-face culling, depth testing
// and opaque color writes, matching the fixed state baked into the
// pipeline variants.
func CmdSetGearsRasterState(cmd unsafe.Pointer, samples uint32) {
	c := C.VkCommandBuffer(cmd)
	C.vkx_CmdSetPrimitiveTopologyEXT(c, C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_STRIP)
	C.vkx_CmdSetPrimitiveRestartEnableEXT(c, C.VK_FALSE)
	C.vkx_CmdSetRasterizerDiscardEnableEXT(c, C.VK_FALSE)
	C.vkx_CmdSetCullModeEXT(c, C.VK_CULL_MODE_BACK_BIT)
	C.vkx_CmdSetFrontFaceEXT(c, C.VK_FRONT_FACE_COUNTER_CLOCKWISE)
	C.vkx_CmdSetDepthTestEnableEXT(c, C.VK_TRUE)
	C.vkx_CmdSetDepthWriteEnableEXT(c, C.VK_TRUE)
	C.vkx_CmdSetDepthCompareOpEXT(c, C.VK_COMPARE_OP_LESS_OR_EQUAL)
	C.vkx_CmdSetDepthBoundsTestEnableEXT(c, C.VK_FALSE)
	C.vkx_CmdSetPolygonModeEXT(c, C.VK_POLYGON_MODE_FILL)
	C.vkx_CmdSetRasterizationSamplesEXT(c, C.VkSampleCountFlagBits(samples))
	C.vkx_CmdSetLogicOpEnableEXT(c, C.VK_FALSE)
	C.vkx_CmdSetAlphaToCoverageEnableEXT(c, C.VK_FALSE)
	C.vkx_CmdSetAlphaToOneEnableEXT(c, C.VK_FALSE)
	C.vkx_CmdSetDepthClampEnableEXT(c, C.VK_FALSE)

	mask := C.VkSampleMask(0xffffffff)
	C.vkx_CmdSetSampleMaskEXT(c, C.VkSampleCountFlagBits(samples), &mask)

	writeMask := C.VkColorComponentFlags(C.VK_COLOR_COMPONENT_R_BIT |
		C.VK_COLOR_COMPONENT_G_BIT |
		C.VK_COLOR_COMPONENT_B_BIT |
		C.VK_COLOR_COMPONENT_A_BIT)
	C.vkx_CmdSetColorWriteMaskEXT(c, 0, 1, &writeMask)

	blend := C.VkBool32(C.VK_FALSE)
	C.vkx_CmdSetColorBlendEnableEXT(c, 0, 1, &blend)
}
