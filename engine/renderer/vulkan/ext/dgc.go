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

const allStages = C.VK_SHADER_STAGE_VERTEX_BIT | C.VK_SHADER_STAGE_FRAGMENT_BIT

// CreateCommandsLayout builds the two-token indirect commands layout
// used for every generated sequence: an execution set token at offset
// 0 selecting the variant, followed by a draw token.
func CreateCommandsLayout(device unsafe.Pointer, shaderObject bool, pipelineLayout unsafe.Pointer, stride, drawTokenOffset uint32) (IndirectCommandsLayout, error) {
	var a carena
	defer a.release()

	est := (*C.VkIndirectCommandsExecutionSetTokenEXT)(a.alloc(C.sizeof_VkIndirectCommandsExecutionSetTokenEXT))
	if shaderObject {
		est._type = C.VK_INDIRECT_EXECUTION_SET_INFO_TYPE_SHADER_OBJECTS_EXT
	} else {
		est._type = C.VK_INDIRECT_EXECUTION_SET_INFO_TYPE_PIPELINES_EXT
	}
	est.shaderStages = allStages

	tokens := (*[2]C.VkIndirectCommandsLayoutTokenEXT)(a.alloc(2 * C.sizeof_VkIndirectCommandsLayoutTokenEXT))
	tokens[0].sType = C.VK_STRUCTURE_TYPE_INDIRECT_COMMANDS_LAYOUT_TOKEN_EXT
	tokens[0]._type = C.VK_INDIRECT_COMMANDS_TOKEN_TYPE_EXECUTION_SET_EXT
	*(*unsafe.Pointer)(unsafe.Pointer(&tokens[0].data)) = unsafe.Pointer(est)
	tokens[0].offset = 0
	tokens[1].sType = C.VK_STRUCTURE_TYPE_INDIRECT_COMMANDS_LAYOUT_TOKEN_EXT
	tokens[1]._type = C.VK_INDIRECT_COMMANDS_TOKEN_TYPE_DRAW_EXT
	tokens[1].offset = C.uint32_t(drawTokenOffset)

	var info C.VkIndirectCommandsLayoutCreateInfoEXT
	info.sType = C.VK_STRUCTURE_TYPE_INDIRECT_COMMANDS_LAYOUT_CREATE_INFO_EXT
	info.shaderStages = allStages
	info.indirectStride = C.uint32_t(stride)
	info.pipelineLayout = C.VkPipelineLayout(pipelineLayout)
	info.tokenCount = 2
	info.pTokens = &tokens[0]

	var layout C.VkIndirectCommandsLayoutEXT
	res := C.vkx_CreateIndirectCommandsLayoutEXT(C.VkDevice(device), &info, &layout)
	if res != C.VK_SUCCESS {
		return nil, fmt.Errorf("vkCreateIndirectCommandsLayoutEXT failed with code %d", int32(res))
	}
	return IndirectCommandsLayout(unsafe.Pointer(layout)), nil
}

func DestroyCommandsLayout(device unsafe.Pointer, layout IndirectCommandsLayout) {
	C.vkx_DestroyIndirectCommandsLayoutEXT(C.VkDevice(device), C.VkIndirectCommandsLayoutEXT(layout))
}

// CreateExecutionSetPipelines creates an indirect execution set backed
// by monolithic pipelines, seeded with initialPipeline in slot 0.
func CreateExecutionSetPipelines(device, initialPipeline unsafe.Pointer, maxPipelineCount uint32) (IndirectExecutionSet, error) {
	var a carena
	defer a.release()

	pinfo := (*C.VkIndirectExecutionSetPipelineInfoEXT)(a.alloc(C.sizeof_VkIndirectExecutionSetPipelineInfoEXT))
	pinfo.sType = C.VK_STRUCTURE_TYPE_INDIRECT_EXECUTION_SET_PIPELINE_INFO_EXT
	pinfo.initialPipeline = C.VkPipeline(initialPipeline)
	pinfo.maxPipelineCount = C.uint32_t(maxPipelineCount)

	var info C.VkIndirectExecutionSetCreateInfoEXT
	info.sType = C.VK_STRUCTURE_TYPE_INDIRECT_EXECUTION_SET_CREATE_INFO_EXT
	info._type = C.VK_INDIRECT_EXECUTION_SET_INFO_TYPE_PIPELINES_EXT
	*(*unsafe.Pointer)(unsafe.Pointer(&info.info)) = unsafe.Pointer(pinfo)

	var set C.VkIndirectExecutionSetEXT
	res := C.vkx_CreateIndirectExecutionSetEXT(C.VkDevice(device), &info, &set)
	if res != C.VK_SUCCESS {
		return nil, fmt.Errorf("vkCreateIndirectExecutionSetEXT failed with code %d", int32(res))
	}
	return IndirectExecutionSet(unsafe.Pointer(set)), nil
}

// CreateExecutionSetShaders creates an indirect execution set backed
// by shader objects. The initial shaders fill slots 0 (vertex) and 1
// (fragment); the per-stage set layouts and the vertex push constant
// range must match the shaders.
func CreateExecutionSetShaders(device unsafe.Pointer, vertex, fragment Shader, setLayout unsafe.Pointer, pushConstantSize, maxShaderCount uint32) (IndirectExecutionSet, error) {
	var a carena
	defer a.release()

	shaders := (*[2]C.VkShaderEXT)(a.alloc(2 * C.sizeof_VkShaderEXT))
	shaders[0] = C.VkShaderEXT(vertex)
	shaders[1] = C.VkShaderEXT(fragment)

	layouts := (*[1]C.VkDescriptorSetLayout)(a.alloc(C.sizeof_VkDescriptorSetLayout))
	layouts[0] = C.VkDescriptorSetLayout(setLayout)

	layoutInfos := (*[2]C.VkIndirectExecutionSetShaderLayoutInfoEXT)(a.alloc(2 * C.sizeof_VkIndirectExecutionSetShaderLayoutInfoEXT))
	layoutInfos[0].sType = C.VK_STRUCTURE_TYPE_INDIRECT_EXECUTION_SET_SHADER_LAYOUT_INFO_EXT
	layoutInfos[0].setLayoutCount = 1
	layoutInfos[0].pSetLayouts = &layouts[0]
	layoutInfos[1].sType = C.VK_STRUCTURE_TYPE_INDIRECT_EXECUTION_SET_SHADER_LAYOUT_INFO_EXT
	layoutInfos[1].setLayoutCount = 0

	pushRange := (*C.VkPushConstantRange)(a.alloc(C.sizeof_VkPushConstantRange))
	pushRange.stageFlags = C.VK_SHADER_STAGE_VERTEX_BIT
	pushRange.offset = 0
	pushRange.size = C.uint32_t(pushConstantSize)

	sinfo := (*C.VkIndirectExecutionSetShaderInfoEXT)(a.alloc(C.sizeof_VkIndirectExecutionSetShaderInfoEXT))
	sinfo.sType = C.VK_STRUCTURE_TYPE_INDIRECT_EXECUTION_SET_SHADER_INFO_EXT
	sinfo.shaderCount = 2
	sinfo.pInitialShaders = &shaders[0]
	sinfo.pSetLayoutInfos = &layoutInfos[0]
	sinfo.maxShaderCount = C.uint32_t(maxShaderCount)
	sinfo.pushConstantRangeCount = 1
	sinfo.pPushConstantRanges = pushRange

	var info C.VkIndirectExecutionSetCreateInfoEXT
	info.sType = C.VK_STRUCTURE_TYPE_INDIRECT_EXECUTION_SET_CREATE_INFO_EXT
	info._type = C.VK_INDIRECT_EXECUTION_SET_INFO_TYPE_SHADER_OBJECTS_EXT
	*(*unsafe.Pointer)(unsafe.Pointer(&info.info)) = unsafe.Pointer(sinfo)

	var set C.VkIndirectExecutionSetEXT
	res := C.vkx_CreateIndirectExecutionSetEXT(C.VkDevice(device), &info, &set)
	if res != C.VK_SUCCESS {
		return nil, fmt.Errorf("vkCreateIndirectExecutionSetEXT failed with code %d", int32(res))
	}
	return IndirectExecutionSet(unsafe.Pointer(set)), nil
}

func DestroyExecutionSet(device unsafe.Pointer, set IndirectExecutionSet) {
	C.vkx_DestroyIndirectExecutionSetEXT(C.VkDevice(device), C.VkIndirectExecutionSetEXT(set))
}

// ExecutionSetPipelineWrite registers a pipeline into an execution set slot.
type ExecutionSetPipelineWrite struct {
	Index    uint32
	Pipeline unsafe.Pointer
}

func UpdateExecutionSetPipelines(device unsafe.Pointer, set IndirectExecutionSet, writes []ExecutionSetPipelineWrite) {
	if len(writes) == 0 {
		return
	}
	var a carena
	defer a.release()

	cw := unsafe.Slice((*C.VkWriteIndirectExecutionSetPipelineEXT)(
		a.alloc(uintptr(len(writes))*C.sizeof_VkWriteIndirectExecutionSetPipelineEXT)), len(writes))
	for i, w := range writes {
		cw[i].sType = C.VK_STRUCTURE_TYPE_WRITE_INDIRECT_EXECUTION_SET_PIPELINE_EXT
		cw[i].index = C.uint32_t(w.Index)
		cw[i].pipeline = C.VkPipeline(w.Pipeline)
	}
	C.vkx_UpdateIndirectExecutionSetPipelineEXT(C.VkDevice(device),
		C.VkIndirectExecutionSetEXT(set), C.uint32_t(len(writes)), &cw[0])
}

// ExecutionSetShaderWrite registers a shader object into an execution set slot.
type ExecutionSetShaderWrite struct {
	Index  uint32
	Shader Shader
}

func UpdateExecutionSetShaders(device unsafe.Pointer, set IndirectExecutionSet, writes []ExecutionSetShaderWrite) {
	if len(writes) == 0 {
		return
	}
	var a carena
	defer a.release()

	cw := unsafe.Slice((*C.VkWriteIndirectExecutionSetShaderEXT)(
		a.alloc(uintptr(len(writes))*C.sizeof_VkWriteIndirectExecutionSetShaderEXT)), len(writes))
	for i, w := range writes {
		cw[i].sType = C.VK_STRUCTURE_TYPE_WRITE_INDIRECT_EXECUTION_SET_SHADER_EXT
		cw[i].index = C.uint32_t(w.Index)
		cw[i].shader = C.VkShaderEXT(w.Shader)
	}
	C.vkx_UpdateIndirectExecutionSetShaderEXT(C.VkDevice(device),
		C.VkIndirectExecutionSetEXT(set), C.uint32_t(len(writes)), &cw[0])
}

// GetGeneratedCommandsMemoryRequirements sizes the preprocess buffer
// for up to maxSequenceCount generated sequences.
func GetGeneratedCommandsMemoryRequirements(device unsafe.Pointer, set IndirectExecutionSet, layout IndirectCommandsLayout, maxSequenceCount uint32) (uint64, uint32) {
	var info C.VkGeneratedCommandsMemoryRequirementsInfoEXT
	info.sType = C.VK_STRUCTURE_TYPE_GENERATED_COMMANDS_MEMORY_REQUIREMENTS_INFO_EXT
	info.indirectExecutionSet = C.VkIndirectExecutionSetEXT(set)
	info.indirectCommandsLayout = C.VkIndirectCommandsLayoutEXT(layout)
	info.maxSequenceCount = C.uint32_t(maxSequenceCount)

	var reqs C.VkMemoryRequirements2
	reqs.sType = C.VK_STRUCTURE_TYPE_MEMORY_REQUIREMENTS_2
	C.vkx_GetGeneratedCommandsMemoryRequirementsEXT(C.VkDevice(device), &info, &reqs)
	return uint64(reqs.memoryRequirements.size), uint32(reqs.memoryRequirements.memoryTypeBits)
}

// GeneratedCommandsInfo parameterizes one vkCmdExecuteGeneratedCommandsEXT call.
type GeneratedCommandsInfo struct {
	ShaderStages        uint32
	ExecutionSet        IndirectExecutionSet
	CommandsLayout      IndirectCommandsLayout
	IndirectAddress     uint64
	IndirectAddressSize uint64
	PreprocessAddress   uint64
	PreprocessSize      uint64
	MaxSequenceCount    uint32
}

func CmdExecuteGeneratedCommands(cmd unsafe.Pointer, isPreprocessed bool, gc *GeneratedCommandsInfo) {
	var info C.VkGeneratedCommandsInfoEXT
	info.sType = C.VK_STRUCTURE_TYPE_GENERATED_COMMANDS_INFO_EXT
	info.shaderStages = C.VkShaderStageFlags(gc.ShaderStages)
	info.indirectExecutionSet = C.VkIndirectExecutionSetEXT(gc.ExecutionSet)
	info.indirectCommandsLayout = C.VkIndirectCommandsLayoutEXT(gc.CommandsLayout)
	info.indirectAddress = C.VkDeviceAddress(gc.IndirectAddress)
	info.indirectAddressSize = C.VkDeviceSize(gc.IndirectAddressSize)
	info.preprocessAddress = C.VkDeviceAddress(gc.PreprocessAddress)
	info.preprocessSize = C.VkDeviceSize(gc.PreprocessSize)
	info.maxSequenceCount = C.uint32_t(gc.MaxSequenceCount)
	C.vkx_CmdExecuteGeneratedCommandsEXT(C.VkCommandBuffer(cmd), vkBool(isPreprocessed), &info)
}
