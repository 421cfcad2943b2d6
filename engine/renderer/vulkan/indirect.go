package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/gears"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan/ext"
)

// One generated sequence per gear.
const GearCount = 3

const (
	// Layout of one indirect sequence: two execution set indices
	// followed by a VkDrawIndirectCommand, all uint32.
	indirectWordsPerRecord = 6
	indirectStride         = indirectWordsPerRecord * 4
	drawTokenOffset        = 8
)

// IndirectRecord is one device-generated draw: which execution set
// slot supplies the vertex stage and which vertex range to draw.
type IndirectRecord struct {
	ExecutionSetIndex uint32
	VertexCount       uint32
	FirstVertex       uint32
}

// pipelineVariantSlots maps each gear to its execution set slot when
// the set holds monolithic pipelines, one per color variant.
func pipelineVariantSlots() [GearCount]uint32 {
	return [GearCount]uint32{0, 1, 2}
}

// shaderVariantSlots maps each gear to the slot of its vertex shader
// when the set holds shader objects. Slot 1 is the shared fragment
// shader, so the second and third vertex shaders land on 2 and 3.
func shaderVariantSlots() [GearCount]uint32 {
	return [GearCount]uint32{0, 2, 3}
}

func buildIndirectRecords(descriptors [GearCount]gears.Descriptor, slots [GearCount]uint32) []IndirectRecord {
	records := make([]IndirectRecord, GearCount)
	for i := range records {
		records[i] = IndirectRecord{
			ExecutionSetIndex: slots[i],
			VertexCount:       descriptors[i].VertexCount,
			FirstVertex:       descriptors[i].FirstVertex,
		}
	}
	return records
}

// encodeIndirectRecords lays the records out exactly as the indirect
// commands layout consumes them. The second execution set index is
// always 1: for shader objects that is the shared fragment shader
// slot, for pipelines the word is padding.
func encodeIndirectRecords(records []IndirectRecord) []uint32 {
	words := make([]uint32, 0, len(records)*indirectWordsPerRecord)
	for _, r := range records {
		words = append(words,
			r.ExecutionSetIndex,
			1,
			r.VertexCount,
			1, // instanceCount
			r.FirstVertex,
			0, // firstInstance
		)
	}
	return words
}

// VulkanIndirect owns the device-generated commands state: the
// commands layout, the indirect buffer holding one sequence per gear
// and the preprocess buffer the driver scratches in.
type VulkanIndirect struct {
	CommandsLayout   ext.IndirectCommandsLayout
	IndirectBuffer   *VulkanBuffer
	PreprocessBuffer *VulkanBuffer
	sequenceCount    uint32
}

func NewIndirect(context *VulkanContext, pipelineLayout vk.PipelineLayout, executionSet ext.IndirectExecutionSet, records []IndirectRecord) (*VulkanIndirect, error) {
	vi := &VulkanIndirect{sequenceCount: uint32(len(records))}

	layout, err := ext.CreateCommandsLayout(
		unsafe.Pointer(context.Device.LogicalDevice),
		context.Device.ShaderObject,
		unsafe.Pointer(pipelineLayout),
		indirectStride,
		drawTokenOffset)
	if err != nil {
		return nil, err
	}
	vi.CommandsLayout = layout

	words := encodeIndirectRecords(records)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)

	indirectBuffer, err := NewBuffer(
		context,
		uint64(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageIndirectBufferBit)|vk.BufferUsageFlags(bufferUsageShaderDeviceAddressBit))
	if err != nil {
		return nil, err
	}
	vi.IndirectBuffer = indirectBuffer
	if err := vi.IndirectBuffer.Upload(context, data); err != nil {
		return nil, err
	}

	size, typeBits := ext.GetGeneratedCommandsMemoryRequirements(
		unsafe.Pointer(context.Device.LogicalDevice),
		executionSet,
		layout,
		vi.sequenceCount)
	if size > 0 {
		preprocessBuffer, err := NewPreprocessBuffer(context, size, typeBits)
		if err != nil {
			return nil, err
		}
		vi.PreprocessBuffer = preprocessBuffer
	}

	return vi, nil
}

// Execute records the generated draw of all sequences.
func (vi *VulkanIndirect) Execute(commandBuffer vk.CommandBuffer, executionSet ext.IndirectExecutionSet) {
	info := ext.GeneratedCommandsInfo{
		ShaderStages:     ext.ShaderStageVertexBit | ext.ShaderStageFragmentBit,
		ExecutionSet:     executionSet,
		CommandsLayout:   vi.CommandsLayout,
		IndirectAddress:  vi.IndirectBuffer.Address,
		MaxSequenceCount: vi.sequenceCount,
	}
	info.IndirectAddressSize = vi.IndirectBuffer.Size
	if vi.PreprocessBuffer != nil {
		info.PreprocessAddress = vi.PreprocessBuffer.Address
		info.PreprocessSize = vi.PreprocessBuffer.Size
	}
	ext.CmdExecuteGeneratedCommands(unsafe.Pointer(commandBuffer), false, &info)
}

func (vi *VulkanIndirect) Destroy(context *VulkanContext) {
	if vi.PreprocessBuffer != nil {
		vi.PreprocessBuffer.Destroy(context)
		vi.PreprocessBuffer = nil
	}
	if vi.IndirectBuffer != nil {
		vi.IndirectBuffer.Destroy(context)
		vi.IndirectBuffer = nil
	}
	if vi.CommandsLayout != nil {
		ext.DestroyCommandsLayout(unsafe.Pointer(context.Device.LogicalDevice), vi.CommandsLayout)
		vi.CommandsLayout = nil
	}
}
