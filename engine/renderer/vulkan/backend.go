package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/gears"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan/ext"
)

const (
	// Push constants: angle, the two view rotation angles and the
	// frustum half-height, all float32.
	pushConstantSize = 4 * 4
	// The uniform block is a single projection matrix.
	uniformBufferSize = 16 * 4
	// Positions sit at the start of a vertex, normals right after.
	normalsOffset = 3 * 4
)

// variantBackend abstracts over the two execution set flavors: one
// monolithic pipeline per gear color, or indirect-bindable shader
// objects sharing a fragment shader.
type variantBackend interface {
	// Initialize builds the per-gear variants and the execution set.
	Initialize(context *VulkanContext, pass *VulkanGearPass) error
	// VariantSlots returns the execution set index of each gear.
	VariantSlots() [GearCount]uint32
	ExecutionSet() ext.IndirectExecutionSet
	// Bind records the state setup common to all gears: variant 0
	// plus whatever state the flavor leaves dynamic.
	Bind(context *VulkanContext, commandBuffer vk.CommandBuffer)
	// DrawDirect draws each gear with plain vkCmdDraw, switching
	// variants on the CPU. Used to cross-check the generated path.
	DrawDirect(context *VulkanContext, commandBuffer vk.CommandBuffer, descriptors [GearCount]gears.Descriptor)
	// Rebuild recreates the variants from new shader code and points
	// the execution set slots at them.
	Rebuild(context *VulkanContext, pass *VulkanGearPass) error
	Destroy(context *VulkanContext)
}

// VulkanGearPass owns everything the gear draw needs: geometry,
// uniforms, the variant backend and the generated commands state.
type VulkanGearPass struct {
	SetLayout      vk.DescriptorSetLayout
	PipelineLayout vk.PipelineLayout
	DescriptorPool vk.DescriptorPool
	DescriptorSet  vk.DescriptorSet

	UniformBuffer *VulkanBuffer
	VertexBuffer  *VulkanBuffer
	Gears         [GearCount]gears.Descriptor

	Shaders   *VulkanShaderSet
	shaderDir string

	backend  variantBackend
	Indirect *VulkanIndirect

	// Reference draws each gear directly instead of executing the
	// generated commands.
	Reference bool
}

func NewGearPass(context *VulkanContext, shaderDir string, reference bool) (*VulkanGearPass, error) {
	pass := &VulkanGearPass{
		shaderDir: shaderDir,
		Reference: reference,
	}

	shaders, err := LoadShaderSet(shaderDir)
	if err != nil {
		return nil, err
	}
	pass.Shaders = shaders

	if err := pass.createLayouts(context); err != nil {
		return nil, err
	}

	if context.Device.ShaderObject {
		pass.backend = &shaderObjectBackend{}
	} else {
		pass.backend = &pipelineBackend{}
	}
	if err := pass.backend.Initialize(context, pass); err != nil {
		return nil, err
	}

	if err := pass.createGeometry(context); err != nil {
		return nil, err
	}
	if err := pass.createUniforms(context); err != nil {
		return nil, err
	}

	records := buildIndirectRecords(pass.Gears, pass.backend.VariantSlots())
	indirect, err := NewIndirect(context, pass.PipelineLayout, pass.backend.ExecutionSet(), records)
	if err != nil {
		return nil, err
	}
	pass.Indirect = indirect

	core.LogInfo("Gear pass initialized.")
	return pass, nil
}

func (gp *VulkanGearPass) createLayouts(context *VulkanContext) error {
	setLayoutCreateInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			},
		},
	}
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &setLayoutCreateInfo, context.Allocator, &gp.SetLayout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{gp.SetLayout},
		PPushConstantRanges: []vk.PushConstantRange{
			{
				StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
				Offset:     0,
				Size:       pushConstantSize,
			},
		},
		PushConstantRangeCount: 1,
	}
	if res := vk.CreatePipelineLayout(context.Device.LogicalDevice, &pipelineLayoutCreateInfo, context.Allocator, &gp.PipelineLayout); res != vk.Success {
		err := fmt.Errorf("failed to create pipeline layout: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (gp *VulkanGearPass) createGeometry(context *VulkanContext) error {
	verts, descriptors := gears.Build()
	gp.Gears = descriptors

	data := unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*4)
	vertexBuffer, err := NewBuffer(context, uint64(len(data)), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return err
	}
	gp.VertexBuffer = vertexBuffer
	return gp.VertexBuffer.Upload(context, data)
}

func (gp *VulkanGearPass) createUniforms(context *VulkanContext) error {
	uniformBuffer, err := NewBuffer(
		context,
		uniformBufferSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit))
	if err != nil {
		return err
	}
	gp.UniformBuffer = uniformBuffer

	poolCreateInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{
			{
				Type:            vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
			},
		},
	}
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolCreateInfo, context.Allocator, &gp.DescriptorPool); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     gp.DescriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{gp.SetLayout},
	}
	descriptorSets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &descriptorSets[0]); res != vk.Success {
		err := fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	gp.DescriptorSet = descriptorSets[0]

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          gp.DescriptorSet,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{
			{
				Buffer: gp.UniformBuffer.Handle,
				Offset: 0,
				Range:  uniformBufferSize,
			},
		},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	return nil
}

// Draw records the gear draw into the command buffer. The uniform
// buffer must already hold the current projection.
func (gp *VulkanGearPass) Draw(context *VulkanContext, commandBuffer vk.CommandBuffer, scene *gears.Scene) {
	vk.CmdBindVertexBuffers(commandBuffer, 0, 2,
		[]vk.Buffer{gp.VertexBuffer.Handle, gp.VertexBuffer.Handle},
		[]vk.DeviceSize{0, normalsOffset})

	gp.backend.Bind(context, commandBuffer)

	vk.CmdBindDescriptorSets(commandBuffer,
		vk.PipelineBindPointGraphics,
		gp.PipelineLayout,
		0, 1,
		[]vk.DescriptorSet{gp.DescriptorSet}, 0, nil)

	h := float32(context.FramebufferHeight) / float32(context.FramebufferWidth)
	pushConstants := scene.PushConstants(h)
	vk.CmdPushConstants(commandBuffer,
		gp.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0, pushConstantSize,
		unsafe.Pointer(&pushConstants[0]))

	if gp.Reference {
		gp.backend.DrawDirect(context, commandBuffer, gp.Gears)
		return
	}
	gp.Indirect.Execute(commandBuffer, gp.backend.ExecutionSet())
}

// ReloadShaders re-reads the compiled shaders and swaps the execution
// set variants in place. The device must be idle.
func (gp *VulkanGearPass) ReloadShaders(context *VulkanContext) error {
	shaders, err := LoadShaderSet(gp.shaderDir)
	if err != nil {
		return err
	}
	gp.Shaders = shaders
	if err := gp.backend.Rebuild(context, gp); err != nil {
		return err
	}
	core.LogInfo("Shaders reloaded.")
	return nil
}

func (gp *VulkanGearPass) Destroy(context *VulkanContext) {
	if gp.Indirect != nil {
		gp.Indirect.Destroy(context)
		gp.Indirect = nil
	}
	if gp.backend != nil {
		gp.backend.Destroy(context)
		gp.backend = nil
	}
	if gp.UniformBuffer != nil {
		gp.UniformBuffer.Destroy(context)
		gp.UniformBuffer = nil
	}
	if gp.VertexBuffer != nil {
		gp.VertexBuffer.Destroy(context)
		gp.VertexBuffer = nil
	}
	if gp.DescriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, gp.DescriptorPool, context.Allocator)
		gp.DescriptorPool = vk.NullDescriptorPool
	}
	if gp.PipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(context.Device.LogicalDevice, gp.PipelineLayout, context.Allocator)
		gp.PipelineLayout = vk.NullPipelineLayout
	}
	if gp.SetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, gp.SetLayout, context.Allocator)
		gp.SetLayout = vk.NullDescriptorSetLayout
	}
}
