package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/gears"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan/ext"
)

// Vertex shaders fill slots 0, 2 and 3 of the execution set; slot 1
// is the shared fragment shader.
const shaderObjectSetSize = GearCount + 1

// shaderObjectBackend renders the gears through indirect-bindable
// shader objects, with all pipeline state set dynamically.
type shaderObjectBackend struct {
	vertexShaders  [GearCount]ext.Shader
	fragmentShader ext.Shader
	executionSet   ext.IndirectExecutionSet
}

func (sb *shaderObjectBackend) Initialize(context *VulkanContext, pass *VulkanGearPass) error {
	if err := sb.createShaders(context, pass); err != nil {
		return err
	}

	executionSet, err := ext.CreateExecutionSetShaders(
		unsafe.Pointer(context.Device.LogicalDevice),
		sb.vertexShaders[0],
		sb.fragmentShader,
		unsafe.Pointer(pass.SetLayout),
		pushConstantSize,
		shaderObjectSetSize)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	sb.executionSet = executionSet

	// Slots 0 and 1 hold the initial vertex and fragment shaders.
	ext.UpdateExecutionSetShaders(
		unsafe.Pointer(context.Device.LogicalDevice),
		sb.executionSet,
		[]ext.ExecutionSetShaderWrite{
			{Index: 2, Shader: sb.vertexShaders[1]},
			{Index: 3, Shader: sb.vertexShaders[2]},
		})
	return nil
}

func (sb *shaderObjectBackend) createShaders(context *VulkanContext, pass *VulkanGearPass) error {
	infos := make([]ext.ShaderCreateInfo, 0, shaderObjectSetSize)
	for i := 0; i < GearCount; i++ {
		infos = append(infos, ext.ShaderCreateInfo{
			Stage:            ext.ShaderStageVertexBit,
			NextStage:        ext.ShaderStageFragmentBit,
			Code:             pass.Shaders.Vertex[i],
			SetLayout:        unsafe.Pointer(pass.SetLayout),
			PushConstantSize: pushConstantSize,
		})
	}
	infos = append(infos, ext.ShaderCreateInfo{
		Stage:            ext.ShaderStageFragmentBit,
		Code:             pass.Shaders.Fragment,
		SetLayout:        unsafe.Pointer(pass.SetLayout),
		PushConstantSize: pushConstantSize,
	})

	shaders, err := ext.CreateShaders(unsafe.Pointer(context.Device.LogicalDevice), infos)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	for i := 0; i < GearCount; i++ {
		sb.vertexShaders[i] = shaders[i]
	}
	sb.fragmentShader = shaders[GearCount]
	return nil
}

func (sb *shaderObjectBackend) VariantSlots() [GearCount]uint32 {
	return shaderVariantSlots()
}

func (sb *shaderObjectBackend) ExecutionSet() ext.IndirectExecutionSet {
	return sb.executionSet
}

func (sb *shaderObjectBackend) Bind(context *VulkanContext, commandBuffer vk.CommandBuffer) {
	cmd := unsafe.Pointer(commandBuffer)

	ext.CmdBindShaders(cmd, sb.vertexShaders[0], sb.fragmentShader)

	ext.CmdSetViewportWithCount(cmd, context.FramebufferWidth, context.FramebufferHeight)
	ext.CmdSetScissorWithCount(cmd, context.FramebufferWidth, context.FramebufferHeight)
	ext.CmdSetVertexInput(cmd,
		[]ext.VertexBinding{
			{Binding: 0, Stride: gears.VertexStride * 4},
			{Binding: 1, Stride: gears.VertexStride * 4},
		},
		[]ext.VertexAttribute{
			{Location: 0, Binding: 0, Offset: 0},
			{Location: 1, Binding: 1, Offset: 0},
		})
	ext.CmdSetGearsRasterState(cmd, uint32(context.Device.SampleCount))
}

func (sb *shaderObjectBackend) DrawDirect(context *VulkanContext, commandBuffer vk.CommandBuffer, descriptors [GearCount]gears.Descriptor) {
	for i := 0; i < GearCount; i++ {
		ext.CmdBindShaders(unsafe.Pointer(commandBuffer), sb.vertexShaders[i], sb.fragmentShader)
		vk.CmdDraw(commandBuffer, descriptors[i].VertexCount, 1, descriptors[i].FirstVertex, 0)
	}
}

func (sb *shaderObjectBackend) Rebuild(context *VulkanContext, pass *VulkanGearPass) error {
	old := sb.vertexShaders
	oldFragment := sb.fragmentShader
	if err := sb.createShaders(context, pass); err != nil {
		sb.vertexShaders = old
		sb.fragmentShader = oldFragment
		return err
	}
	for _, shader := range old {
		ext.DestroyShader(unsafe.Pointer(context.Device.LogicalDevice), shader)
	}
	ext.DestroyShader(unsafe.Pointer(context.Device.LogicalDevice), oldFragment)

	ext.UpdateExecutionSetShaders(
		unsafe.Pointer(context.Device.LogicalDevice),
		sb.executionSet,
		[]ext.ExecutionSetShaderWrite{
			{Index: 0, Shader: sb.vertexShaders[0]},
			{Index: 1, Shader: sb.fragmentShader},
			{Index: 2, Shader: sb.vertexShaders[1]},
			{Index: 3, Shader: sb.vertexShaders[2]},
		})
	return nil
}

func (sb *shaderObjectBackend) Destroy(context *VulkanContext) {
	device := unsafe.Pointer(context.Device.LogicalDevice)
	if sb.executionSet != nil {
		ext.DestroyExecutionSet(device, sb.executionSet)
		sb.executionSet = nil
	}
	for i, shader := range sb.vertexShaders {
		if shader != nil {
			ext.DestroyShader(device, shader)
			sb.vertexShaders[i] = nil
		}
	}
	if sb.fragmentShader != nil {
		ext.DestroyShader(device, sb.fragmentShader)
		sb.fragmentShader = nil
	}
}
