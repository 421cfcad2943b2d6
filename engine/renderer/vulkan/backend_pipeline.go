package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkgears/engine/core"
	"github.com/spaghettifunk/vkgears/engine/gears"
	"github.com/spaghettifunk/vkgears/engine/renderer/vulkan/ext"
)

// pipelineBackend renders the gears through three monolithic
// indirect-bindable pipelines, one per color.
type pipelineBackend struct {
	pipelines    [GearCount]vk.Pipeline
	executionSet ext.IndirectExecutionSet
}

func (pb *pipelineBackend) Initialize(context *VulkanContext, pass *VulkanGearPass) error {
	if err := pb.createPipelines(context, pass); err != nil {
		return err
	}

	executionSet, err := ext.CreateExecutionSetPipelines(
		unsafe.Pointer(context.Device.LogicalDevice),
		unsafe.Pointer(pb.pipelines[0]),
		GearCount)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	pb.executionSet = executionSet

	// Slot 0 holds the initial pipeline already.
	ext.UpdateExecutionSetPipelines(
		unsafe.Pointer(context.Device.LogicalDevice),
		pb.executionSet,
		[]ext.ExecutionSetPipelineWrite{
			{Index: 1, Pipeline: unsafe.Pointer(pb.pipelines[1])},
			{Index: 2, Pipeline: unsafe.Pointer(pb.pipelines[2])},
		})
	return nil
}

func (pb *pipelineBackend) createPipelines(context *VulkanContext, pass *VulkanGearPass) error {
	fragmentModule, err := createShaderModule(context, pass.Shaders.Fragment)
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(context.Device.LogicalDevice, fragmentModule, context.Allocator)

	for i := 0; i < GearCount; i++ {
		vertexModule, err := createShaderModule(context, pass.Shaders.Vertex[i])
		if err != nil {
			return err
		}
		pipeline, err := createGearPipeline(context, pass.PipelineLayout, vertexModule, fragmentModule)
		vk.DestroyShaderModule(context.Device.LogicalDevice, vertexModule, context.Allocator)
		if err != nil {
			return err
		}
		pb.pipelines[i] = pipeline
	}
	return nil
}

func (pb *pipelineBackend) VariantSlots() [GearCount]uint32 {
	return pipelineVariantSlots()
}

func (pb *pipelineBackend) ExecutionSet() ext.IndirectExecutionSet {
	return pb.executionSet
}

func (pb *pipelineBackend) Bind(context *VulkanContext, commandBuffer vk.CommandBuffer) {
	vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, pb.pipelines[0])

	vk.CmdSetViewport(commandBuffer, 0, 1, []vk.Viewport{
		{
			X:        0,
			Y:        0,
			Width:    float32(context.FramebufferWidth),
			Height:   float32(context.FramebufferHeight),
			MinDepth: 0,
			MaxDepth: 1,
		},
	})
	vk.CmdSetScissor(commandBuffer, 0, 1, []vk.Rect2D{
		{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: context.FramebufferWidth, Height: context.FramebufferHeight},
		},
	})
}

func (pb *pipelineBackend) DrawDirect(context *VulkanContext, commandBuffer vk.CommandBuffer, descriptors [GearCount]gears.Descriptor) {
	for i := 0; i < GearCount; i++ {
		vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, pb.pipelines[i])
		vk.CmdDraw(commandBuffer, descriptors[i].VertexCount, 1, descriptors[i].FirstVertex, 0)
	}
}

func (pb *pipelineBackend) Rebuild(context *VulkanContext, pass *VulkanGearPass) error {
	old := pb.pipelines
	if err := pb.createPipelines(context, pass); err != nil {
		pb.pipelines = old
		return err
	}
	for _, pipeline := range old {
		vk.DestroyPipeline(context.Device.LogicalDevice, pipeline, context.Allocator)
	}

	ext.UpdateExecutionSetPipelines(
		unsafe.Pointer(context.Device.LogicalDevice),
		pb.executionSet,
		[]ext.ExecutionSetPipelineWrite{
			{Index: 0, Pipeline: unsafe.Pointer(pb.pipelines[0])},
			{Index: 1, Pipeline: unsafe.Pointer(pb.pipelines[1])},
			{Index: 2, Pipeline: unsafe.Pointer(pb.pipelines[2])},
		})
	return nil
}

func (pb *pipelineBackend) Destroy(context *VulkanContext) {
	if pb.executionSet != nil {
		ext.DestroyExecutionSet(unsafe.Pointer(context.Device.LogicalDevice), pb.executionSet)
		pb.executionSet = nil
	}
	for i, pipeline := range pb.pipelines {
		if pipeline != vk.NullPipeline {
			vk.DestroyPipeline(context.Device.LogicalDevice, pipeline, context.Allocator)
			pb.pipelines[i] = vk.NullPipeline
		}
	}
}

func createShaderModule(context *VulkanContext, code []byte) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    spirvWords(code),
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); res != vk.Success {
		err := fmt.Errorf("vkCreateShaderModule failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}
	return module, nil
}

func createGearPipeline(context *VulkanContext, layout vk.PipelineLayout, vertexModule, fragmentModule vk.ShaderModule) (vk.Pipeline, error) {
	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertexModule,
			PName:  VulkanSafeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragmentModule,
			PName:  VulkanSafeString("main"),
		},
	}

	// Positions and normals come from the same buffer bound twice
	// with different offsets.
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount: 2,
		PVertexBindingDescriptions: []vk.VertexInputBindingDescription{
			{Binding: 0, Stride: gears.VertexStride * 4, InputRate: vk.VertexInputRateVertex},
			{Binding: 1, Stride: gears.VertexStride * 4, InputRate: vk.VertexInputRateVertex},
		},
		VertexAttributeDescriptionCount: 2,
		PVertexAttributeDescriptions: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Location: 1, Binding: 1, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		},
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleStrip,
		PrimitiveRestartEnable: vk.False,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizationState := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceCounterClockwise,
		LineWidth:               1.0,
	}

	multisampleState := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: context.Device.SampleCount,
	}

	depthStencilState := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.True,
		DepthWriteEnable: vk.True,
		DepthCompareOp:   vk.CompareOpLessOrEqual,
	}

	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{
			{
				ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
					vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
			},
		},
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	// Dynamic rendering plus the indirect-bindable flag ride on the
	// pNext chain.
	chain := ext.NewPipelineChain(
		int32(context.Swapchain.ImageFormat.Format),
		int32(context.Device.DepthFormat))
	defer chain.Free()

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               chain.Head(),
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizationState,
		PMultisampleState:   &multisampleState,
		PDepthStencilState:  &depthStencilState,
		PColorBlendState:    &colorBlendState,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              layout,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   0,
	}

	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(
		context.Device.LogicalDevice,
		vk.NullPipelineCache,
		1,
		[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
		context.Allocator,
		pipelines); res != vk.Success {
		err := fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return vk.NullPipeline, err
	}
	return pipelines[0], nil
}
