package ext

/*
#include <stdlib.h>
#include "ext.h"
*/
import "C"

import (
	"unsafe"
)

// RenderingTarget names the attachments of one dynamic rendering pass.
// ResolveView is only consulted when Samples is greater than one, in
// which case ColorView is the multisampled image and ResolveView the
// swapchain image receiving the averaged result.
type RenderingTarget struct {
	Width       uint32
	Height      uint32
	Samples     uint32
	ColorView   unsafe.Pointer
	ResolveView unsafe.Pointer
	DepthView   unsafe.Pointer
}

// CmdBeginRendering starts a dynamic rendering pass that clears the
// color attachment to opaque black and depth to 1.0.
func CmdBeginRendering(cmd unsafe.Pointer, t *RenderingTarget) {
	var a carena
	defer a.release()

	msaa := t.Samples > 1

	color := (*C.VkRenderingAttachmentInfo)(a.alloc(C.sizeof_VkRenderingAttachmentInfo))
	color.sType = C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO
	color.imageView = C.VkImageView(t.ColorView)
	color.imageLayout = C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
	color.loadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
	color.storeOp = C.VK_ATTACHMENT_STORE_OP_STORE
	if msaa {
		color.resolveMode = C.VK_RESOLVE_MODE_AVERAGE_BIT
		color.resolveImageView = C.VkImageView(t.ResolveView)
		color.resolveImageLayout = C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
		color.storeOp = C.VK_ATTACHMENT_STORE_OP_DONT_CARE
	}
	clearColor := (*[4]C.float)(unsafe.Pointer(&color.clearValue))
	clearColor[0], clearColor[1], clearColor[2], clearColor[3] = 0, 0, 0, 1

	depth := (*C.VkRenderingAttachmentInfo)(a.alloc(C.sizeof_VkRenderingAttachmentInfo))
	depth.sType = C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO
	depth.imageView = C.VkImageView(t.DepthView)
	depth.imageLayout = C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL
	depth.loadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
	depth.storeOp = C.VK_ATTACHMENT_STORE_OP_DONT_CARE
	clearDepth := (*C.VkClearDepthStencilValue)(unsafe.Pointer(&depth.clearValue))
	clearDepth.depth = 1.0

	var info C.VkRenderingInfo
	info.sType = C.VK_STRUCTURE_TYPE_RENDERING_INFO
	info.renderArea.extent.width = C.uint32_t(t.Width)
	info.renderArea.extent.height = C.uint32_t(t.Height)
	info.layerCount = 1
	info.colorAttachmentCount = 1
	info.pColorAttachments = color
	info.pDepthAttachment = depth

	C.vkx_CmdBeginRendering(C.VkCommandBuffer(cmd), &info)
}

func CmdEndRendering(cmd unsafe.Pointer) {
	C.vkx_CmdEndRendering(C.VkCommandBuffer(cmd))
}

// PipelineChain is the pNext chain attached to the graphics pipeline
// create info: indirect-bindable creation flags plus the dynamic
// rendering attachment formats. It lives in C memory because the
// bindings stash the pointer until pipeline creation runs.
type PipelineChain struct {
	arena carena
	head  unsafe.Pointer
}

// NewPipelineChain builds the chain for pipelines rendering to the
// given color and depth formats.
func NewPipelineChain(colorFormat, depthFormat int32) *PipelineChain {
	c := &PipelineChain{}

	formats := (*C.VkFormat)(c.arena.alloc(C.sizeof_VkFormat))
	*formats = C.VkFormat(colorFormat)

	rendering := (*C.VkPipelineRenderingCreateInfo)(c.arena.alloc(C.sizeof_VkPipelineRenderingCreateInfo))
	rendering.sType = C.VK_STRUCTURE_TYPE_PIPELINE_RENDERING_CREATE_INFO
	rendering.colorAttachmentCount = 1
	rendering.pColorAttachmentFormats = formats
	rendering.depthAttachmentFormat = C.VkFormat(depthFormat)

	flags2 := (*C.VkPipelineCreateFlags2CreateInfoKHR)(c.arena.alloc(C.sizeof_VkPipelineCreateFlags2CreateInfoKHR))
	flags2.sType = C.VK_STRUCTURE_TYPE_PIPELINE_CREATE_FLAGS_2_CREATE_INFO_KHR
	flags2.pNext = unsafe.Pointer(rendering)
	flags2.flags = C.VK_PIPELINE_CREATE_2_INDIRECT_BINDABLE_BIT_EXT

	c.head = unsafe.Pointer(flags2)
	return c
}

func (c *PipelineChain) Head() unsafe.Pointer {
	return c.head
}

func (c *PipelineChain) Free() {
	c.arena.release()
	c.head = nil
}
