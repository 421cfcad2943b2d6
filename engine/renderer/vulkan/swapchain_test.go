package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestPickSurfaceFormatPrefersSRGB(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	picked := pickSurfaceFormat(formats)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, picked.Format)
}

func TestPickSurfaceFormatFallsBackToFirst(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	picked := pickSurfaceFormat(formats)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, picked.Format)
}

func TestPickPresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}

	assert.Equal(t, vk.PresentModeMailbox, pickPresentMode(modes, vk.PresentModeMailbox))
	// Immediate is not offered, so FIFO wins.
	assert.Equal(t, vk.PresentModeFifo, pickPresentMode(modes, vk.PresentModeImmediate))
}

func TestClampImageCount(t *testing.T) {
	// Raised to the surface minimum.
	assert.Equal(t, uint32(3), clampImageCount(2, 3, 8))
	// Lowered to the surface maximum.
	assert.Equal(t, uint32(4), clampImageCount(6, 2, 4))
	// maxImageCount 0 means unbounded.
	assert.Equal(t, uint32(5), clampImageCount(5, 2, 0))
	assert.Equal(t, uint32(2), clampImageCount(2, 2, 8))
}
