package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMat4Identity(t *testing.T) {
	id := NewMat4Identity()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		assert.Equal(t, want, id.Data[i], "element %d", i)
	}
}

func TestNewMat4FrustumVulkan(t *testing.T) {
	h := float32(300) / float32(400)
	gl := NewMat4Frustum(-1.0, 1.0, -h, h, 5.0, 60.0)
	vk := NewMat4FrustumVulkan(-1.0, 1.0, -h, h, 5.0, 60.0)

	// x scale is untouched, y is flipped for the Vulkan viewport.
	assert.Equal(t, gl.Data[0], vk.Data[0])
	assert.Equal(t, -gl.Data[5], vk.Data[5])
	assert.Equal(t, float32(-1.0), vk.Data[11])

	// Depth range remapped from [-1, 1] to [0, 1]: the near plane must
	// land on z=0 and the far plane on z=1 after perspective divide.
	nearZ := (vk.Data[10]*-5.0 + vk.Data[14]) / 5.0
	farZ := (vk.Data[10]*-60.0 + vk.Data[14]) / 60.0
	assert.InDelta(t, 0.0, nearZ, 1e-5)
	assert.InDelta(t, 1.0, farZ, 1e-5)
}

func TestDegToRad(t *testing.T) {
	assert.InDelta(t, float64(K_PI), float64(DegToRad(180)), 1e-6)
	assert.InDelta(t, float64(K_PI/2.0), float64(DegToRad(90)), 1e-6)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 4, Clamp(10, 1, 4))
	assert.Equal(t, 1, Clamp(-3, 1, 4))
	assert.Equal(t, float32(2.5), Clamp(float32(2.5), 1.0, 4.0))
}
