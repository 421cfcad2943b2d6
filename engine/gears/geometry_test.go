package gears

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkgears/engine/math"
)

// A gear with t teeth emits 46t+10 vertices: the front/back faces and
// the inner cylinder plus four outward strips per tooth, with two
// degenerate vertices joining every strip after the first.
func expectedVertexCount(teeth int) int {
	return 46*teeth + 10
}

func TestGenerateVertexCount(t *testing.T) {
	for _, teeth := range []int{10, 20} {
		verts := Generate(1.0, 4.0, 1.0, teeth, 0.7)
		require.Zero(t, len(verts)%VertexStride)
		assert.Equal(t, expectedVertexCount(teeth), len(verts)/VertexStride)
	}
}

func TestGenerateNormalsAreUnitLength(t *testing.T) {
	verts := Generate(0.5, 2.0, 2.0, 10, 0.7)
	for i := 0; i < len(verts); i += VertexStride {
		nx, ny, nz := verts[i+3], verts[i+4], verts[i+5]
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		assert.InDelta(t, 1.0, float64(length), 1e-5, "vertex %d", i/VertexStride)
	}
}

func TestGenerateBounds(t *testing.T) {
	inner, outer, width, toothDepth := float32(1.3), float32(2.0), float32(0.5), float32(0.7)
	rMax := outer + toothDepth/2.0
	verts := Generate(inner, outer, width, 10, toothDepth)
	for i := 0; i < len(verts); i += VertexStride {
		x, y, z := verts[i], verts[i+1], verts[i+2]
		r := math.Sqrt(x*x + y*y)
		assert.LessOrEqual(t, r, rMax+1e-4)
		assert.GreaterOrEqual(t, r, inner-1e-4)
		if z < 0 {
			z = -z
		}
		assert.InDelta(t, float64(width*0.5), float64(z), 1e-5)
	}
}

func TestGenerateStripJoins(t *testing.T) {
	teeth := 10
	verts := Generate(1.0, 4.0, 1.0, teeth, 0.7)

	// the second strip starts right after the front face
	stripStart := 4*teeth + 2
	prev := verts[(stripStart-1)*VertexStride : stripStart*VertexStride]
	join0 := verts[stripStart*VertexStride : (stripStart+1)*VertexStride]
	join1 := verts[(stripStart+1)*VertexStride : (stripStart+2)*VertexStride]
	first := verts[(stripStart+2)*VertexStride : (stripStart+3)*VertexStride]

	assert.Equal(t, prev, join0, "first degenerate vertex repeats the previous strip end")
	assert.Equal(t, first, join1, "second degenerate vertex repeats the new strip start")
}

func TestBuildLayout(t *testing.T) {
	verts, descs := Build()

	assert.Equal(t, uint32(0), descs[0].FirstVertex)
	assert.Equal(t, uint32(expectedVertexCount(20)), descs[0].VertexCount)
	for i := 1; i < 3; i++ {
		assert.Equal(t, descs[i-1].FirstVertex+descs[i-1].VertexCount, descs[i].FirstVertex)
		assert.Equal(t, uint32(expectedVertexCount(10)), descs[i].VertexCount)
	}
	total := descs[2].FirstVertex + descs[2].VertexCount
	assert.Equal(t, int(total)*VertexStride, len(verts))
}
