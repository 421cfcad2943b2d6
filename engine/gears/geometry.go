package gears

import (
	"github.com/spaghettifunk/vkgears/engine/math"
)

// VertexStride is the number of float32 components per vertex:
// position xyz followed by the face normal xyz.
const VertexStride = 6

// Descriptor locates one gear inside the shared vertex buffer.
type Descriptor struct {
	FirstVertex uint32
	VertexCount uint32
}

// builder accumulates triangle-strip vertices. Strips after the first
// are joined to the previous one with two degenerate vertices so the
// whole gear renders as a single vkCmdDraw.
type builder struct {
	verts      []float32
	normal     [3]float32
	stripStart int
}

func (b *builder) setNormal(x, y, z float32) {
	b.normal = [3]float32{x, y, z}
}

func (b *builder) emit(x, y, z float32) {
	b.verts = append(b.verts, x, y, z, b.normal[0], b.normal[1], b.normal[2])
}

func (b *builder) numVerts() int {
	return len(b.verts) / VertexStride
}

func (b *builder) startStrip() {
	b.stripStart = b.numVerts()
	if b.stripStart != 0 {
		// reserve two slots for the degenerate join, filled in endStrip
		b.verts = append(b.verts, make([]float32, 2*VertexStride)...)
	}
}

func (b *builder) endStrip() {
	if b.stripStart == 0 {
		return
	}
	s := b.stripStart * VertexStride
	// repeat the last vertex of the previous strip and the first real
	// vertex of this one
	copy(b.verts[s:s+VertexStride], b.verts[s-VertexStride:s])
	copy(b.verts[s+VertexStride:s+2*VertexStride], b.verts[s+2*VertexStride:s+3*VertexStride])
}

// Generate tessellates one gear as a single triangle strip and returns
// the interleaved position/normal vertex data.
func Generate(innerRadius, outerRadius, width float32, teeth int, toothDepth float32) []float32 {
	b := &builder{}

	r0 := innerRadius
	r1 := outerRadius - toothDepth/2.0
	r2 := outerRadius + toothDepth/2.0

	da := 2.0 * math.K_PI / float32(teeth) / 4.0

	b.setNormal(0.0, 0.0, 1.0)

	// front face
	b.startStrip()
	for i := 0; i <= teeth; i++ {
		angle := float32(i) * 2.0 * math.K_PI / float32(teeth)
		b.emit(r0*math.Cos(angle), r0*math.Sin(angle), width*0.5)
		b.emit(r1*math.Cos(angle), r1*math.Sin(angle), width*0.5)
		if i < teeth {
			b.emit(r0*math.Cos(angle), r0*math.Sin(angle), width*0.5)
			b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), width*0.5)
		}
	}
	b.endStrip()

	// front sides of teeth
	for i := 0; i < teeth; i++ {
		angle := float32(i) * 2.0 * math.K_PI / float32(teeth)
		b.startStrip()
		b.emit(r1*math.Cos(angle), r1*math.Sin(angle), width*0.5)
		b.emit(r2*math.Cos(angle+da), r2*math.Sin(angle+da), width*0.5)
		b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), width*0.5)
		b.emit(r2*math.Cos(angle+2*da), r2*math.Sin(angle+2*da), width*0.5)
		b.endStrip()
	}

	b.setNormal(0.0, 0.0, -1.0)

	// back face
	b.startStrip()
	for i := 0; i <= teeth; i++ {
		angle := float32(i) * 2.0 * math.K_PI / float32(teeth)
		b.emit(r1*math.Cos(angle), r1*math.Sin(angle), -width*0.5)
		b.emit(r0*math.Cos(angle), r0*math.Sin(angle), -width*0.5)
		if i < teeth {
			b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), -width*0.5)
			b.emit(r0*math.Cos(angle), r0*math.Sin(angle), -width*0.5)
		}
	}
	b.endStrip()

	// back sides of teeth
	for i := 0; i < teeth; i++ {
		angle := float32(i) * 2.0 * math.K_PI / float32(teeth)
		b.startStrip()
		b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), -width*0.5)
		b.emit(r2*math.Cos(angle+2*da), r2*math.Sin(angle+2*da), -width*0.5)
		b.emit(r1*math.Cos(angle), r1*math.Sin(angle), -width*0.5)
		b.emit(r2*math.Cos(angle+da), r2*math.Sin(angle+da), -width*0.5)
		b.endStrip()
	}

	// outward faces of teeth
	for i := 0; i < teeth; i++ {
		angle := float32(i) * 2.0 * math.K_PI / float32(teeth)

		u := r2*math.Cos(angle+da) - r1*math.Cos(angle)
		v := r2*math.Sin(angle+da) - r1*math.Sin(angle)
		length := math.Sqrt(u*u + v*v)
		u /= length
		v /= length
		b.setNormal(v, -u, 0.0)
		b.startStrip()
		b.emit(r1*math.Cos(angle), r1*math.Sin(angle), width*0.5)
		b.emit(r1*math.Cos(angle), r1*math.Sin(angle), -width*0.5)
		b.emit(r2*math.Cos(angle+da), r2*math.Sin(angle+da), width*0.5)
		b.emit(r2*math.Cos(angle+da), r2*math.Sin(angle+da), -width*0.5)
		b.endStrip()

		b.setNormal(math.Cos(angle), math.Sin(angle), 0.0)
		b.startStrip()
		b.emit(r2*math.Cos(angle+da), r2*math.Sin(angle+da), width*0.5)
		b.emit(r2*math.Cos(angle+da), r2*math.Sin(angle+da), -width*0.5)
		b.emit(r2*math.Cos(angle+2*da), r2*math.Sin(angle+2*da), width*0.5)
		b.emit(r2*math.Cos(angle+2*da), r2*math.Sin(angle+2*da), -width*0.5)
		b.endStrip()

		u = r1*math.Cos(angle+3*da) - r2*math.Cos(angle+2*da)
		v = r1*math.Sin(angle+3*da) - r2*math.Sin(angle+2*da)
		b.setNormal(v, -u, 0.0)
		b.startStrip()
		b.emit(r2*math.Cos(angle+2*da), r2*math.Sin(angle+2*da), width*0.5)
		b.emit(r2*math.Cos(angle+2*da), r2*math.Sin(angle+2*da), -width*0.5)
		b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), width*0.5)
		b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), -width*0.5)
		b.endStrip()

		b.setNormal(math.Cos(angle), math.Sin(angle), 0.0)
		b.startStrip()
		b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), width*0.5)
		b.emit(r1*math.Cos(angle+3*da), r1*math.Sin(angle+3*da), -width*0.5)
		b.emit(r1*math.Cos(angle+4*da), r1*math.Sin(angle+4*da), width*0.5)
		b.emit(r1*math.Cos(angle+4*da), r1*math.Sin(angle+4*da), -width*0.5)
		b.endStrip()
	}

	// inside radius cylinder
	b.startStrip()
	for i := 0; i <= teeth; i++ {
		angle := float32(i) * 2.0 * math.K_PI / float32(teeth)
		b.setNormal(-math.Cos(angle), -math.Sin(angle), 0.0)
		b.emit(r0*math.Cos(angle), r0*math.Sin(angle), -width*0.5)
		b.emit(r0*math.Cos(angle), r0*math.Sin(angle), width*0.5)
	}
	b.endStrip()

	return b.verts
}

// Build tessellates the three gears of the scene into a single shared
// vertex buffer and returns per-gear draw ranges.
func Build() ([]float32, [3]Descriptor) {
	var verts []float32
	var descs [3]Descriptor

	params := [3]struct {
		inner, outer, width float32
		teeth               int
		toothDepth          float32
	}{
		{1.0, 4.0, 1.0, 20, 0.7},
		{0.5, 2.0, 2.0, 10, 0.7},
		{1.3, 2.0, 0.5, 10, 0.7},
	}

	for i, p := range params {
		g := Generate(p.inner, p.outer, p.width, p.teeth, p.toothDepth)
		descs[i].FirstVertex = uint32(len(verts) / VertexStride)
		descs[i].VertexCount = uint32(len(g) / VertexStride)
		verts = append(verts, g...)
	}

	return verts, descs
}
