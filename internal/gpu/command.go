package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/plot/batch"
	"github.com/gogpu/plot/text"
)

// DrawKind selects the pipeline a DrawCommand renders with.
type DrawKind uint8

const (
	// DrawLines renders a line list, two vertices per segment.
	DrawLines DrawKind = iota
	// DrawTriangles renders a triangle list.
	DrawTriangles
	// DrawMarkers renders quad-expanded round markers.
	DrawMarkers
	// DrawGlyphs renders indexed glyph quads sampled from the atlas.
	DrawGlyphs
)

// DrawCommand is one drawable's contribution to a frame: finalized
// clip-space geometry plus the per-kind size parameter. Each command
// becomes exactly one draw call regardless of how many subplots
// contributed to the geometry.
type DrawCommand struct {
	Kind DrawKind

	// Geometry holds the concatenated positions, colors, and (for
	// markers and glyphs) the quad channel. The slices are borrowed
	// from the drawable until the frame is submitted.
	Geometry *batch.Geometry

	// Param is the kind-specific size uniform: marker height fraction
	// for DrawMarkers, pixels per em for DrawGlyphs, unused otherwise.
	Param float32

	// Atlas is the glyph atlas to sample from; nil except DrawGlyphs.
	Atlas *text.Atlas
}

// Empty reports whether the command carries no vertices.
func (c *DrawCommand) Empty() bool {
	return c.Geometry == nil || c.Geometry.Empty()
}

// flatVertexStride is the byte stride per vertex in the flat pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	color    (vec4<f32>) = 16 bytes (location 1)
//
// Total = 24 bytes per vertex.
const flatVertexStride = 24

// quadVertexStride is the byte stride per vertex in the marker and
// text pipelines. Layout per vertex:
//
//	anchor (vec2<f32>) = 8 bytes  (location 0)
//	color  (vec4<f32>) = 16 bytes (location 1)
//	quad   (vec4<f32>) = 16 bytes (location 2)
//
// Total = 40 bytes per vertex.
const quadVertexStride = 40

// uniformSize is the byte size of the shared uniform buffer.
// Layout: viewport (vec2<f32>) + size param (f32) + padding (f32).
const uniformSize = 16

// packFlatVertices serializes positions and colors into the flat
// vertex layout, reusing staging when it is large enough.
func packFlatVertices(g *batch.Geometry, staging []byte) ([]byte, []byte) {
	n := g.VertexCount()
	needed := n * flatVertexStride
	if cap(staging) < needed {
		staging = make([]byte, needed)
	} else {
		staging = staging[:needed]
	}
	offset := 0
	for i := 0; i < n; i++ {
		putFloat32(staging[offset:], g.Positions[i*2])
		putFloat32(staging[offset+4:], g.Positions[i*2+1])
		putFloat32(staging[offset+8:], g.Colors[i*4])
		putFloat32(staging[offset+12:], g.Colors[i*4+1])
		putFloat32(staging[offset+16:], g.Colors[i*4+2])
		putFloat32(staging[offset+20:], g.Colors[i*4+3])
		offset += flatVertexStride
	}
	return staging, staging[:offset]
}

// packQuadVertices serializes positions, colors, and the quad channel
// into the marker/text vertex layout.
func packQuadVertices(g *batch.Geometry, staging []byte) ([]byte, []byte) {
	n := g.VertexCount()
	needed := n * quadVertexStride
	if cap(staging) < needed {
		staging = make([]byte, needed)
	} else {
		staging = staging[:needed]
	}
	offset := 0
	for i := 0; i < n; i++ {
		putFloat32(staging[offset:], g.Positions[i*2])
		putFloat32(staging[offset+4:], g.Positions[i*2+1])
		putFloat32(staging[offset+8:], g.Colors[i*4])
		putFloat32(staging[offset+12:], g.Colors[i*4+1])
		putFloat32(staging[offset+16:], g.Colors[i*4+2])
		putFloat32(staging[offset+20:], g.Colors[i*4+3])
		putFloat32(staging[offset+24:], g.Quads[i*4])
		putFloat32(staging[offset+28:], g.Quads[i*4+1])
		putFloat32(staging[offset+32:], g.Quads[i*4+2])
		putFloat32(staging[offset+36:], g.Quads[i*4+3])
		offset += quadVertexStride
	}
	return staging, staging[:offset]
}

// glyphIndices builds the index list for glyph quads: four vertices per
// glyph expand to two triangles (0,1,2, 2,3,0).
func glyphIndices(vertexCount int) []byte {
	quads := vertexCount / 4
	buf := make([]byte, quads*6*4)
	offset := 0
	for q := 0; q < quads; q++ {
		base := uint32(q * 4)
		for _, i := range [6]uint32{0, 1, 2, 2, 3, 0} {
			binary.LittleEndian.PutUint32(buf[offset:], base+i)
			offset += 4
		}
	}
	return buf
}

// makeUniform creates the 16-byte uniform buffer.
// Layout: viewport (vec2<f32>) + size param (f32) + padding.
func makeUniform(w, h uint32, param float32) []byte {
	buf := make([]byte, uniformSize)
	putFloat32(buf[0:], float32(w))
	putFloat32(buf[4:], float32(h))
	putFloat32(buf[8:], param)
	// Padding bytes 12..15 remain zero.
	return buf
}

func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}
