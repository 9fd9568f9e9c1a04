// Package glyph draws a text mesh: the quads of a textmesh.Text sampled
// from its glyph atlas.
package glyph

import (
	"github.com/Faultbox/textensions/pkg/math"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

// FloatsPerVertex is the vertex layout: pos(3) + texcoord(2) + color(4).
const FloatsPerVertex = 9

// quadOrder splits a bottom-left, top-left, top-right, bottom-right quad into
// two triangles.
var quadOrder = [6]int{0, 1, 2, 0, 2, 3}

// Source is a laid-out text the renderer can draw.
type Source interface {
	TextInfo() *textmesh.TextInfo
	IsCharacterShown(index int) bool
	Atlas() *textmesh.Atlas
}

// AppendVertices appends two triangles per drawable quad of src, translated
// by offset. Quads hidden by the max-visible count or fully transparent are
// skipped.
func AppendVertices(dst []float32, src Source, offset math.Vec2) []float32 {
	info := src.TextInfo()
	for _, ci := range info.CharacterInfo {
		if !src.IsCharacterShown(ci.Index) {
			continue
		}
		verts, ok := info.QuadVertices(ci)
		if !ok {
			continue
		}
		mesh := &info.MeshInfo[ci.MaterialReferenceIndex]
		base := ci.VertexIndex
		if base+textmesh.VerticesPerQuad > len(mesh.UVs) || base+textmesh.VerticesPerQuad > len(mesh.Colors) {
			continue
		}
		colors := mesh.Colors[base : base+textmesh.VerticesPerQuad]
		if transparent(colors) {
			continue
		}
		uvs := mesh.UVs[base : base+textmesh.VerticesPerQuad]
		for _, k := range quadOrder {
			v, uv, c := verts[k], uvs[k], colors[k]
			dst = append(dst,
				v.X+offset.X, v.Y+offset.Y, v.Z,
				uv.X, uv.Y,
				float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255,
			)
		}
	}
	return dst
}

func transparent(colors []textmesh.Color32) bool {
	for _, c := range colors {
		if c.A != 0 {
			return false
		}
	}
	return true
}
