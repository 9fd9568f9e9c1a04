package textmesh

import "github.com/Faultbox/textensions/pkg/math"

// Bounds is an axis-aligned rectangle in mesh space.
type Bounds struct {
	Min, Max math.Vec2
}

func (b Bounds) Width() float32  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float32 { return b.Max.Y - b.Min.Y }

// CenterIn returns the translation that centers b in a width x height
// viewport whose origin is the bottom-left corner.
func (b Bounds) CenterIn(width, height float32) math.Vec2 {
	return math.Vec2{
		X: (width-b.Width())/2 - b.Min.X,
		Y: (height-b.Height())/2 - b.Min.Y,
	}
}

// QuadVertices returns the four vertices owned by ci, or false when the
// character has no quad in the current mesh.
func (ti *TextInfo) QuadVertices(ci CharacterInfo) ([]math.Vec3, bool) {
	if !ci.IsVisible || ci.VertexIndex < 0 {
		return nil, false
	}
	if ci.MaterialReferenceIndex < 0 || ci.MaterialReferenceIndex >= len(ti.MeshInfo) {
		return nil, false
	}
	verts := ti.MeshInfo[ci.MaterialReferenceIndex].Vertices
	end := ci.VertexIndex + VerticesPerQuad
	if end > len(verts) {
		return nil, false
	}
	return verts[ci.VertexIndex:end], true
}

// Bounds returns the bounds of every quad in the mesh. ok is false when no
// character owns a quad.
func (ti *TextInfo) Bounds() (b Bounds, ok bool) {
	for _, ci := range ti.CharacterInfo {
		verts, valid := ti.QuadVertices(ci)
		if !valid {
			continue
		}
		for _, v := range verts {
			if !ok {
				b = Bounds{Min: math.Vec2{X: v.X, Y: v.Y}, Max: math.Vec2{X: v.X, Y: v.Y}}
				ok = true
				continue
			}
			b.Min.X = min(b.Min.X, v.X)
			b.Min.Y = min(b.Min.Y, v.Y)
			b.Max.X = max(b.Max.X, v.X)
			b.Max.Y = max(b.Max.Y, v.Y)
		}
	}
	return b, ok
}
