// Package textmesh defines the contract between the animation pipeline and a
// text-layout library: per-glyph metadata plus a flat quad-per-glyph vertex
// buffer that can be read, rewritten and pushed back for rendering.
//
// Label is the bundled implementation, laid out with golang.org/x/image/font.
package textmesh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/textensions/pkg/math"
)

// VerticesPerQuad is the number of vertices each visible glyph owns, in the
// order bottom-left, top-left, top-right, bottom-right.
const VerticesPerQuad = 4

// Color32 is an 8-bit RGBA vertex color.
type Color32 struct {
	R, G, B, A uint8
}

// Transparent is fully transparent black.
var Transparent = Color32{}

// White is opaque white.
var White = Color32{255, 255, 255, 255}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA".
func ParseHex(s string) (Color32, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color32{}, fmt.Errorf("color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color32{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color32{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats the color as "#RRGGBBAA".
func (c Color32) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// CharacterInfo is the layout metadata of one character of the string.
type CharacterInfo struct {
	Character rune
	// Index is the character's position in the string.
	Index int
	// IsVisible is false for non-printing characters, which own no quad.
	IsVisible bool
	// MaterialReferenceIndex selects the submesh holding the quad.
	MaterialReferenceIndex int
	// VertexIndex is the first of the quad's four vertices, -1 when invisible.
	VertexIndex int
	// Baseline is the y coordinate of the character's text row.
	Baseline float32
	Line     int
}

// MeshInfo is one submesh: parallel per-vertex arrays.
type MeshInfo struct {
	Vertices []math.Vec3
	UVs      []math.Vec2
	Colors   []Color32
}

// TextInfo is the layout result of a whole string.
type TextInfo struct {
	CharacterCount int
	CharacterInfo  []CharacterInfo
	MeshInfo       []MeshInfo
}

// CopyMeshInfoVertexData returns a deep copy of every submesh's vertex
// positions. UVs and colors are not copied.
func (ti *TextInfo) CopyMeshInfoVertexData() []MeshInfo {
	out := make([]MeshInfo, len(ti.MeshInfo))
	for i, m := range ti.MeshInfo {
		out[i].Vertices = append([]math.Vec3(nil), m.Vertices...)
	}
	return out
}

// Text is a text label whose glyph mesh can be manipulated.
type Text interface {
	// Text returns the displayed string.
	Text() string
	// SetText replaces the string. Layout is deferred to ForceMeshUpdate.
	SetText(s string)
	// Color is the label's base vertex color.
	Color() Color32

	// ForceMeshUpdate lays out the current string synchronously, resetting
	// every vertex position and color.
	ForceMeshUpdate()
	// TextInfo returns the live layout. Callers may write Colors in place.
	TextInfo() *TextInfo

	// SetMaxVisibleCharacters limits rendering to characters with
	// Index < n. Negative means unlimited.
	SetMaxVisibleCharacters(n int)
	MaxVisibleCharacters() int

	// SetVertices replaces a submesh's vertex positions.
	SetVertices(submesh int, vertices []math.Vec3)
	// UpdateGeometry pushes a submesh's vertices and colors to the renderer.
	UpdateGeometry(submesh int)
}
