// Package term previews an animated text in a terminal with tcell. Every
// glyph quad is snapped to the character cell under its center.
package term

import (
	stdmath "math"

	"github.com/Faultbox/textensions/pkg/math"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

// Source is a laid-out text the preview can draw.
type Source interface {
	TextInfo() *textmesh.TextInfo
	IsCharacterShown(index int) bool
}

// Grid is the size of one terminal cell in mesh units and the number of
// rows, used to flip the y-up mesh into top-down rows.
type Grid struct {
	CellWidth  float32
	CellHeight float32
	Rows       int
}

// Cell is one character placed on the terminal.
type Cell struct {
	X, Y  int
	Rune  rune
	Color textmesh.Color32
	// Bold marks a quad grown taller than its cell.
	Bold bool
	// Dim marks a mostly transparent quad.
	Dim bool
}

// Cells maps every drawable quad of src, translated by offset, to a cell.
// Quads hidden by the max-visible count or fully transparent are skipped.
func Cells(src Source, offset math.Vec2, g Grid) []Cell {
	info := src.TextInfo()
	var out []Cell
	for _, ci := range info.CharacterInfo {
		if !src.IsCharacterShown(ci.Index) {
			continue
		}
		verts, ok := info.QuadVertices(ci)
		if !ok {
			continue
		}
		colors := info.MeshInfo[ci.MaterialReferenceIndex].Colors
		if ci.VertexIndex >= len(colors) {
			continue
		}
		col := colors[ci.VertexIndex]
		if col.A == 0 {
			continue
		}

		var center math.Vec2
		minY, maxY := verts[0].Y, verts[0].Y
		for _, v := range verts {
			center.X += v.X
			center.Y += v.Y
			minY = min(minY, v.Y)
			maxY = max(maxY, v.Y)
		}
		center = center.Scale(1.0 / textmesh.VerticesPerQuad).Add(offset)

		out = append(out, Cell{
			X:     int(stdmath.Floor(float64(center.X / g.CellWidth))),
			Y:     g.Rows - 1 - int(stdmath.Floor(float64(center.Y/g.CellHeight))),
			Rune:  ci.Character,
			Color: col,
			Bold:  maxY-minY > g.CellHeight*1.05,
			Dim:   col.A < 128,
		})
	}
	return out
}
