package textmesh

import (
	"errors"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/Faultbox/textensions/pkg/math"
)

// ErrNoFace is returned when a Label is created without a font face.
var ErrNoFace = errors.New("textmesh: nil font face")

// DefaultFace returns the Go Regular font at the given size in pixels.
func DefaultFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Label lays out a string into one submesh of glyph quads backed by a glyph
// atlas. Text rows grow downwards from a first baseline at y = 0 (y up).
type Label struct {
	face       font.Face
	text       string
	color      Color32
	maxVisible int
	info       TextInfo
	atlas      *Atlas
	revision   uint64
}

var _ Text = (*Label)(nil)

// NewLabel creates a label drawing with face in the given color.
func NewLabel(face font.Face, text string, color Color32) (*Label, error) {
	if face == nil {
		return nil, ErrNoFace
	}
	return &Label{
		face:       face,
		text:       norm.NFC.String(text),
		color:      color,
		maxVisible: -1,
		atlas:      newAtlas(),
	}, nil
}

func (l *Label) Text() string { return l.text }
// SetText stores s in NFC form so a base letter and its combining marks
// share one glyph.
func (l *Label) SetText(s string) { l.text = norm.NFC.String(s) }
func (l *Label) Color() Color32 { return l.color }
func (l *Label) TextInfo() *TextInfo { return &l.info }

// SetColor changes the base color used by the next layout.
func (l *Label) SetColor(c Color32) { l.color = c }

// Atlas returns the glyph atlas referenced by the mesh UVs.
func (l *Label) Atlas() *Atlas { return l.atlas }

// Revision changes whenever the mesh was rebuilt or pushed.
func (l *Label) Revision() uint64 { return l.revision }

// LineHeight returns the distance between two baselines.
func (l *Label) LineHeight() float32 {
	return fixedToFloat(l.face.Metrics().Height)
}

func (l *Label) SetMaxVisibleCharacters(n int) {
	if n < 0 {
		n = -1
	}
	if n != l.maxVisible {
		l.maxVisible = n
		l.revision++
	}
}

func (l *Label) MaxVisibleCharacters() int { return l.maxVisible }

// IsCharacterShown reports whether the max visible count lets index render.
func (l *Label) IsCharacterShown(index int) bool {
	return l.maxVisible < 0 || index < l.maxVisible
}

func (l *Label) SetVertices(submesh int, vertices []math.Vec3) {
	if submesh < 0 || submesh >= len(l.info.MeshInfo) {
		return
	}
	copy(l.info.MeshInfo[submesh].Vertices, vertices)
}

func (l *Label) UpdateGeometry(submesh int) {
	if submesh < 0 || submesh >= len(l.info.MeshInfo) {
		return
	}
	l.revision++
}

func (l *Label) ForceMeshUpdate() {
	runes := []rune(l.text)

	// Rasterize first so the atlas has its final size before UVs are taken.
	for _, r := range runes {
		if printable(r) {
			l.atlas.glyph(l.face, r)
		}
	}

	lineHeight := l.LineHeight()
	info := TextInfo{
		CharacterCount: len(runes),
		CharacterInfo:  make([]CharacterInfo, len(runes)),
	}
	var mesh MeshInfo

	size := l.atlas.image.Rect.Size()
	invW, invH := 1/float32(size.X), 1/float32(size.Y)

	var pen fixed.Int26_6
	line := 0
	prev := rune(-1)
	for i, r := range runes {
		ci := CharacterInfo{
			Character:   r,
			Index:       i,
			VertexIndex: -1,
			Baseline:    -float32(line) * lineHeight,
			Line:        line,
		}

		if r == '\n' {
			info.CharacterInfo[i] = ci
			pen = 0
			line++
			prev = -1
			continue
		}
		if prev >= 0 {
			pen += l.face.Kern(prev, r)
		}
		prev = r

		var g atlasGlyph
		var ok bool
		if printable(r) {
			g, ok = l.atlas.glyph(l.face, r)
		} else if adv, found := l.face.GlyphAdvance(r); found {
			g, ok = atlasGlyph{advance: adv}, true
		}

		if ok && !g.bounds.Empty() {
			x := fixedToFloat(pen)
			x0 := x + float32(g.bounds.Min.X)
			x1 := x + float32(g.bounds.Max.X)
			top := ci.Baseline - float32(g.bounds.Min.Y)
			bottom := ci.Baseline - float32(g.bounds.Max.Y)

			u0 := float32(g.region.Min.X) * invW
			u1 := float32(g.region.Max.X) * invW
			v0 := float32(g.region.Min.Y) * invH
			v1 := float32(g.region.Max.Y) * invH

			ci.IsVisible = true
			ci.VertexIndex = len(mesh.Vertices)
			mesh.Vertices = append(mesh.Vertices,
				math.Vec3{X: x0, Y: bottom},
				math.Vec3{X: x0, Y: top},
				math.Vec3{X: x1, Y: top},
				math.Vec3{X: x1, Y: bottom},
			)
			mesh.UVs = append(mesh.UVs,
				math.Vec2{X: u0, Y: v1},
				math.Vec2{X: u0, Y: v0},
				math.Vec2{X: u1, Y: v0},
				math.Vec2{X: u1, Y: v1},
			)
			mesh.Colors = append(mesh.Colors, l.color, l.color, l.color, l.color)
		}
		if ok {
			pen += g.advance
		}
		info.CharacterInfo[i] = ci
	}

	info.MeshInfo = []MeshInfo{mesh}
	l.info = info
	l.revision++
}

// printable reports whether r produces a visible quad.
func printable(r rune) bool {
	return unicode.IsGraphic(r) && !unicode.IsSpace(r)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
