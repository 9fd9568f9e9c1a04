package textmesh

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	atlasInitialSize = 256
	atlasPadding     = 1
)

// atlasGlyph is a cached glyph: its mask placement relative to the dot and
// its pixel region inside the atlas image.
type atlasGlyph struct {
	bounds  image.Rectangle
	region  image.Rectangle
	advance fixed.Int26_6
}

// Atlas packs glyph masks into a single alpha texture using shelf rows.
type Atlas struct {
	image    *image.Alpha
	glyphs   map[rune]atlasGlyph
	cursorX  int
	cursorY  int
	rowH     int
	revision uint64
}

func newAtlas() *Atlas {
	return &Atlas{
		image:  image.NewAlpha(image.Rect(0, 0, atlasInitialSize, atlasInitialSize)),
		glyphs: make(map[rune]atlasGlyph),
	}
}

// Image returns the atlas texture.
func (a *Atlas) Image() *image.Alpha {
	return a.image
}

// Revision changes every time the atlas image changes.
func (a *Atlas) Revision() uint64 {
	return a.revision
}

// glyph returns the cached glyph for r, rasterizing it on first use.
func (a *Atlas) glyph(face font.Face, r rune) (atlasGlyph, bool) {
	if g, ok := a.glyphs[r]; ok {
		return g, true
	}

	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return atlasGlyph{}, false
	}

	g := atlasGlyph{bounds: dr, advance: advance}
	if !dr.Empty() {
		w, h := dr.Dx(), dr.Dy()
		if a.cursorX+w+atlasPadding > a.image.Rect.Dx() {
			a.cursorX = 0
			a.cursorY += a.rowH + atlasPadding
			a.rowH = 0
		}
		for a.cursorY+h+atlasPadding > a.image.Rect.Dy() || w+atlasPadding > a.image.Rect.Dx() {
			a.grow()
		}
		g.region = image.Rect(a.cursorX, a.cursorY, a.cursorX+w, a.cursorY+h)
		draw.Draw(a.image, g.region, mask, maskp, draw.Src)

		a.cursorX += w + atlasPadding
		if h > a.rowH {
			a.rowH = h
		}
		a.revision++
	}

	a.glyphs[r] = g
	return g, true
}

// grow doubles the atlas in both dimensions, keeping existing pixels.
func (a *Atlas) grow() {
	b := a.image.Rect
	img := image.NewAlpha(image.Rect(0, 0, b.Dx()*2, b.Dy()*2))
	draw.Draw(img, b, a.image, image.Point{}, draw.Src)
	a.image = img
	a.revision++
}
