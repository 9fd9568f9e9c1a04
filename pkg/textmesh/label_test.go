package textmesh

import (
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/Faultbox/textensions/pkg/math"
)

// Face7x13: 6px wide glyphs advancing 7px, ascent 11, descent 2, line height 13.
func newTestLabel(t *testing.T, text string) *Label {
	t.Helper()
	l, err := NewLabel(basicfont.Face7x13, text, White)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}
	l.ForceMeshUpdate()
	return l
}

func TestNewLabelNilFace(t *testing.T) {
	if _, err := NewLabel(nil, "x", White); err != ErrNoFace {
		t.Errorf("expected ErrNoFace, got %v", err)
	}
}

func TestLayoutVisibleCharacters(t *testing.T) {
	l := newTestLabel(t, "Hi!")
	info := l.TextInfo()

	if info.CharacterCount != 3 {
		t.Fatalf("CharacterCount = %d, want 3", info.CharacterCount)
	}
	if len(info.MeshInfo) != 1 {
		t.Fatalf("expected one submesh, got %d", len(info.MeshInfo))
	}
	if got := len(info.MeshInfo[0].Vertices); got != 12 {
		t.Errorf("vertex count = %d, want 12", got)
	}
	for i, ci := range info.CharacterInfo {
		if !ci.IsVisible {
			t.Errorf("character %d (%q) should be visible", i, ci.Character)
		}
		if ci.VertexIndex != i*VerticesPerQuad {
			t.Errorf("character %d VertexIndex = %d, want %d", i, ci.VertexIndex, i*VerticesPerQuad)
		}
		if ci.Index != i {
			t.Errorf("character %d Index = %d", i, ci.Index)
		}
	}
}

func TestLayoutQuadGeometry(t *testing.T) {
	l := newTestLabel(t, "ab")
	v := l.TextInfo().MeshInfo[0].Vertices

	want := []math.Vec3{
		{X: 0, Y: -2}, {X: 0, Y: 11}, {X: 6, Y: 11}, {X: 6, Y: -2},
		{X: 7, Y: -2}, {X: 7, Y: 11}, {X: 13, Y: 11}, {X: 13, Y: -2},
	}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v[i], want[i])
		}
	}
}

func TestLayoutWhitespaceHasNoQuad(t *testing.T) {
	l := newTestLabel(t, "a b")
	info := l.TextInfo()

	space := info.CharacterInfo[1]
	if space.IsVisible {
		t.Error("space should not be visible")
	}
	if space.VertexIndex != -1 {
		t.Errorf("space VertexIndex = %d, want -1", space.VertexIndex)
	}
	if got := len(info.MeshInfo[0].Vertices); got != 8 {
		t.Errorf("vertex count = %d, want 8", got)
	}
	// The space still advances the pen.
	b := info.MeshInfo[0].Vertices[info.CharacterInfo[2].VertexIndex]
	if b.X != 14 {
		t.Errorf("'b' starts at x=%v, want 14", b.X)
	}
}

func TestLayoutNewline(t *testing.T) {
	l := newTestLabel(t, "a\nb")
	info := l.TextInfo()

	if info.CharacterInfo[1].IsVisible {
		t.Error("newline should not be visible")
	}
	b := info.CharacterInfo[2]
	if b.Line != 1 {
		t.Errorf("'b' line = %d, want 1", b.Line)
	}
	if b.Baseline != -13 {
		t.Errorf("'b' baseline = %v, want -13", b.Baseline)
	}
	if x := info.MeshInfo[0].Vertices[b.VertexIndex].X; x != 0 {
		t.Errorf("'b' should start the row at x=0, got %v", x)
	}
}

func TestForceMeshUpdateResetsColors(t *testing.T) {
	l := newTestLabel(t, "ab")
	colors := l.TextInfo().MeshInfo[0].Colors
	for i := range colors {
		colors[i] = Transparent
	}
	l.ForceMeshUpdate()

	for i, c := range l.TextInfo().MeshInfo[0].Colors {
		if c != White {
			t.Fatalf("color %d = %v after relayout, want white", i, c)
		}
	}
}

func TestSetVerticesAndRevision(t *testing.T) {
	l := newTestLabel(t, "a")
	rev := l.Revision()

	moved := []math.Vec3{{X: 1}, {X: 2}, {X: 3}, {X: 4}}
	l.SetVertices(0, moved)
	l.UpdateGeometry(0)

	if l.Revision() == rev {
		t.Error("UpdateGeometry should bump the revision")
	}
	if got := l.TextInfo().MeshInfo[0].Vertices[2]; got != moved[2] {
		t.Errorf("vertex 2 = %v, want %v", got, moved[2])
	}

	// Out of range submeshes are ignored.
	l.SetVertices(3, moved)
	l.UpdateGeometry(-1)
}

func TestMaxVisibleCharacters(t *testing.T) {
	l := newTestLabel(t, "abc")
	if l.MaxVisibleCharacters() != -1 {
		t.Errorf("default max visible = %d, want -1", l.MaxVisibleCharacters())
	}
	l.SetMaxVisibleCharacters(2)
	if !l.IsCharacterShown(1) || l.IsCharacterShown(2) {
		t.Error("max visible 2 should show indices 0 and 1 only")
	}
	l.SetMaxVisibleCharacters(-5)
	if !l.IsCharacterShown(100) {
		t.Error("negative max visible should be unlimited")
	}
}

func TestCopyMeshInfoVertexDataIsDeep(t *testing.T) {
	l := newTestLabel(t, "a")
	cp := l.TextInfo().CopyMeshInfoVertexData()
	cp[0].Vertices[0] = math.Vec3{X: 99}

	if l.TextInfo().MeshInfo[0].Vertices[0].X == 99 {
		t.Error("copy should not alias the live mesh")
	}
}

func TestAtlasCachesGlyphs(t *testing.T) {
	l := newTestLabel(t, "aaa")
	rev := l.Atlas().Revision()
	l.SetText("aa")
	l.ForceMeshUpdate()

	if l.Atlas().Revision() != rev {
		t.Error("re-laying out cached glyphs should not touch the atlas")
	}
	if len(l.Atlas().glyphs) != 1 {
		t.Errorf("expected 1 cached glyph, got %d", len(l.Atlas().glyphs))
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    Color32
		wantErr bool
	}{
		{"#FFFFFF", White, false},
		{"#11223344", Color32{0x11, 0x22, 0x33, 0x44}, false},
		{"00ff00", Color32{0, 255, 0, 255}, false},
		{"#123", Color32{}, true},
		{"#GGGGGG", Color32{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if s := (Color32{0x11, 0x22, 0x33, 0x44}).Hex(); s != "#11223344" {
		t.Errorf("Hex() = %s", s)
	}
}

func TestDefaultFace(t *testing.T) {
	face, err := DefaultFace(24)
	if err != nil {
		t.Fatalf("DefaultFace: %v", err)
	}
	l, err := NewLabel(face, "Go", White)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}
	l.ForceMeshUpdate()
	if got := len(l.TextInfo().MeshInfo[0].Vertices); got != 8 {
		t.Errorf("vertex count = %d, want 8", got)
	}
}

func TestSetTextComposesCombiningMarks(t *testing.T) {
	l := newTestLabel(t, "e\u0301")
	if l.Text() != "\u00e9" {
		t.Errorf("NewLabel text = %q, want precomposed \u00e9", l.Text())
	}

	l.SetText("cafe\u0301")
	l.ForceMeshUpdate()
	if got := l.TextInfo().CharacterCount; got != 4 {
		t.Errorf("CharacterCount = %d, want 4", got)
	}
}
