package reveal

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Faultbox/textensions/internal/textension"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

// ErrUnknownStrategy is returned by NewStrategy for an unregistered name.
var ErrUnknownStrategy = errors.New("unknown reveal strategy")

// Strategy names accepted by NewStrategy.
const (
	StrategyRender      = "render"
	StrategyColor       = "color"
	StrategyRandomColor = "random-color"
)

// Strategy is the hiding mechanism and reveal order of a Reveal.
type Strategy interface {
	Name() string
	// Hide puts every character into its hidden visual state.
	Hide(t *textension.Textension)
	// ShowAll undoes Hide for the whole text.
	ShowAll(t *textension.Textension)
	// Next picks a position in the unrevealed queue of the given length.
	Next(remaining int) int
	// Show makes a freshly revealed character visible.
	Show(t *textension.Textension, c *textension.Character)
}

// NewStrategy returns the strategy registered under name. seed only affects
// random-order strategies.
func NewStrategy(name string, seed uint64) (Strategy, error) {
	switch name {
	case StrategyRender:
		return Render{}, nil
	case StrategyColor:
		return Color{}, nil
	case StrategyRandomColor:
		return NewRandomColor(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Render hides text through the label's visible character limit. Reveal
// order is string order.
type Render struct{}

func (Render) Name() string { return StrategyRender }

func (Render) Hide(t *textension.Textension) {
	t.Text().SetMaxVisibleCharacters(0)
}

func (Render) ShowAll(t *textension.Textension) {
	t.Text().SetMaxVisibleCharacters(-1)
}

func (Render) Next(int) int { return 0 }

func (Render) Show(t *textension.Textension, c *textension.Character) {
	t.Text().SetMaxVisibleCharacters(c.Index() + 1)
}

// Color hides text by making every glyph quad transparent and reveals a
// character by restoring the label color on its four vertices.
type Color struct{}

func (Color) Name() string { return StrategyColor }

func (Color) Hide(t *textension.Textension) {
	colorAll(t, textmesh.Transparent)
}

func (Color) ShowAll(t *textension.Textension) {
	colorAll(t, t.CachedColor())
}

func (Color) Next(int) int { return 0 }

func (Color) Show(t *textension.Textension, c *textension.Character) {
	// Non-printing characters own no quad but still count as revealed.
	if !c.IsVisible() {
		return
	}
	if sub, ok := colorQuad(t.Info(), c.Info(), t.CachedColor()); ok {
		t.Text().UpdateGeometry(sub)
	}
}

// RandomColor is Color with the next character drawn uniformly from the
// unrevealed ones.
type RandomColor struct {
	Color
	rng *rand.Rand
}

// NewRandomColor creates a random-order color strategy. Equal seeds give
// equal reveal orders.
func NewRandomColor(seed uint64) *RandomColor {
	return &RandomColor{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (*RandomColor) Name() string { return StrategyRandomColor }

func (s *RandomColor) Next(remaining int) int {
	if remaining <= 1 {
		return 0
	}
	return s.rng.IntN(remaining)
}

// colorAll writes color to every visible quad and pushes every submesh.
func colorAll(t *textension.Textension, color textmesh.Color32) {
	info := t.Info()
	for _, c := range t.Characters() {
		if c.IsVisible() {
			colorQuad(info, c.Info(), color)
		}
	}
	for sub := range info.MeshInfo {
		t.Text().UpdateGeometry(sub)
	}
}

// colorQuad writes color to the four vertices of one glyph and returns the
// submesh it touched.
func colorQuad(info *textmesh.TextInfo, ci textmesh.CharacterInfo, color textmesh.Color32) (int, bool) {
	sub := ci.MaterialReferenceIndex
	if sub < 0 || sub >= len(info.MeshInfo) {
		return 0, false
	}
	colors := info.MeshInfo[sub].Colors
	vi := ci.VertexIndex
	if vi < 0 || vi+textmesh.VerticesPerQuad > len(colors) {
		return 0, false
	}
	for k := 0; k < textmesh.VerticesPerQuad; k++ {
		colors[vi+k] = color
	}
	return sub, true
}
