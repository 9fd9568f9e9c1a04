// Package effect animates characters over time with response curves and
// schedules which characters each effect runs on.
package effect

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Faultbox/textensions/internal/textension"
	"github.com/Faultbox/textensions/pkg/curve"
	"github.com/Faultbox/textensions/pkg/math"
)

var (
	// ErrNotImplemented is returned by effects whose evaluation does not
	// exist yet. It is never treated as a zero delta.
	ErrNotImplemented = errors.New("effect not implemented")
	// ErrUnknownKind is returned by New for an unregistered effect kind.
	ErrUnknownKind = errors.New("unknown effect kind")
)

// Effect kinds accepted in a Definition.
const (
	KindScale     = "scale"
	KindTranslate = "translate"
	KindRotation  = "rotation"
)

// Kinds lists every registered effect kind.
var Kinds = []string{KindScale, KindTranslate, KindRotation}

// Effect is an immutable, curve-driven animation of one transform component.
// Time accumulation lives on the Character, so one Effect value can drive any
// number of characters.
type Effect interface {
	Title() string
	Style() Style
	// Indices is the explicit target list used by CustomIndices.
	Indices() []int
	Curve() *curve.Curve

	// Calculate evaluates the response curve at the character's clock.
	Calculate(c *textension.Character) (float32, error)
	// Stage turns a value from Calculate into a pending delta on c. last is
	// the value staged for the same character on the previous tick, zero on
	// the first.
	Stage(c *textension.Character, value, last float32)
}

// Axes selects the components a translation moves.
type Axes struct {
	X bool `yaml:"x,omitempty"`
	Y bool `yaml:"y,omitempty"`
	Z bool `yaml:"z,omitempty"`
}

func (a Axes) any() bool { return a.X || a.Y || a.Z }

// Definition is the declarative form of an effect, as found in config files.
type Definition struct {
	Title   string       `yaml:"title"`
	Kind    string       `yaml:"kind"`
	Style   Style        `yaml:"style"`
	Indices []int        `yaml:"indices,omitempty"`
	Axes    Axes         `yaml:"axes,omitempty"`
	Curve   *curve.Curve `yaml:"curve,omitempty"`
}

// Validate checks the definition without building it.
func (d Definition) Validate() error {
	if !slices.Contains(Kinds, strings.ToLower(d.Kind)) {
		return fmt.Errorf("effect %q: %w: %q", d.Title, ErrUnknownKind, d.Kind)
	}
	if d.Style == CustomIndices && len(d.Indices) == 0 {
		return fmt.Errorf("effect %q: custom style needs indices", d.Title)
	}
	for _, i := range d.Indices {
		if i < 0 {
			return fmt.Errorf("effect %q: negative index %d", d.Title, i)
		}
	}
	return nil
}

// New builds the effect a definition describes. A missing curve defaults to a
// one second linear ramp from 0 to 1, and a translation without axes moves
// along y.
func New(d Definition) (Effect, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Curve != nil {
		d.Curve.Sort()
	}
	b := newBase(d.Title, d.Style, d.Curve, slices.Clone(d.Indices))

	switch strings.ToLower(d.Kind) {
	case KindScale:
		return &Scale{base: b}, nil
	case KindTranslate:
		axes := d.Axes
		if !axes.any() {
			axes.Y = true
		}
		return &Translate{base: b, Axes: axes}, nil
	default:
		return &Rotation{base: b}, nil
	}
}

// base holds the configuration shared by every effect.
type base struct {
	title   string
	style   Style
	indices []int
	curve   *curve.Curve
}

func newBase(title string, style Style, c *curve.Curve, indices []int) base {
	if c == nil {
		c = curve.Linear01()
	}
	return base{title: title, style: style, indices: indices, curve: c}
}

func (b *base) Title() string { return b.title }
func (b *base) Style() Style { return b.style }
func (b *base) Indices() []int { return b.indices }
func (b *base) Curve() *curve.Curve { return b.curve }

func (b *base) evaluate(c *textension.Character) float32 {
	return b.curve.Evaluate(float32(c.TimeSinceReveal()))
}

// Scale drives a uniform scale factor. The curve value is the target factor;
// the staged delta is measured from the committed scale.
type Scale struct {
	base
}

// NewScale creates a scale effect. A nil curve is a linear 0 to 1 ramp.
func NewScale(title string, style Style, c *curve.Curve, indices ...int) *Scale {
	return &Scale{base: newBase(title, style, c, indices)}
}

func (e *Scale) Calculate(c *textension.Character) (float32, error) {
	return e.evaluate(c), nil
}

func (e *Scale) Stage(c *textension.Character, value, _ float32) {
	c.AddScale(math.Splat(value).Sub(c.Scale()))
}

// Translate offsets a character along the selected axes by the curve value.
// Only the change since the previous tick is staged, so the offset does not
// accumulate.
type Translate struct {
	base
	Axes Axes
}

// NewTranslate creates a translation effect.
func NewTranslate(title string, style Style, axes Axes, c *curve.Curve, indices ...int) *Translate {
	return &Translate{base: newBase(title, style, c, indices), Axes: axes}
}

func (e *Translate) Calculate(c *textension.Character) (float32, error) {
	return e.evaluate(c), nil
}

func (e *Translate) Stage(c *textension.Character, value, last float32) {
	d := value - last
	var delta math.Vec3
	if e.Axes.X {
		delta.X = d
	}
	if e.Axes.Y {
		delta.Y = d
	}
	if e.Axes.Z {
		delta.Z = d
	}
	c.AddPosition(delta)
}

// Rotation is a registered kind without an evaluation yet.
type Rotation struct {
	base
}

func (e *Rotation) Calculate(*textension.Character) (float32, error) {
	return 0, fmt.Errorf("rotation %q: %w", e.title, ErrNotImplemented)
}

func (e *Rotation) Stage(*textension.Character, float32, float32) {}
