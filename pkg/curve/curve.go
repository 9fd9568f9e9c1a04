// Package curve implements time-keyed response curves: an ordered list of
// keyframes evaluated with interpolation and a wrap policy outside the
// keyed range.
package curve

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// WrapMode decides how a curve is evaluated outside its keyed time range.
type WrapMode int

const (
	// WrapClamp holds the first/last keyframe value.
	WrapClamp WrapMode = iota
	// WrapLoop repeats the keyed range.
	WrapLoop
	// WrapPingPong plays the keyed range forwards then backwards.
	WrapPingPong
)

var wrapNames = map[WrapMode]string{
	WrapClamp:    "clamp",
	WrapLoop:     "loop",
	WrapPingPong: "ping_pong",
}

func (w WrapMode) String() string {
	if s, ok := wrapNames[w]; ok {
		return s
	}
	return fmt.Sprintf("WrapMode(%d)", int(w))
}

// ParseWrapMode converts a config name to a WrapMode.
// "repeat" is accepted as an alias of "loop".
func ParseWrapMode(s string) (WrapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp", "once":
		return WrapClamp, nil
	case "loop", "repeat":
		return WrapLoop, nil
	case "ping_pong", "pingpong", "ping-pong":
		return WrapPingPong, nil
	}
	return WrapClamp, fmt.Errorf("unknown wrap mode %q", s)
}

// MarshalYAML implements yaml.Marshaler.
func (w WrapMode) MarshalYAML() (interface{}, error) {
	return w.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *WrapMode) UnmarshalYAML(value *yaml.Node) error {
	mode, err := ParseWrapMode(value.Value)
	if err != nil {
		return err
	}
	*w = mode
	return nil
}

// Interpolation selects how values between two keyframes are computed.
type Interpolation int

const (
	// Smooth uses cubic Hermite interpolation with keyframe tangents.
	Smooth Interpolation = iota
	// Linear blends linearly between keyframes.
	Linear
	// Constant holds the earlier keyframe's value.
	Constant
)

var interpNames = map[Interpolation]string{
	Smooth:   "smooth",
	Linear:   "linear",
	Constant: "constant",
}

func (i Interpolation) String() string {
	if s, ok := interpNames[i]; ok {
		return s
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// MarshalYAML implements yaml.Marshaler.
func (i Interpolation) MarshalYAML() (interface{}, error) {
	return i.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *Interpolation) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "", "smooth", "hermite":
		*i = Smooth
	case "linear":
		*i = Linear
	case "constant", "step":
		*i = Constant
	default:
		return fmt.Errorf("unknown interpolation %q", value.Value)
	}
	return nil
}

// Keyframe is one control point of a curve. Tangents are slopes (value per
// second) and only matter for Smooth interpolation.
type Keyframe struct {
	Time       float32 `yaml:"time"`
	Value      float32 `yaml:"value"`
	InTangent  float32 `yaml:"in_tangent,omitempty"`
	OutTangent float32 `yaml:"out_tangent,omitempty"`
}

// Curve maps time (seconds) to a scalar value.
type Curve struct {
	Keys          []Keyframe    `yaml:"keys"`
	Interpolation Interpolation `yaml:"interpolation"`
	PreWrap       WrapMode      `yaml:"pre_wrap"`
	PostWrap      WrapMode      `yaml:"post_wrap"`
}

// New returns a curve with the given keys sorted by time.
func New(interp Interpolation, post WrapMode, keys ...Keyframe) *Curve {
	c := &Curve{
		Keys:          append([]Keyframe(nil), keys...),
		Interpolation: interp,
		PostWrap:      post,
	}
	c.Sort()
	return c
}

// Linear01 is a linear ramp from 0 to 1 over one second, clamped.
func Linear01() *Curve {
	return New(Linear, WrapClamp, Keyframe{Time: 0, Value: 0}, Keyframe{Time: 1, Value: 1})
}

// Sort orders keyframes by time. Config-decoded curves call it once after
// loading.
func (c *Curve) Sort() {
	sort.SliceStable(c.Keys, func(i, j int) bool { return c.Keys[i].Time < c.Keys[j].Time })
}

// Len returns the number of keyframes.
func (c *Curve) Len() int {
	return len(c.Keys)
}

// StartTime returns the first keyframe time, or 0 for an empty curve.
func (c *Curve) StartTime() float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	return c.Keys[0].Time
}

// EndTime returns the last keyframe time, or 0 for an empty curve.
func (c *Curve) EndTime() float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	return c.Keys[len(c.Keys)-1].Time
}

// Loops reports whether the curve keeps animating past its last keyframe.
func (c *Curve) Loops() bool {
	return c.PostWrap == WrapLoop || c.PostWrap == WrapPingPong
}

// Finished reports whether t has reached the end of a non-looping curve.
func (c *Curve) Finished(t float32) bool {
	return !c.Loops() && t >= c.EndTime()
}

// Evaluate returns the curve value at time t.
func (c *Curve) Evaluate(t float32) float32 {
	switch len(c.Keys) {
	case 0:
		return 0
	case 1:
		return c.Keys[0].Value
	}

	start, end := c.StartTime(), c.EndTime()
	switch {
	case t < start:
		t = wrap(t, start, end, c.PreWrap)
	case t > end:
		t = wrap(t, start, end, c.PostWrap)
	}

	// First key strictly after t
	next := sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Time > t })
	if next == 0 {
		return c.Keys[0].Value
	}
	if next == len(c.Keys) {
		return c.Keys[len(c.Keys)-1].Value
	}

	k0 := c.Keys[next-1]
	k1 := c.Keys[next]
	span := k1.Time - k0.Time
	if span <= 0 {
		return k1.Value
	}
	u := (t - k0.Time) / span

	switch c.Interpolation {
	case Constant:
		return k0.Value
	case Linear:
		return k0.Value + u*(k1.Value-k0.Value)
	default:
		return hermite(k0.Value, k0.OutTangent*span, k1.Value, k1.InTangent*span, u)
	}
}

// hermite evaluates a cubic Hermite segment at u in [0, 1].
func hermite(p0, m0, p1, m1, u float32) float32 {
	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2
	return h00*p0 + h10*m0 + h01*p1 + h11*m1
}

// wrap maps t outside [start, end] back into it.
func wrap(t, start, end float32, mode WrapMode) float32 {
	length := end - start
	if length <= 0 {
		return start
	}
	switch mode {
	case WrapLoop:
		r := float32(math.Mod(float64(t-start), float64(length)))
		if r < 0 {
			r += length
		}
		return start + r
	case WrapPingPong:
		r := float32(math.Mod(float64(t-start), float64(2*length)))
		if r < 0 {
			r += 2 * length
		}
		if r > length {
			r = 2*length - r
		}
		return start + r
	default:
		if t < start {
			return start
		}
		return end
	}
}
