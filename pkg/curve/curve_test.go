package curve

import (
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.0001
}

func TestEvaluateLinear(t *testing.T) {
	c := New(Linear, WrapClamp,
		Keyframe{Time: 0, Value: 0},
		Keyframe{Time: 1, Value: 10},
		Keyframe{Time: 2, Value: 0},
	)

	tests := []struct {
		t    float32
		want float32
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 5},
		{2, 0},
		{-1, 0}, // clamp before
		{5, 0},  // clamp after
	}

	for _, tt := range tests {
		if got := c.Evaluate(tt.t); !near(got, tt.want) {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestEvaluateSmoothEndpoints(t *testing.T) {
	c := New(Smooth, WrapClamp, Keyframe{Time: 0, Value: 0}, Keyframe{Time: 1, Value: 1})

	if got := c.Evaluate(0); !near(got, 0) {
		t.Errorf("Evaluate(0) = %v, want 0", got)
	}
	if got := c.Evaluate(1); !near(got, 1) {
		t.Errorf("Evaluate(1) = %v, want 1", got)
	}
	// Flat tangents: smoothstep at the midpoint is 0.5
	if got := c.Evaluate(0.5); !near(got, 0.5) {
		t.Errorf("Evaluate(0.5) = %v, want 0.5", got)
	}
	// Ease-in: below linear in the first half
	if got := c.Evaluate(0.25); got >= 0.25 {
		t.Errorf("Evaluate(0.25) = %v, want < 0.25 for flat tangents", got)
	}
}

func TestEvaluateConstant(t *testing.T) {
	c := New(Constant, WrapClamp, Keyframe{Time: 0, Value: 3}, Keyframe{Time: 1, Value: 7})
	if got := c.Evaluate(0.99); got != 3 {
		t.Errorf("Evaluate(0.99) = %v, want 3", got)
	}
	if got := c.Evaluate(1); got != 7 {
		t.Errorf("Evaluate(1) = %v, want 7", got)
	}
}

func TestWrapModes(t *testing.T) {
	keys := []Keyframe{{Time: 0, Value: 0}, {Time: 1, Value: 1}}

	tests := []struct {
		name string
		mode WrapMode
		t    float32
		want float32
	}{
		{"clamp", WrapClamp, 1.25, 1},
		{"loop", WrapLoop, 1.25, 0.25},
		{"loop twice", WrapLoop, 2.5, 0.5},
		{"ping pong back", WrapPingPong, 1.25, 0.75},
		{"ping pong forward again", WrapPingPong, 2.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Linear, tt.mode, keys...)
			if got := c.Evaluate(tt.t); !near(got, tt.want) {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestFinished(t *testing.T) {
	c := Linear01()
	if c.Finished(0.5) {
		t.Error("curve should not be finished at 0.5")
	}
	if !c.Finished(1) {
		t.Error("clamped curve should be finished at its last key")
	}

	c.PostWrap = WrapLoop
	if c.Finished(10) {
		t.Error("looping curve should never finish")
	}
}

func TestEmptyAndSingleKey(t *testing.T) {
	var empty Curve
	if got := empty.Evaluate(3); got != 0 {
		t.Errorf("empty curve = %v, want 0", got)
	}
	if empty.EndTime() != 0 {
		t.Errorf("empty EndTime = %v, want 0", empty.EndTime())
	}

	single := New(Linear, WrapClamp, Keyframe{Time: 2, Value: 4})
	if got := single.Evaluate(0); got != 4 {
		t.Errorf("single key curve = %v, want 4", got)
	}
}

func TestNewSortsKeys(t *testing.T) {
	c := New(Linear, WrapClamp, Keyframe{Time: 1, Value: 1}, Keyframe{Time: 0, Value: 0})
	if c.Keys[0].Time != 0 || c.EndTime() != 1 {
		t.Errorf("keys not sorted: %+v", c.Keys)
	}
}

func TestUnmarshalYAML(t *testing.T) {
	src := `
interpolation: linear
post_wrap: ping_pong
keys:
  - {time: 0, value: 1}
  - {time: 0.5, value: 2, in_tangent: 1}
`
	var c Curve
	if err := yaml.Unmarshal([]byte(src), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Interpolation != Linear {
		t.Errorf("interpolation = %v, want linear", c.Interpolation)
	}
	if c.PostWrap != WrapPingPong {
		t.Errorf("post_wrap = %v, want ping_pong", c.PostWrap)
	}
	if c.PreWrap != WrapClamp {
		t.Errorf("pre_wrap = %v, want clamp", c.PreWrap)
	}
	if c.Len() != 2 || c.Keys[1].InTangent != 1 {
		t.Errorf("keys = %+v", c.Keys)
	}
}

func TestUnmarshalYAMLInvalidWrap(t *testing.T) {
	var c Curve
	if err := yaml.Unmarshal([]byte("post_wrap: sideways\n"), &c); err == nil {
		t.Error("expected error for unknown wrap mode")
	}
}

func TestMarshalRoundNames(t *testing.T) {
	out, err := yaml.Marshal(Linear01())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var c Curve
	if err := yaml.Unmarshal(out, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Interpolation != Linear || c.PostWrap != WrapClamp || c.Len() != 2 {
		t.Errorf("unexpected curve after marshal: %+v", c)
	}
}
