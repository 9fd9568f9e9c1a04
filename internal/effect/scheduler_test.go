package effect

import (
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/basicfont"

	"github.com/Faultbox/textensions/internal/textension"
	"github.com/Faultbox/textensions/pkg/curve"
	"github.com/Faultbox/textensions/pkg/math"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

const eps = 1e-4

func newTextension(t *testing.T, s string, hide bool) *textension.Textension {
	t.Helper()
	l, err := textmesh.NewLabel(basicfont.Face7x13, s, textmesh.White)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}
	return textension.New(l, textension.Options{HideOnInitialize: hide, Logger: zap.NewNop()})
}

func linear(end, value float32, wrap curve.WrapMode) *curve.Curve {
	return curve.New(curve.Linear, wrap,
		curve.Keyframe{Time: 0, Value: 0},
		curve.Keyframe{Time: end, Value: value})
}

func TestAllEvenScaleScenario(t *testing.T) {
	tx := newTextension(t, "abcd", false)
	s := NewScheduler(tx, []Effect{NewScale("Grow", AllEven, linear(1, 1, curve.WrapClamp))}, Options{})
	tx.Initialize()

	if got := s.AppliedIndices(); !slices.Equal(got, []int{0, 2}) {
		t.Fatalf("AppliedIndices() = %v, want [0 2]", got)
	}

	for i := 0; i < 3; i++ {
		tx.Update(0.25)
	}
	if got := s.AppliedIndices(); !slices.Equal(got, []int{0, 2}) {
		t.Fatalf("effect retired early: %v", got)
	}
	if got := tx.Character(0).Scale(); !got.ApproxEqual(math.Splat(0.75), eps) {
		t.Errorf("scale at 0.75s = %v, want 0.75", got)
	}
	if got := tx.Character(1).Scale(); got != math.Vec3One {
		t.Errorf("odd character scaled: %v", got)
	}

	tx.Update(0.25)
	for _, i := range []int{0, 2} {
		if got := tx.Character(i).Scale(); !got.ApproxEqual(math.Vec3One, eps) {
			t.Errorf("scale of %d at 1.0s = %v, want the final value 1", i, got)
		}
	}
	if got := s.AppliedIndices(); len(got) != 0 {
		t.Errorf("registry after the curve ended = %v, want empty", got)
	}

	tx.Update(0.1)
	if len(s.AppliedIndices()) != 0 || len(s.Applied(0)) != 0 {
		t.Error("retired effect came back")
	}
}

func TestRetirementRemovesOnlyFinishedEffects(t *testing.T) {
	tx := newTextension(t, "ab", false)
	short := NewScale("Short", All, linear(0.5, 1, curve.WrapClamp))
	long := NewTranslate("Long", All, Axes{Y: true}, linear(2, 4, curve.WrapClamp))
	s := NewScheduler(tx, []Effect{short, long}, Options{})
	tx.Initialize()

	if got := s.Applied(0); len(got) != 2 || got[0] != Effect(short) || got[1] != Effect(long) {
		t.Fatalf("stacking order = %v", got)
	}

	tx.Update(0.5)
	if got := s.Applied(0); len(got) != 1 || got[0] != Effect(long) {
		t.Fatalf("after 0.5s applied = %v, want only the long effect", got)
	}

	tx.Update(1.5)
	if len(s.AppliedIndices()) != 0 {
		t.Errorf("registry = %v, want empty", s.AppliedIndices())
	}
}

func TestLoopingEffectsNeverRetire(t *testing.T) {
	for _, wrap := range []curve.WrapMode{curve.WrapLoop, curve.WrapPingPong} {
		t.Run(wrap.String(), func(t *testing.T) {
			tx := newTextension(t, "ab", false)
			s := NewScheduler(tx, []Effect{NewScale("Pulse", All, linear(0.5, 1, wrap))}, Options{})
			tx.Initialize()
			for i := 0; i < 20; i++ {
				tx.Update(0.25)
			}
			if got := s.AppliedIndices(); !slices.Equal(got, []int{0, 1}) {
				t.Errorf("AppliedIndices() = %v, want [0 1]", got)
			}
		})
	}
}

func TestTranslateStagesOffsetChanges(t *testing.T) {
	tx := newTextension(t, "abcd", false)
	NewScheduler(tx, []Effect{NewTranslate("Rise", AllOdd, Axes{Y: true}, linear(1, 10, curve.WrapClamp))}, Options{})
	tx.Initialize()

	tx.Update(0.5)
	if got := tx.Character(1).Position(); !got.ApproxEqual(math.Vec3{Y: 5}, eps) {
		t.Errorf("position at 0.5s = %v, want (0,5,0)", got)
	}
	tx.Update(0.5)
	tx.Update(0.5)
	if got := tx.Character(3).Position(); !got.ApproxEqual(math.Vec3{Y: 10}, eps) {
		t.Errorf("position after the curve ended = %v, want (0,10,0)", got)
	}
	if got := tx.Character(0).Position(); got != math.Vec3Zero {
		t.Errorf("even character moved: %v", got)
	}
}

func TestDetermineWhatCharactersToAffect(t *testing.T) {
	tx := newTextension(t, "a b c", false)
	s := NewScheduler(tx, nil, Options{})
	tx.Initialize()

	tests := []struct {
		name   string
		effect Effect
		want   []int
	}{
		{name: "all", effect: NewScale("", All, nil), want: []int{0, 2, 4}},
		{name: "odd", effect: NewScale("", AllOdd, nil), want: nil},
		{name: "even", effect: NewScale("", AllEven, nil), want: []int{0, 2, 4}},
		{name: "custom", effect: NewScale("", CustomIndices, nil, 1, 2, 9), want: []int{2, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.DetermineWhatCharactersToAffect(tt.effect)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnrevealedCharactersDoNotAge(t *testing.T) {
	tx := newTextension(t, "ab", true)
	s := NewScheduler(tx, []Effect{NewScale("Grow", All, linear(1, 1, curve.WrapClamp))}, Options{})
	tx.Initialize()

	tx.Update(2)
	if tx.Character(0).TimeSinceReveal() != 0 || len(s.AppliedIndices()) != 2 {
		t.Fatal("hidden characters must not tick effects")
	}

	tx.MarkRevealed(tx.Character(0))
	tx.Update(0.5)
	if got := tx.Character(0).TimeSinceReveal(); got != 0.5 {
		t.Errorf("TimeSinceReveal() = %v, want 0.5", got)
	}
	if got := tx.Character(1).TimeSinceReveal(); got != 0 {
		t.Errorf("hidden character aged to %v", got)
	}
}

func TestOutOfRangeIndexWarnsOnceThenLogsEveryPass(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tx := newTextension(t, "ab", false)
	s := NewScheduler(tx, []Effect{
		NewTranslate("Far", CustomIndices, Axes{X: true}, linear(10, 10, curve.WrapClamp), 1, 7),
	}, Options{Logger: zap.New(core)})
	tx.Initialize()

	for i := 0; i < 3; i++ {
		tx.Update(1)
	}

	aborts := logs.FilterMessage("effect target out of range, skipping the rest of this pass").All()
	if len(aborts) != 3 {
		t.Fatalf("aborted passes logged = %d, want 3", len(aborts))
	}
	wantLevels := []zapcore.Level{zapcore.WarnLevel, zapcore.DebugLevel, zapcore.DebugLevel}
	for i, e := range aborts {
		if e.Level != wantLevels[i] {
			t.Errorf("pass %d logged at %v, want %v", i, e.Level, wantLevels[i])
		}
	}
	fields := aborts[0].ContextMap()
	if fields["index"] != int64(7) || fields["count"] != int64(2) {
		t.Errorf("warning fields = %v", fields)
	}
	if got := tx.Character(1).Position(); !got.ApproxEqual(math.Vec3{X: 3}, eps) {
		t.Errorf("in-range target should still animate: %v", got)
	}
	if got := s.AppliedIndices(); !slices.Equal(got, []int{1, 7}) {
		t.Errorf("AppliedIndices() = %v", got)
	}
}

func TestNotImplementedEffectFailsLoudly(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	tx := newTextension(t, "ab", false)
	spin, err := New(Definition{Title: "Spin", Kind: KindRotation})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := NewScheduler(tx, []Effect{spin}, Options{Logger: zap.New(core)})
	tx.Initialize()

	tx.Update(0.1)
	tx.Update(0.1)

	if logs.Len() != 2 {
		t.Fatalf("errors = %d, want one per character", logs.Len())
	}
	if logs.All()[0].ContextMap()["effect"] != "Spin" {
		t.Errorf("error fields = %v", logs.All()[0].ContextMap())
	}
	if !tx.Character(0).Rotation().IsIdentity(eps) {
		t.Error("failed effect must not stage a rotation")
	}
	if len(s.AppliedIndices()) != 2 {
		t.Errorf("AppliedIndices() = %v", s.AppliedIndices())
	}
}

func TestReinitializeRebuildsRegistry(t *testing.T) {
	tx := newTextension(t, "abc", false)
	s := NewScheduler(tx, []Effect{NewScale("Grow", All, linear(0.1, 1, curve.WrapClamp))}, Options{})
	tx.Initialize()
	tx.Update(1)
	if len(s.AppliedIndices()) != 0 {
		t.Fatal("effects should have retired")
	}

	tx.SetText("abcd")
	if got := s.AppliedIndices(); !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("AppliedIndices() = %v after re-initialize", got)
	}

	s.AddEffect(NewScale("Second", AllOdd, nil))
	tx.Initialize()
	if got := s.Applied(1); len(got) != 2 {
		t.Errorf("Applied(1) = %v, want two stacked effects", got)
	}
}

func TestDetach(t *testing.T) {
	tx := newTextension(t, "ab", false)
	s := NewScheduler(tx, []Effect{NewScale("Grow", All, linear(1, 2, curve.WrapClamp))}, Options{})
	tx.Initialize()
	s.Detach()
	tx.Update(0.5)
	if tx.Character(0).Scale() != math.Vec3One {
		t.Error("detached scheduler still ticks")
	}
}

func TestLogApplied(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tx := newTextension(t, "ab", false)
	s := NewScheduler(tx, []Effect{
		NewScale("Grow", All, nil),
		NewTranslate("Rise", AllOdd, Axes{Y: true}, nil),
	}, Options{Logger: zap.New(core)})
	tx.Initialize()

	s.LogApplied()
	entries := logs.FilterMessage("character effects").All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if got := entries[1].ContextMap()["effects"]; got != "Grow, Rise" {
		t.Errorf("index 1 effects = %v", got)
	}
}
