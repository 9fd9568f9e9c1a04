// Package scene wires a text label to the reveal and effect pipeline as
// described by a config.Config. It has no rendering dependency so the
// OpenGL and terminal front ends share it.
package scene

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/Faultbox/textensions/internal/config"
	"github.com/Faultbox/textensions/internal/effect"
	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/internal/reveal"
	"github.com/Faultbox/textensions/internal/textension"
	"github.com/Faultbox/textensions/pkg/math"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

// Options configures a Scene beyond what the config describes.
type Options struct {
	// OnReveal is called for every revealed character, e.g. to play a click.
	OnReveal func(c *textension.Character)
	Logger   *zap.Logger
}

// Scene owns one animated label.
type Scene struct {
	label   *textmesh.Label
	text    *textension.Textension
	reveal  *reveal.Reveal
	effects *effect.Scheduler

	bounds    textmesh.Bounds
	hasBounds bool
	cycles    int
	log       *zap.Logger
}

// New builds the pipeline for cfg, laying the text out with face, and runs
// the first Initialize.
func New(cfg *config.Config, face font.Face, opts Options) (*Scene, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Named("scene")
	}

	label, err := textmesh.NewLabel(face, cfg.Text.Content, cfg.TextColor())
	if err != nil {
		return nil, fmt.Errorf("create label: %w", err)
	}

	strategy, err := reveal.NewStrategy(cfg.Reveal.Strategy, cfg.Reveal.Seed)
	if err != nil {
		return nil, fmt.Errorf("create reveal strategy: %w", err)
	}

	effects := make([]effect.Effect, 0, len(cfg.Effects))
	for i, d := range cfg.Effects {
		e, err := effect.New(d)
		if err != nil {
			return nil, fmt.Errorf("effects[%d]: %w", i, err)
		}
		effects = append(effects, e)
	}

	s := &Scene{
		label: label,
		text:  textension.New(label, textension.Options{HideOnInitialize: cfg.Text.HideOnInitialize}),
		log:   log,
	}
	s.reveal = reveal.New(s.text, strategy, reveal.Options{Delay: cfg.Reveal.CharacterDelay})
	if opts.OnReveal != nil {
		s.reveal.OnReveal(opts.OnReveal)
	}
	s.reveal.OnCompleted(func() {
		s.cycles++
		s.log.Info("text revealed",
			zap.Int("characters", s.reveal.Revealed()),
			zap.Float64("elapsed", s.reveal.TotalTime()),
		)
	})
	s.effects = effect.NewScheduler(s.text, effects, effect.Options{})

	s.Restart()

	log.Info("scene ready",
		zap.Int("characters", s.text.CharacterCount()),
		zap.String("strategy", strategy.Name()),
		zap.Int("effects", len(effects)),
	)
	return s, nil
}

// Restart re-initializes the pipeline: the layout is rebuilt, the reveal
// starts over when the text hides on initialize and every effect registry
// is refilled.
func (s *Scene) Restart() {
	s.text.Initialize()
	s.bounds, s.hasBounds = s.label.TextInfo().Bounds()
}

// SetText replaces the string and restarts the pipeline. A reveal that
// already completed is not reported as interrupted.
func (s *Scene) SetText(str string) {
	s.label.SetText(str)
	s.Restart()
}

// Update runs one pipeline tick.
func (s *Scene) Update(dt float64) {
	s.text.Update(dt)
}

// Offset returns the translation that centers the text layout in a
// width x height y-up viewport. Animation does not move the anchor.
func (s *Scene) Offset(width, height float32) math.Vec2 {
	if !s.hasBounds {
		return math.Vec2{X: width / 2, Y: height / 2}
	}
	return s.bounds.CenterIn(width, height)
}

// Bounds returns the layout bounds measured at the last Restart.
func (s *Scene) Bounds() (textmesh.Bounds, bool) { return s.bounds, s.hasBounds }

func (s *Scene) Label() *textmesh.Label { return s.label }
func (s *Scene) Textension() *textension.Textension { return s.text }
func (s *Scene) Reveal() *reveal.Reveal { return s.reveal }
func (s *Scene) Effects() *effect.Scheduler { return s.effects }

// Completed returns how many reveals ran to the end.
func (s *Scene) Completed() int { return s.cycles }
