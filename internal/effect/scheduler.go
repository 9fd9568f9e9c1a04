package effect

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/internal/textension"
)

// pairing is one effect running on one character.
type pairing struct {
	effect Effect
	last   float32
	failed bool
}

// Options configures a Scheduler.
type Options struct {
	Logger *zap.Logger
}

// Scheduler maps effects to character indices and ticks them. The applied
// registry only holds indices with at least one active effect.
type Scheduler struct {
	t       *textension.Textension
	effects []Effect
	log     *zap.Logger

	applied     map[int][]*pairing
	keysToClean []int
	rangeWarned map[int]bool
}

// NewScheduler creates a scheduler for effects and attaches it to t. The
// registry is filled on the Textension's next Initialize.
func NewScheduler(t *textension.Textension, effects []Effect, opts Options) *Scheduler {
	log := opts.Logger
	if log == nil {
		log = logger.Named("effects")
	}
	s := &Scheduler{
		t:           t,
		effects:     slices.Clone(effects),
		log:         log,
		applied:     make(map[int][]*pairing),
		rangeWarned: make(map[int]bool),
	}
	t.AddEffects(s)
	return s
}

// Detach unregisters the scheduler. The registry is kept as is.
func (s *Scheduler) Detach() {
	s.t.RemoveEffects(s)
}

// AddEffect adds an effect to the configuration. It is applied on the next
// EffectsInitialize.
func (s *Scheduler) AddEffect(e Effect) {
	s.effects = append(s.effects, e)
}

// Effects returns the configured effects.
func (s *Scheduler) Effects() []Effect { return s.effects }

// DetermineWhatCharactersToAffect resolves an effect's style into character
// indices. Characters that are not visible are skipped. Custom indices past
// the last character are kept and reported when ticked.
func (s *Scheduler) DetermineWhatCharactersToAffect(e Effect) []int {
	var out []int
	if e.Style() == CustomIndices {
		for _, i := range e.Indices() {
			if c := s.t.Character(i); c != nil && !c.IsVisible() {
				continue
			}
			out = append(out, i)
		}
		return out
	}
	for _, c := range s.t.Characters() {
		if !e.Style().Selects(c.Index()) || !c.IsVisible() {
			continue
		}
		out = append(out, c.Index())
	}
	return out
}

// EffectsInitialize rebuilds the applied registry from the configured
// effects. One index may stack several effects.
func (s *Scheduler) EffectsInitialize() {
	clear(s.applied)
	clear(s.rangeWarned)
	s.keysToClean = s.keysToClean[:0]

	for _, e := range s.effects {
		for _, i := range s.DetermineWhatCharactersToAffect(e) {
			s.applied[i] = append(s.applied[i], &pairing{effect: e})
		}
	}

	if s.log.Core().Enabled(zap.DebugLevel) {
		s.LogApplied()
	}
}

// EffectsTick advances the clock of every affected revealed character,
// stages the effect deltas, and retires effects whose curve has ended.
func (s *Scheduler) EffectsTick(dt float64) {
	count := s.t.CharacterCount()
	if count == 0 {
		return
	}

	for _, key := range slices.Sorted(maps.Keys(s.applied)) {
		if key >= count {
			lvl := zap.WarnLevel
			if s.rangeWarned[key] {
				lvl = zap.DebugLevel
			}
			s.rangeWarned[key] = true
			s.log.Log(lvl, "effect target out of range, skipping the rest of this pass",
				zap.Int("index", key),
				zap.Int("count", count))
			break
		}

		c := s.t.Character(key)
		if !c.IsRevealed() || !c.IsVisible() {
			continue
		}
		c.Advance(dt)

		pairings := s.applied[key]
		kept := pairings[:0]
		for _, p := range pairings {
			if s.tick(c, p) {
				kept = append(kept, p)
			}
		}
		clear(pairings[len(kept):])
		s.applied[key] = kept
		if len(kept) == 0 {
			s.keysToClean = append(s.keysToClean, key)
		}
	}

	s.cleanUnusedEffects()
}

// tick runs one pairing and reports whether it stays registered.
func (s *Scheduler) tick(c *textension.Character, p *pairing) bool {
	if p.failed {
		return true
	}
	value, err := p.effect.Calculate(c)
	if err != nil {
		p.failed = true
		lvl := zap.WarnLevel
		if errors.Is(err, ErrNotImplemented) {
			lvl = zap.ErrorLevel
		}
		s.log.Log(lvl, "effect evaluation aborted",
			zap.String("effect", p.effect.Title()),
			zap.Int("index", c.Index()),
			zap.Error(err))
		return true
	}
	p.effect.Stage(c, value, p.last)
	p.last = value

	if p.effect.Curve().Finished(float32(c.TimeSinceReveal())) {
		s.log.Debug("effect retired",
			zap.String("effect", p.effect.Title()),
			zap.Int("index", c.Index()))
		return false
	}
	return true
}

func (s *Scheduler) cleanUnusedEffects() {
	for _, key := range s.keysToClean {
		delete(s.applied, key)
	}
	s.keysToClean = s.keysToClean[:0]
}

// AppliedIndices returns the registry keys in ascending order.
func (s *Scheduler) AppliedIndices() []int {
	return slices.Sorted(maps.Keys(s.applied))
}

// Applied returns the effects active on character index i, in stacking
// order.
func (s *Scheduler) Applied(i int) []Effect {
	pairings := s.applied[i]
	out := make([]Effect, 0, len(pairings))
	for _, p := range pairings {
		out = append(out, p.effect)
	}
	return out
}

// LogApplied writes the registry to the log, one line per index.
func (s *Scheduler) LogApplied() {
	keys := s.AppliedIndices()
	s.log.Info("applied effects", zap.Int("characters", len(keys)))
	for _, key := range keys {
		titles := make([]string, 0, len(s.applied[key]))
		for _, p := range s.applied[key] {
			titles = append(titles, p.effect.Title())
		}
		s.log.Info("character effects",
			zap.Int("index", key),
			zap.String("effects", strings.Join(titles, ", ")))
	}
}
