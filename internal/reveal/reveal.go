// Package reveal implements typewriter-style reveal of a Textension's
// characters, one character every Delay seconds.
package reveal

import (
	"go.uber.org/zap"

	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/internal/textension"
)

// tickEpsilon absorbs float drift when the accumulated time lands on an
// exact multiple of the delay.
const tickEpsilon = 1e-9

// State is the phase of a reveal.
type State int

const (
	Idle State = iota
	Revealing
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Revealing:
		return "revealing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Options configures a Reveal.
type Options struct {
	// Delay is the time between two reveals in seconds. Negative values are
	// clamped to zero.
	Delay  float64
	Logger *zap.Logger
}

// Reveal hides a Textension's characters and reveals them over time using a
// Strategy. It installs itself as the Textension's revealer.
type Reveal struct {
	t        *textension.Textension
	strategy Strategy
	delay    float64
	log      *zap.Logger

	state         State
	characterTime float64
	totalTime     float64
	revealed      int
	total         int

	onReveal      []func(c *textension.Character)
	onCompleted   []func()
	onInterrupted []func()
}

// New creates a reveal for t and attaches it.
func New(t *textension.Textension, strategy Strategy, opts Options) *Reveal {
	log := opts.Logger
	if log == nil {
		log = logger.Named("reveal")
	}
	r := &Reveal{
		t:        t,
		strategy: strategy,
		log:      log.With(zap.String("strategy", strategy.Name())),
	}
	r.SetDelay(opts.Delay)
	t.SetRevealer(r)
	return r
}

// Detach stops revealing and unregisters from the Textension. Characters
// that are still hidden stay hidden.
func (r *Reveal) Detach() {
	if r.t.Revealer() == textension.Revealer(r) {
		r.t.SetRevealer(nil)
	}
	r.state = Idle
}

// SetDelay sets the time between reveals, clamped to be non-negative.
func (r *Reveal) SetDelay(d float64) {
	r.delay = max(d, 0)
}

func (r *Reveal) Delay() float64 { return r.delay }

func (r *Reveal) State() State { return r.state }

func (r *Reveal) Strategy() Strategy { return r.strategy }

// Revealed is the number of characters revealed since the last Start.
func (r *Reveal) Revealed() int { return r.revealed }

// TotalTime is the time spent revealing since the last Start.
func (r *Reveal) TotalTime() float64 { return r.totalTime }

// OnReveal registers fn to run after each character is revealed.
func (r *Reveal) OnReveal(fn func(c *textension.Character)) {
	r.onReveal = append(r.onReveal, fn)
}

// OnCompleted registers fn to run when the last character is revealed. It
// does not wait for effects that may still be animating.
func (r *Reveal) OnCompleted(fn func()) {
	r.onCompleted = append(r.onCompleted, fn)
}

// OnInterrupted registers fn to run when a reveal in progress is restarted or
// cancelled by re-initialization.
func (r *Reveal) OnInterrupted(fn func()) {
	r.onInterrupted = append(r.onInterrupted, fn)
}

// HideInitialize starts revealing after the Textension hid its text.
func (r *Reveal) HideInitialize() {
	r.Start()
}

// ShowInitialize cancels any reveal after the Textension initialized with
// every character visible.
func (r *Reveal) ShowInitialize() {
	if r.state == Revealing {
		r.interrupted()
	}
	r.state = Idle
	r.strategy.ShowAll(r.t)
}

// Start hides every character and begins revealing from the first one. It
// can be used as a manual trigger at any time.
func (r *Reveal) Start() {
	if r.state == Revealing {
		r.interrupted()
	}

	r.revealed = 0
	r.total = r.t.CharacterCount()
	r.totalTime = 0
	r.characterTime = 0

	r.t.HideAll()
	r.strategy.Hide(r.t)
	r.state = Revealing

	r.log.Debug("reveal started", zap.Int("count", r.total), zap.Float64("delay", r.delay))
}

// RevealTick advances the reveal by dt seconds. Several characters are
// revealed in one tick when dt spans several delays.
func (r *Reveal) RevealTick(dt float64) {
	if r.state != Revealing {
		return
	}
	if len(r.t.Unrevealed()) == 0 {
		r.complete()
		return
	}

	r.totalTime += dt
	r.characterTime += dt

	for r.characterTime+tickEpsilon >= r.delay {
		c := r.t.RevealAt(r.strategy.Next(len(r.t.Unrevealed())))
		if c == nil {
			break
		}
		r.strategy.Show(r.t, c)
		r.revealed++
		r.characterTime -= r.delay

		for _, fn := range r.onReveal {
			fn(c)
		}

		if len(r.t.Unrevealed()) == 0 {
			r.complete()
			break
		}
	}
}

func (r *Reveal) complete() {
	r.characterTime = 0
	r.state = Completed
	r.log.Debug("reveal completed", zap.Int("revealed", r.revealed), zap.Float64("elapsed", r.totalTime))
	for _, fn := range r.onCompleted {
		fn()
	}
}

func (r *Reveal) interrupted() {
	r.log.Debug("reveal interrupted", zap.Int("revealed", r.revealed), zap.Int("count", r.total))
	for _, fn := range r.onInterrupted {
		fn()
	}
}
