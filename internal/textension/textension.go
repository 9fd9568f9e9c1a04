// Package textension animates the individual characters of a text label by
// rewriting its glyph quads every frame.
//
// A Textension owns one Character per rune of the label. Each tick runs a
// fixed pipeline: glyph metadata re-sync, reveal tick, effect tick, then
// transform commit and a single vertex upload when anything moved.
package textension

import (
	"slices"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/pkg/math"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

// Revealer decides when hidden characters become visible.
type Revealer interface {
	// HideInitialize is called after Initialize hid every character.
	HideInitialize()
	// ShowInitialize is called after Initialize revealed every character.
	ShowInitialize()
	// RevealTick runs before effects on every Update.
	RevealTick(dt float64)
}

// EffectRunner animates revealed characters.
type EffectRunner interface {
	EffectsInitialize()
	EffectsTick(dt float64)
}

// Options configures a Textension.
type Options struct {
	// HideOnInitialize starts every character unrevealed.
	HideOnInitialize bool
	// Logger defaults to the "textension" child of the global logger.
	Logger *zap.Logger
}

// Textension drives the per-character pipeline of one text label.
type Textension struct {
	text textmesh.Text
	opts Options
	log  *zap.Logger

	revealer Revealer
	effects  []EffectRunner

	characters []*Character
	unrevealed []*Character

	originalMesh []textmesh.MeshInfo
	// targetVertices is the per-submesh buffer handed to the text on upload.
	targetVertices [][]math.Vec3
	submeshDirty   []bool

	cachedColor textmesh.Color32
	initialized bool
}

// New attaches a Textension to text. Call Initialize before the first Update.
func New(text textmesh.Text, opts Options) *Textension {
	log := opts.Logger
	if log == nil {
		log = logger.Named("textension")
	}
	return &Textension{
		text: text,
		opts: opts,
		log:  log,
	}
}

// SetRevealer installs the reveal strategy. Pass nil to remove it.
func (t *Textension) SetRevealer(r Revealer) {
	t.revealer = r
}

// Revealer returns the installed reveal strategy, or nil.
func (t *Textension) Revealer() Revealer { return t.revealer }

// AddEffects registers an effect runner. Runners tick in registration order.
func (t *Textension) AddEffects(r EffectRunner) {
	t.effects = append(t.effects, r)
}

// RemoveEffects unregisters an effect runner.
func (t *Textension) RemoveEffects(r EffectRunner) {
	if i := slices.Index(t.effects, r); i >= 0 {
		t.effects = slices.Delete(t.effects, i, i+1)
	}
}

// SetHideOnInitialize changes whether the next Initialize hides the text.
func (t *Textension) SetHideOnInitialize(hide bool) {
	t.opts.HideOnInitialize = hide
}

func (t *Textension) HideOnInitialize() bool { return t.opts.HideOnInitialize }

// Initialize lays the text out synchronously and rebuilds every character
// from scratch. It may be called any number of times; all previous reveal
// and effect state is discarded.
func (t *Textension) Initialize() {
	t.text.ForceMeshUpdate()
	info := t.text.TextInfo()

	t.cachedColor = t.text.Color()
	t.originalMesh = info.CopyMeshInfoVertexData()
	t.targetVertices = make([][]math.Vec3, len(t.originalMesh))
	for i, m := range t.originalMesh {
		t.targetVertices[i] = slices.Clone(m.Vertices)
	}
	t.submeshDirty = make([]bool, len(t.originalMesh))

	t.characters = make([]*Character, 0, info.CharacterCount)
	t.unrevealed = t.unrevealed[:0]
	for i := 0; i < info.CharacterCount && i < len(info.CharacterInfo); i++ {
		t.characters = append(t.characters, NewCharacter(info.CharacterInfo[i]))
	}
	t.initialized = true

	if t.opts.HideOnInitialize {
		t.HideAll()
		if t.revealer == nil {
			t.log.Warn("hide on initialize is set but no reveal strategy is attached, text stays hidden",
				zap.Int("count", len(t.characters)))
		} else {
			t.revealer.HideInitialize()
		}
	} else {
		for _, c := range t.characters {
			c.reveal()
		}
		if t.revealer != nil {
			t.revealer.ShowInitialize()
		}
	}

	for _, e := range t.effects {
		e.EffectsInitialize()
	}

	t.log.Debug("initialized",
		zap.Int("characters", len(t.characters)),
		zap.Int("submeshes", len(t.originalMesh)),
		zap.Bool("hidden", t.opts.HideOnInitialize))
}

// Initialized reports whether Initialize has run at least once.
func (t *Textension) Initialized() bool { return t.initialized }

// SetText replaces the label's string and re-initializes.
func (t *Textension) SetText(s string) {
	t.text.SetText(s)
	t.Initialize()
}

// Update runs one tick of the pipeline. dt is the frame time in seconds.
func (t *Textension) Update(dt float64) {
	if !t.initialized {
		return
	}

	t.syncInfo()

	if t.revealer != nil {
		t.revealer.RevealTick(dt)
	}
	for _, e := range t.effects {
		e.EffectsTick(dt)
	}

	for _, c := range t.characters {
		c.commit()
	}
	t.applyMeshChanges()
}

// syncInfo refreshes the layout metadata each character holds.
func (t *Textension) syncInfo() {
	info := t.text.TextInfo()
	n := min(len(t.characters), len(info.CharacterInfo))
	for i := 0; i < n; i++ {
		t.characters[i].info = info.CharacterInfo[i]
	}
}

// applyMeshChanges rebuilds the quads of dirty characters from the original
// mesh and uploads each touched submesh once.
func (t *Textension) applyMeshChanges() {
	for _, c := range t.characters {
		if !c.meshDirty || !c.isRevealed {
			continue
		}
		if !c.info.IsVisible {
			c.meshDirty = false
			continue
		}
		if t.rebuildQuad(c) {
			t.submeshDirty[c.info.MaterialReferenceIndex] = true
		}
		c.meshDirty = false
	}

	for sub, dirty := range t.submeshDirty {
		if !dirty {
			continue
		}
		t.submeshDirty[sub] = false
		if len(t.targetVertices[sub]) == 0 {
			continue
		}
		t.text.SetVertices(sub, t.targetVertices[sub])
		t.text.UpdateGeometry(sub)
	}
}

// rebuildQuad writes the transformed quad of c into the target buffer. The
// transform pivots on the bottom-edge center of the quad at the baseline.
func (t *Textension) rebuildQuad(c *Character) bool {
	sub := c.info.MaterialReferenceIndex
	if sub < 0 || sub >= len(t.originalMesh) {
		return false
	}
	orig := t.originalMesh[sub].Vertices
	dst := t.targetVertices[sub]
	vi := c.info.VertexIndex
	if vi < 0 || vi+textmesh.VerticesPerQuad > len(orig) || vi+textmesh.VerticesPerQuad > len(dst) {
		return false
	}

	origin := math.Vec3{
		X: (orig[vi].X + orig[vi+3].X) / 2,
		Y: c.info.Baseline,
	}
	m := c.matrix()
	for k := 0; k < textmesh.VerticesPerQuad; k++ {
		dst[vi+k] = m.TransformVec3(orig[vi+k].Sub(origin)).Add(origin)
	}
	return true
}

// HideAll marks every character unrevealed and queues all of them, in
// string order, for revealing.
func (t *Textension) HideAll() {
	t.unrevealed = t.unrevealed[:0]
	for _, c := range t.characters {
		c.hide()
		t.unrevealed = append(t.unrevealed, c)
	}
}

// RevealAt reveals the character at position pos of the unrevealed queue and
// removes it from the queue. It returns nil when pos is out of range.
func (t *Textension) RevealAt(pos int) *Character {
	if pos < 0 || pos >= len(t.unrevealed) {
		return nil
	}
	c := t.unrevealed[pos]
	t.unrevealed = slices.Delete(t.unrevealed, pos, pos+1)
	c.reveal()
	return c
}

// MarkRevealed reveals c and removes it from the unrevealed queue.
func (t *Textension) MarkRevealed(c *Character) {
	if i := slices.Index(t.unrevealed, c); i >= 0 {
		t.unrevealed = slices.Delete(t.unrevealed, i, i+1)
	}
	c.reveal()
}

// Characters returns every character in string order. The slice must not be
// modified.
func (t *Textension) Characters() []*Character { return t.characters }

// Unrevealed returns the characters still waiting to be revealed, in reveal
// order. The slice must not be modified.
func (t *Textension) Unrevealed() []*Character { return t.unrevealed }

// Character returns the character at index i, or nil when out of range.
func (t *Textension) Character(i int) *Character {
	if i < 0 || i >= len(t.characters) {
		return nil
	}
	return t.characters[i]
}

// CharacterCount is the number of characters built by the last Initialize.
func (t *Textension) CharacterCount() int { return len(t.characters) }

// LastIndex is the index of the last character, or -1 before Initialize or
// for an empty string.
func (t *Textension) LastIndex() int { return len(t.characters) - 1 }

// TextLength is the rune count of the label's current string, which may
// differ from CharacterCount until the next Initialize.
func (t *Textension) TextLength() int { return utf8.RuneCountInString(t.text.Text()) }

// CachedColor is the label color captured by the last Initialize.
func (t *Textension) CachedColor() textmesh.Color32 { return t.cachedColor }

// Text returns the underlying label.
func (t *Textension) Text() textmesh.Text { return t.text }

// Info returns the label's live layout.
func (t *Textension) Info() *textmesh.TextInfo { return t.text.TextInfo() }
