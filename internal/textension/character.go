package textension

import (
	"github.com/Faultbox/textensions/pkg/math"
	"github.com/Faultbox/textensions/pkg/textmesh"
)

// identityEps is the tolerance used to decide whether a committed transform
// still leaves the glyph quad untouched.
const identityEps = 1e-6

// Character is the animation state of one glyph.
//
// Mutations are staged: Add/Remove/Set only change a pending delta and raise
// a dirty flag. The owning Textension commits the deltas once per tick.
type Character struct {
	index int
	info  textmesh.CharacterInfo

	position math.Vec3
	rotation math.Quat
	scale    math.Vec3

	positionPending math.Vec3
	rotationPending math.Quat
	scalePending    math.Vec3

	hasPositionUpdated bool
	hasRotationUpdated bool
	hasScaleUpdated    bool

	// meshDirty means the committed transform has not been written to the
	// vertex buffer yet.
	meshDirty bool

	isRevealed      bool
	timeSinceReveal float64
}

// NewCharacter creates a character with an identity transform.
func NewCharacter(info textmesh.CharacterInfo) *Character {
	return &Character{
		index:           info.Index,
		info:            info,
		rotation:        math.QuatIdentity(),
		scale:           math.Vec3One,
		rotationPending: math.QuatIdentity(),
	}
}

func (c *Character) Index() int { return c.index }

// Info returns the layout metadata captured at the last re-sync.
func (c *Character) Info() textmesh.CharacterInfo { return c.info }

func (c *Character) IsVisible() bool { return c.info.IsVisible }

func (c *Character) IsRevealed() bool { return c.isRevealed }

// TimeSinceReveal is the effect clock of the character in seconds.
func (c *Character) TimeSinceReveal() float64 { return c.timeSinceReveal }

// Position returns the committed translation.
func (c *Character) Position() math.Vec3 { return c.position }

// Rotation returns the committed rotation.
func (c *Character) Rotation() math.Quat { return c.rotation }

// Scale returns the committed scale.
func (c *Character) Scale() math.Vec3 { return c.scale }

// HasPendingChanges reports whether any component is waiting to be committed.
func (c *Character) HasPendingChanges() bool {
	return c.hasPositionUpdated || c.hasRotationUpdated || c.hasScaleUpdated
}

// AddPosition stages a translation delta.
func (c *Character) AddPosition(delta math.Vec3) {
	c.positionPending = c.positionPending.Add(delta)
	c.hasPositionUpdated = true
}

// RemovePosition stages the opposite of a translation delta.
func (c *Character) RemovePosition(delta math.Vec3) {
	c.positionPending = c.positionPending.Sub(delta)
	c.hasPositionUpdated = true
}

// SetPosition stages whatever delta moves the committed position to p,
// discarding deltas staged earlier in the tick.
func (c *Character) SetPosition(p math.Vec3) {
	c.positionPending = p.Sub(c.position)
	c.hasPositionUpdated = true
}

// AddRotation stages a rotation, composed on the right.
func (c *Character) AddRotation(q math.Quat) {
	c.rotationPending = c.rotationPending.Mul(q)
	c.hasRotationUpdated = true
}

// AddRotationEuler stages a rotation given as Euler angles in degrees.
func (c *Character) AddRotationEuler(deg math.Vec3) {
	c.AddRotation(math.QuatFromEuler(deg))
}

// RemoveRotation stages the inverse of q.
func (c *Character) RemoveRotation(q math.Quat) {
	c.rotationPending = c.rotationPending.Mul(q.Inverse())
	c.hasRotationUpdated = true
}

// SetRotation stages whatever rotation turns the committed rotation into q.
func (c *Character) SetRotation(q math.Quat) {
	c.rotationPending = c.rotation.Inverse().Mul(q)
	c.hasRotationUpdated = true
}

// AddScale stages a scale delta.
func (c *Character) AddScale(delta math.Vec3) {
	c.scalePending = c.scalePending.Add(delta)
	c.hasScaleUpdated = true
}

// RemoveScale stages the opposite of a scale delta.
func (c *Character) RemoveScale(delta math.Vec3) {
	c.scalePending = c.scalePending.Sub(delta)
	c.hasScaleUpdated = true
}

// SetScale stages whatever delta brings the committed scale to s.
func (c *Character) SetScale(s math.Vec3) {
	c.scalePending = s.Sub(c.scale)
	c.hasScaleUpdated = true
}

// ApplyPosition commits the pending translation. It reports whether the
// position flag was raised.
func (c *Character) ApplyPosition() bool {
	if !c.hasPositionUpdated {
		return false
	}
	c.position = c.position.Add(c.positionPending)
	c.positionPending = math.Vec3Zero
	c.hasPositionUpdated = false
	return true
}

// ApplyRotation commits the pending rotation.
func (c *Character) ApplyRotation() bool {
	if !c.hasRotationUpdated {
		return false
	}
	c.rotation = c.rotation.Mul(c.rotationPending).Normalize()
	c.rotationPending = math.QuatIdentity()
	c.hasRotationUpdated = false
	return true
}

// ApplyScale commits the pending scale.
func (c *Character) ApplyScale() bool {
	if !c.hasScaleUpdated {
		return false
	}
	c.scale = c.scale.Add(c.scalePending)
	c.scalePending = math.Vec3Zero
	c.hasScaleUpdated = false
	return true
}

// commit applies every pending component and remembers that the quad has to
// be rebuilt if anything changed.
func (c *Character) commit() bool {
	p := c.ApplyPosition()
	r := c.ApplyRotation()
	s := c.ApplyScale()
	if p || r || s {
		c.meshDirty = true
		return true
	}
	return false
}

// isIdentity reports whether the committed transform leaves the quad as laid
// out.
func (c *Character) isIdentity() bool {
	return c.position.ApproxEqual(math.Vec3Zero, identityEps) &&
		c.rotation.IsIdentity(identityEps) &&
		c.scale.ApproxEqual(math.Vec3One, identityEps)
}

// Advance moves the effect clock forward. Hidden characters do not age.
func (c *Character) Advance(dt float64) {
	if c.isRevealed {
		c.timeSinceReveal += dt
	}
}

func (c *Character) reveal() {
	if c.isRevealed {
		return
	}
	c.isRevealed = true
	c.timeSinceReveal = 0
	if !c.isIdentity() {
		c.meshDirty = true
	}
}

func (c *Character) hide() {
	c.isRevealed = false
	c.timeSinceReveal = 0
}

// matrix returns the committed transform as a TRS matrix.
func (c *Character) matrix() math.Mat4 {
	return math.TRS(c.position, c.rotation, c.scale)
}
