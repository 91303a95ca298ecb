package loop

import (
	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

// Scene is the rendering side of a game. The Game calls it synchronously
// from Tick; implementations must not call back into the Game.
type Scene interface {
	// Ready reports whether assets are loaded. The game leaves the loading
	// state on the first tick where this is true.
	Ready() bool
	// CraftPosition returns the craft's current world position, or false if
	// there is no craft to collide with.
	CraftPosition() (physics.Vec3, bool)
	SpawnVisual(e object.Entity)
	RemoveVisual(e object.Entity)
	SetCraftVisible(visible bool)
}

// Steerer is implemented by scenes that move the craft toward the pointer
// target. The Game calls SteerCraft once per playing tick before motion.
type Steerer interface {
	SteerCraft(target physics.Vec2)
}

// Craft is the player ship transform. Scenes embed it to own the ship.
type Craft struct {
	Position physics.Vec3
	Rotation physics.Vec3 // Tilt toward the target, for rendering only
	Visible  bool
}

// NewCraft returns a visible craft at its resting position.
func NewCraft() Craft {
	return Craft{
		Position: physics.Vec3{Z: config.CraftDepth},
		Visible:  true,
	}
}

// Steer closes a fixed fraction of the gap to target and tilts the ship.
func (c *Craft) Steer(target physics.Vec2) {
	c.Position.X = physics.Lerp(c.Position.X, target.X, config.CraftSteering)
	c.Position.Y = physics.Lerp(c.Position.Y, target.Y, config.CraftSteering)

	c.Rotation = physics.Vec3{
		X: -target.Y * 0.05,
		Y: -target.X * 0.01,
		Z: -target.X * 0.03,
	}
}

// Reset returns the craft to its resting position.
func (c *Craft) Reset() {
	*c = NewCraft()
}

// HeadlessScene is a Scene that tracks visuals without drawing them.
// Used by tests and by front ends that render on the far side of a socket.
type HeadlessScene struct {
	Craft

	visuals  map[object.ID]object.Entity
	notReady bool
}

// NewHeadlessScene returns a scene that is immediately ready.
func NewHeadlessScene() *HeadlessScene {
	return &HeadlessScene{
		Craft:   NewCraft(),
		visuals: make(map[object.ID]object.Entity),
	}
}

// SetReady controls what Ready reports.
func (s *HeadlessScene) SetReady(ready bool) {
	s.notReady = !ready
}

func (s *HeadlessScene) Ready() bool { return !s.notReady }

func (s *HeadlessScene) CraftPosition() (physics.Vec3, bool) {
	return s.Craft.Position, true
}

func (s *HeadlessScene) SpawnVisual(e object.Entity) {
	s.visuals[e.ID()] = e
}

func (s *HeadlessScene) RemoveVisual(e object.Entity) {
	delete(s.visuals, e.ID())
}

func (s *HeadlessScene) SetCraftVisible(visible bool) {
	s.Craft.Visible = visible
}

func (s *HeadlessScene) SteerCraft(target physics.Vec2) {
	s.Craft.Steer(target)
}

// Visuals returns the number of entities currently shown.
func (s *HeadlessScene) Visuals() int {
	return len(s.visuals)
}

// HasVisual reports whether the entity is currently shown.
func (s *HeadlessScene) HasVisual(id object.ID) bool {
	_, ok := s.visuals[id]
	return ok
}

var (
	_ Scene   = (*HeadlessScene)(nil)
	_ Steerer = (*HeadlessScene)(nil)
)
