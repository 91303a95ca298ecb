// Package object defines the entities that fly through the field: collectibles
// and hazards, the pool that owns them, and the spawner that creates them.
package object

import (
	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/physics"
)

// ID is a unique entity handle, stable for the entity's lifetime.
type ID uint64

// IDSource hands out increasing entity IDs. The zero value is ready to use.
type IDSource struct {
	last ID
}

// Next returns a fresh ID. IDs start at 1; 0 is never issued.
func (s *IDSource) Next() ID {
	s.last++
	return s.last
}

// Kind distinguishes the entity variants.
type Kind int

const (
	KindCollectible Kind = iota
	KindHazard
)

func (k Kind) String() string {
	switch k {
	case KindCollectible:
		return "collectible"
	case KindHazard:
		return "hazard"
	default:
		return "unknown"
	}
}

// Entity is a collectible or a hazard.
type Entity interface {
	ID() ID
	Kind() Kind
	Transform() *Body
}

// Body is the transform and lifecycle flag shared by every entity.
type Body struct {
	Position     physics.Vec3
	Rotation     physics.Vec3 // Accumulated orientation, read by renderers
	RotationRate physics.Vec3 // Per-tick angular increment
	Scale        float64
	retired      bool
}

// Advance moves the body toward the viewer by dz.
func (b *Body) Advance(dz float64) {
	b.Position.Z += dz
}

// Spin applies one tick of rotation.
func (b *Body) Spin() {
	b.Rotation = b.Rotation.Add(b.RotationRate)
}

// Retired reports whether the body has become inert and awaits purging.
func (b *Body) Retired() bool {
	return b.retired
}

// retire marks the body inert. Returns false if it already was.
func (b *Body) retire() bool {
	if b.retired {
		return false
	}
	b.retired = true
	return true
}

// Collectible is a crystal that scores and refills boost when picked up.
type Collectible struct {
	Body
	id        ID
	Collected bool // Set once on pickup, never reset
}

// NewCollectible creates a collectible with the given transform.
func NewCollectible(id ID, body Body) *Collectible {
	body.retired = false
	return &Collectible{Body: body, id: id}
}

func (c *Collectible) ID() ID           { return c.id }
func (c *Collectible) Kind() Kind       { return KindCollectible }
func (c *Collectible) Transform() *Body { return &c.Body }

// Hazard is an asteroid that costs a life on contact.
type Hazard struct {
	Body
	id ID
}

// NewHazard creates a hazard with the given transform.
func NewHazard(id ID, body Body) *Hazard {
	body.retired = false
	return &Hazard{Body: body, id: id}
}

func (h *Hazard) ID() ID           { return h.id }
func (h *Hazard) Kind() Kind       { return KindHazard }
func (h *Hazard) Transform() *Body { return &h.Body }

// Radius returns the distance below which the hazard hits the craft.
func (h *Hazard) Radius() float64 {
	return config.HazardBaseRadius + h.Scale
}

// Compile-time checks for the entity variants.
var (
	_ Entity = (*Collectible)(nil)
	_ Entity = (*Hazard)(nil)
)
