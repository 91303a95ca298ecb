package object

import (
	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/physics"
)

// Rand is a uniform random source in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Spawner probabilistically creates collectibles and hazards, with rates
// scaled by the current level. It never touches session state.
type Spawner struct {
	rng Rand
	ids *IDSource
}

// NewSpawner creates a spawner drawing from rng and numbering entities from ids.
func NewSpawner(rng Rand, ids *IDSource) *Spawner {
	return &Spawner{
		rng: rng,
		ids: ids,
	}
}

// CollectibleChance returns the per-tick collectible spawn probability, capped at 1.
func CollectibleChance(level int) float64 {
	return min(1, config.CollectibleChanceBase+float64(max(level, 1))*config.CollectibleChanceLevel)
}

// HazardChance returns the per-tick hazard spawn probability, capped at 1.
func HazardChance(level int) float64 {
	return min(1, config.HazardChanceBase+float64(max(level, 1))*config.HazardChanceLevel)
}

// Tick runs one spawn test per kind. The two spawn rolls are drawn first and
// independently; construction samples follow. Either result may be nil.
func (s *Spawner) Tick(level int) (*Collectible, *Hazard) {
	collectRoll := s.rng.Float64()
	hazardRoll := s.rng.Float64()

	var c *Collectible
	var h *Hazard
	if collectRoll < CollectibleChance(level) {
		c = s.NewCollectible()
	}
	if hazardRoll < HazardChance(level) {
		h = s.NewHazard()
	}
	return c, h
}

// NewCollectible creates a tiny crystal at the far collectible spawn depth.
func (s *Spawner) NewCollectible() *Collectible {
	body := Body{
		Position: physics.Vec3{
			X: s.symmetric(config.CollectibleHalfWidth),
			Y: s.symmetric(config.CollectibleHalfHeight),
			Z: config.CollectibleSpawnZ,
		},
		Scale: s.between(config.CollectibleScaleMin, config.CollectibleScaleMax),
		RotationRate: physics.Vec3{
			X: s.between(0, config.CollectibleSpinMax),
			Y: s.between(0, config.CollectibleSpinMax),
			Z: s.between(0, config.CollectibleSpinMax),
		},
	}
	return NewCollectible(s.ids.Next(), body)
}

// NewHazard creates an asteroid at the hazard spawn depth.
func (s *Spawner) NewHazard() *Hazard {
	body := Body{
		Position: physics.Vec3{
			X: s.symmetric(config.HazardHalfWidth),
			Y: s.symmetric(config.HazardHalfHeight),
			Z: config.HazardSpawnZ,
		},
		Scale: s.between(config.HazardScaleMin, config.HazardScaleMax),
		RotationRate: physics.Vec3{
			X: s.symmetric(config.HazardSpinMax),
			Y: s.symmetric(config.HazardSpinMax),
			Z: s.symmetric(config.HazardSpinMax),
		},
	}
	return NewHazard(s.ids.Next(), body)
}

// symmetric returns a uniform sample in [-half, half).
func (s *Spawner) symmetric(half float64) float64 {
	return (s.rng.Float64() - 0.5) * 2 * half
}

// between returns a uniform sample in [lo, hi).
func (s *Spawner) between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
