package loop

import (
	"time"

	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/object"
)

// forwardStep returns how far entities travel toward the viewer in dt.
func forwardStep(speed float64, dt time.Duration) float64 {
	return speed * config.UnitsPerTick * dt.Seconds()
}

// advancePool moves and spins every entity, then removes those that passed
// the expiry depth. Expired entities are reported to the scene.
func advancePool[T object.Entity](p *object.Pool[T], dz float64, scene Scene) int {
	expired := 0
	for e := range p.All() {
		b := e.Transform()
		b.Advance(dz)
		b.Spin()
		if b.Position.Z <= config.ExpiryDepth {
			continue
		}
		if _, ok := p.RemoveByID(e.ID()); ok {
			scene.RemoveVisual(e)
			expired++
		}
	}
	return expired
}
