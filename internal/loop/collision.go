package loop

import (
	"time"

	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

type contactKind int

const (
	contactPickup contactKind = iota
	contactImpact
)

// contact is a proximity result handed from the resolver to progression.
type contact struct {
	kind     contactKind
	id       object.ID
	position physics.Vec3
	at       time.Duration
}

// resolveContacts checks every live entity against the craft.
//
// Collectibles inside the attraction radius are pulled toward the craft, and
// those inside the pickup radius are marked collected. Hazards are only
// tested while the craft is not invulnerable. Results are appended to out.
func resolveContacts(
	craft physics.Vec3,
	collectibles *object.Pool[*object.Collectible],
	hazards *object.Pool[*object.Hazard],
	invulnerable bool,
	now time.Duration,
	out []contact,
) []contact {
	for c := range collectibles.All() {
		if c.Collected {
			continue
		}
		dist := physics.Distance(c.Position, craft)
		if dist < config.AttractionRadius {
			pull := config.AttractionPull * (1 - dist/config.AttractionRadius)
			c.Position = c.Position.Lerp(craft, pull)
		}
		if dist < config.PickupRadius {
			c.Collected = true
			out = append(out, contact{kind: contactPickup, id: c.ID(), position: c.Position, at: now})
		}
	}

	if invulnerable {
		return out
	}
	for h := range hazards.All() {
		if physics.PointInSphere(h.Position, craft, h.Radius()) {
			out = append(out, contact{kind: contactImpact, id: h.ID(), position: h.Position, at: now})
		}
	}
	return out
}
