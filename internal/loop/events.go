package loop

import (
	"time"

	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

// EventType identifies what happened during a tick.
type EventType int

const (
	EventStateChanged         EventType = iota // State moved to Event.State
	EventPickup                                // Collectible picked up
	EventLevelUp                               // Level increased
	EventImpact                                // Hazard hit the craft
	EventExplosion                             // Craft destroyed at Event.Position
	EventSpeedUp                               // Speed ramp step
	EventShake                                 // Screen shake request
	EventComboHidden                           // Combo indicator should disappear
	EventComboReset                            // Combo window elapsed
	EventInvulnerabilityEnded                  // Craft can be hit again
	EventBoostDepleted                         // Boost stopped for lack of energy
	EventGameOver                              // Final results are available
)

func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "state"
	case EventPickup:
		return "pickup"
	case EventLevelUp:
		return "levelup"
	case EventImpact:
		return "impact"
	case EventExplosion:
		return "explosion"
	case EventSpeedUp:
		return "speedup"
	case EventShake:
		return "shake"
	case EventComboHidden:
		return "combo_hidden"
	case EventComboReset:
		return "combo_reset"
	case EventInvulnerabilityEnded:
		return "invulnerability_ended"
	case EventBoostDepleted:
		return "boost_depleted"
	case EventGameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

// Event is a notification for presentation layers. Only the fields relevant
// to Type are set.
type Event struct {
	Type EventType

	State GameState // EventStateChanged

	Points     int // EventPickup
	Combo      int // EventPickup
	Score      int
	Level      int
	SpeedLevel int
	MaxCombo   int
	Lives      int

	EntityID object.ID
	Position physics.Vec3
	At       time.Duration // Game-clock time of the event

	Intensity float64       // EventShake
	Duration  time.Duration // EventShake
}
