package loop

import (
	"time"

	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

// Screen shake requests.
const (
	levelUpShakeIntensity = 4.0
	levelUpShakeDuration  = 400 * time.Millisecond
	impactShakeIntensity  = 6.0
	impactShakeDuration   = 800 * time.Millisecond
	speedUpShakeIntensity = 3.0
	speedUpShakeDuration  = 300 * time.Millisecond
)

// applyPickup scores a collected crystal and schedules the combo timers.
func applyPickup(s *Session, q *timerQueue, id object.ID, at physics.Vec3, now time.Duration, out []Event) []Event {
	if s.hasPickup && now-s.lastPickup < config.ComboWindow {
		s.Combo++
	} else {
		s.Combo = 1
	}
	s.hasPickup = true
	s.lastPickup = now
	s.MaxCombo = max(s.MaxCombo, s.Combo)

	points := config.PickupPoints * s.Combo * s.Level
	s.Score += points
	s.BoostEnergy = min(s.BoostEnergy+config.PickupBoostEnergy, config.MaxBoostEnergy)

	out = append(out, Event{
		Type:     EventPickup,
		Points:   points,
		Combo:    s.Combo,
		Score:    s.Score,
		EntityID: id,
		Position: at,
		At:       now,
	})

	q.Cancel(timerComboWindow)
	q.Schedule(timerComboWindow, now+config.ComboWindow)
	if s.Combo > 1 {
		q.Cancel(timerComboBanner)
		q.Schedule(timerComboBanner, now+config.ComboBannerDuration)
	}

	// At most one level per pickup
	if s.Score >= s.Level*config.LevelScoreStep {
		out = levelUp(s, now, out)
	}
	return out
}

func levelUp(s *Session, now time.Duration, out []Event) []Event {
	s.Level++
	s.BaseSpeed = min(s.BaseSpeed*config.LevelSpeedFactor, config.LevelSpeedCap)

	out = append(out, Event{Type: EventLevelUp, Level: s.Level, Score: s.Score, At: now})
	if s.Level >= config.ShakeFromLevel {
		out = append(out, Event{
			Type:      EventShake,
			Intensity: levelUpShakeIntensity,
			Duration:  levelUpShakeDuration,
			At:        now,
		})
	}
	return out
}

// applyImpact costs a life unless the craft is invulnerable or already
// destroyed. The final life starts the dying phase.
func applyImpact(s *Session, q *timerQueue, id object.ID, craft physics.Vec3, now time.Duration, out []Event) []Event {
	if s.Dying || s.IsInvulnerable {
		return out
	}
	s.Lives--

	out = append(out, Event{Type: EventImpact, Lives: s.Lives, EntityID: id, Position: craft, At: now})

	if s.Lives <= 0 {
		s.Lives = 0
		s.Dying = true
		s.Boosting = false
		q.Schedule(timerGameOver, now+config.GameOverDelay)
		return append(out, Event{Type: EventExplosion, Position: craft, At: now})
	}

	s.IsInvulnerable = true
	s.InvulnerableUntil = now + config.InvulnerableDuration
	q.Schedule(timerInvulnerability, s.InvulnerableUntil)

	s.SpeedMultiplier *= config.SpeedPenaltyFactor
	q.Schedule(timerSpeedPenalty, now+config.SpeedPenaltyDuration)

	return append(out, Event{
		Type:      EventShake,
		Intensity: impactShakeIntensity,
		Duration:  impactShakeDuration,
		At:        now,
	})
}

// rampSpeed raises the base speed once per ramp interval of play.
func rampSpeed(s *Session, now time.Duration, out []Event) []Event {
	if now-s.lastSpeedIncrease < config.SpeedRampInterval {
		return out
	}
	s.lastSpeedIncrease = now
	s.SpeedLevel++
	s.BaseSpeed = min(s.BaseSpeed*config.SpeedRampFactor, config.SpeedRampCap)

	return append(out,
		Event{Type: EventSpeedUp, SpeedLevel: s.SpeedLevel, At: now},
		Event{Type: EventShake, Intensity: speedUpShakeIntensity, Duration: speedUpShakeDuration, At: now},
	)
}

// drainBoost spends boost energy while boosting and stops at empty.
func drainBoost(s *Session, dt time.Duration, now time.Duration, out []Event) []Event {
	if !s.Boosting {
		return out
	}
	s.BoostEnergy = max(s.BoostEnergy-config.BoostDrainPerSecond*dt.Seconds(), 0)
	if s.BoostEnergy > 0 {
		return out
	}
	s.Boosting = false
	return append(out, Event{Type: EventBoostDepleted, At: now})
}

// expireTimer applies the effect of a timer whose deadline passed.
// Game over is handled by the caller since it changes state.
func expireTimer(s *Session, t timer, now time.Duration, out []Event) []Event {
	switch t.kind {
	case timerInvulnerability:
		if !s.IsInvulnerable {
			return out
		}
		s.IsInvulnerable = false
		return append(out, Event{Type: EventInvulnerabilityEnded, At: now})
	case timerSpeedPenalty:
		s.SpeedMultiplier = 1
	case timerComboWindow:
		s.Combo = 0
		return append(out, Event{Type: EventComboReset, At: now})
	case timerComboBanner:
		return append(out, Event{Type: EventComboHidden, At: now})
	}
	return out
}
