package loop

import (
	"time"

	"github.com/tomz197/crystals/internal/loop/config"
)

// GameState is the lifecycle phase of a game. Only the Game writes it.
type GameState int

const (
	GameStateLoading  GameState = iota // Waiting for the scene to report ready
	GameStateMenu                      // Title screen
	GameStatePlaying                   // Active gameplay
	GameStatePaused                    // Gameplay frozen, game clock stopped
	GameStateGameOver                  // Final results shown until restart
)

func (s GameState) String() string {
	switch s {
	case GameStateLoading:
		return "loading"
	case GameStateMenu:
		return "menu"
	case GameStatePlaying:
		return "playing"
	case GameStatePaused:
		return "paused"
	case GameStateGameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

// Session holds per-run progression state. It is created by a start or
// restart command, mutated while playing and frozen at game over.
type Session struct {
	Score    int
	Level    int
	Combo    int
	MaxCombo int
	Lives    int

	BoostEnergy float64
	Boosting    bool

	SpeedLevel      int
	BaseSpeed       float64 // Non-decreasing within a session, capped
	SpeedMultiplier float64 // Temporary hit penalty, reset by timer

	IsInvulnerable    bool
	InvulnerableUntil time.Duration // Game-clock deadline
	Dying             bool          // Lives reached 0, game over pending

	lastPickup        time.Duration
	hasPickup         bool
	lastSpeedIncrease time.Duration
}

// NewSession returns the initial values for a run started at game time now.
func NewSession(now time.Duration) Session {
	return Session{
		Level:             config.InitialLevel,
		Lives:             config.InitialLives,
		SpeedLevel:        config.InitialSpeedLvl,
		BaseSpeed:         config.BaseSpeedFloor,
		SpeedMultiplier:   1,
		lastSpeedIncrease: now,
	}
}

// CurrentSpeed returns the forward speed derived from base speed, the hit
// penalty and boost.
func (s Session) CurrentSpeed() float64 {
	speed := s.BaseSpeed * s.SpeedMultiplier
	if s.Boosting {
		speed *= config.BoostSpeedFactor
	}
	return speed
}
