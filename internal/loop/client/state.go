package client

import (
	"time"

	"github.com/tomz197/crystals/internal/loop"
	"github.com/tomz197/crystals/internal/physics"
)

// bannerKind identifies the transient center-top message.
type bannerKind int

const (
	bannerNone bannerKind = iota
	bannerLevel
	bannerSpeed
	bannerBoostEmpty
)

// ClientState holds the presentation state around one game: what is on
// screen, input edges and connection lifecycle.
type ClientState struct {
	Running bool

	prevGameState loop.GameState
	lastInput     time.Time
	isInactive    bool
	wasInactive   bool

	shutdown      bool
	wasShutdown   bool
	shutdownTimer float64 // Seconds until auto-disconnect

	boostHeld bool
	pointer   physics.Vec2 // In [-1, 1] on both axes

	banner      bannerKind
	bannerValue int
	bannerLeft  time.Duration

	combo     int // Shown while > 1
	comboSeen bool

	final     loop.Event // Last game-over summary
	lastScore int        // Last score reported to the hub
}

// NewClientState creates a running state with the inactivity clock started at now.
func NewClientState(now time.Time) *ClientState {
	return &ClientState{
		Running:       true,
		prevGameState: loop.GameStateLoading,
		lastInput:     now,
	}
}

func (s *ClientState) showBanner(kind bannerKind, value int, d time.Duration) {
	s.banner = kind
	s.bannerValue = value
	s.bannerLeft = d
}

// tick counts down banners and the shutdown notice.
func (s *ClientState) tick(dt time.Duration) {
	if s.bannerLeft > 0 {
		s.bannerLeft -= dt
		if s.bannerLeft <= 0 {
			s.bannerLeft = 0
			s.banner = bannerNone
		}
	}
	if s.shutdown {
		s.shutdownTimer -= dt.Seconds()
		if s.shutdownTimer <= 0 {
			s.Running = false
		}
	}
}
