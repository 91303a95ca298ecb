package loop

import "github.com/tomz197/crystals/internal/physics"

// Command is a discrete player intent delivered to Game.Handle.
type Command int

const (
	CommandStart       Command = iota // Leave the menu and begin a session
	CommandTogglePause                // Pause or resume
	CommandBoostOn                    // Start boosting
	CommandBoostOff                   // Stop boosting
	CommandRestart                    // Start over from the game over screen
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandTogglePause:
		return "pause"
	case CommandBoostOn:
		return "boost_on"
	case CommandBoostOff:
		return "boost_off"
	case CommandRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// ParseCommand maps a wire name to a command.
func ParseCommand(name string) (Command, bool) {
	switch name {
	case "start":
		return CommandStart, true
	case "pause":
		return CommandTogglePause, true
	case "boost_on":
		return CommandBoostOn, true
	case "boost_off":
		return CommandBoostOff, true
	case "restart":
		return CommandRestart, true
	default:
		return 0, false
	}
}

// Handle applies a command. Commands that are not legal in the current
// state are ignored and Handle returns false. Resulting events are
// delivered with the next Tick.
func (g *Game) Handle(cmd Command) bool {
	switch cmd {
	case CommandStart:
		if g.state != GameStateMenu {
			return g.ignore(cmd)
		}
		g.startSession()

	case CommandRestart:
		if g.state != GameStateGameOver {
			return g.ignore(cmd)
		}
		g.clearEntities()
		g.startSession()

	case CommandTogglePause:
		switch g.state {
		case GameStatePlaying:
			g.setState(GameStatePaused)
		case GameStatePaused:
			g.setState(GameStatePlaying)
		default:
			return g.ignore(cmd)
		}

	case CommandBoostOn:
		s := &g.session
		if g.state != GameStatePlaying || s.Dying || s.BoostEnergy <= 0 {
			return g.ignore(cmd)
		}
		s.Boosting = true

	case CommandBoostOff:
		if !g.session.Boosting {
			return g.ignore(cmd)
		}
		g.session.Boosting = false

	default:
		return g.ignore(cmd)
	}
	return true
}

func (g *Game) ignore(cmd Command) bool {
	g.logger.Debug("Ignoring command", "command", cmd, "state", g.state)
	return false
}

// startSession resets all session state and enters play.
func (g *Game) startSession() {
	g.session = NewSession(g.now)
	g.timers.Reset()
	g.spawnAcc = 0
	g.target = physics.Vec2{}
	g.craftVisible = true
	g.scene.SetCraftVisible(true)
	g.setState(GameStatePlaying)
}

func (g *Game) setState(s GameState) {
	if g.state == s {
		return
	}
	g.logger.Debug("State changed", "from", g.state, "to", s)
	g.state = s
	g.pending = append(g.pending, Event{Type: EventStateChanged, State: s, At: g.now})
}
