// Package loop implements the simulation core: the game state machine, the
// per-tick pipeline (spawn, move, collide, progress) and the session rules.
//
// A Game is driven by a single goroutine. Front ends call Handle and
// SetPointer between ticks and call Tick with the measured frame delta.
package loop

import (
	"io"
	"iter"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

// Game owns the entity pools, the session and the game clock.
type Game struct {
	scene  Scene
	logger *log.Logger

	state   GameState
	session Session
	now     time.Duration // Game clock, advances only while playing
	timers  timerQueue

	ids          object.IDSource
	spawner      *object.Spawner
	spawnEvery   time.Duration
	spawnAcc     time.Duration
	collectibles *object.Pool[*object.Collectible]
	hazards      *object.Pool[*object.Hazard]

	target       physics.Vec2 // Craft steering target in world units
	craftVisible bool

	// Pre-allocated per-tick buffers
	pending  []Event
	events   []Event
	contacts []contact
}

// Option configures a Game.
type Option func(*Game)

// WithRand sets the random source used for spawning.
func WithRand(r object.Rand) Option {
	return func(g *Game) {
		g.spawner = object.NewSpawner(r, &g.ids)
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		g.logger = l
	}
}

// WithSpawnInterval sets how often spawn rolls happen. Zero rolls once per tick.
func WithSpawnInterval(d time.Duration) Option {
	return func(g *Game) {
		g.spawnEvery = d
	}
}

// NewGame creates a game in the loading state.
func NewGame(scene Scene, opts ...Option) *Game {
	g := &Game{
		scene:        scene,
		state:        GameStateLoading,
		spawnEvery:   config.SpawnInterval,
		collectibles: object.NewPool[*object.Collectible](),
		hazards:      object.NewPool[*object.Hazard](),
		craftVisible: true,
		session:      NewSession(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	if g.spawner == nil {
		seed := uint64(time.Now().UnixNano())
		g.spawner = object.NewSpawner(rand.New(rand.NewPCG(seed, seed>>1|1)), &g.ids)
	}
	return g
}

// Tick advances the game by dt, clamped to config.MaxFrameDelta, and returns
// the events produced since the previous tick. The returned slice is only
// valid until the next call.
func (g *Game) Tick(dt time.Duration) []Event {
	dt = min(max(dt, 0), config.MaxFrameDelta)

	g.events = append(g.events[:0], g.pending...)
	g.pending = g.pending[:0]

	switch g.state {
	case GameStateLoading:
		if g.scene.Ready() {
			g.setState(GameStateMenu)
		}
	case GameStatePlaying:
		g.step(dt)
	}

	g.events = append(g.events, g.pending...)
	g.pending = g.pending[:0]
	return g.events
}

// step runs one playing tick: spawn, move/expire, collide, progress, then
// timers and state checks.
func (g *Game) step(dt time.Duration) {
	g.now += dt
	s := &g.session

	if st, ok := g.scene.(Steerer); ok && !s.Dying {
		st.SteerCraft(g.target)
	}
	g.events = drainBoost(s, dt, g.now, g.events)

	if !s.Dying {
		g.spawn(dt)
	}

	dz := forwardStep(s.CurrentSpeed(), dt)
	advancePool(g.collectibles, dz, g.scene)
	advancePool(g.hazards, dz, g.scene)

	if craft, ok := g.scene.CraftPosition(); ok && !s.Dying {
		g.contacts = resolveContacts(craft, g.collectibles, g.hazards, s.IsInvulnerable, g.now, g.contacts[:0])
		for _, c := range g.contacts {
			g.applyContact(c, craft)
		}
	}

	if !s.Dying {
		g.events = rampSpeed(s, g.now, g.events)
	}
	g.runTimers()
	g.updateCraftVisibility()

	g.collectibles.Sweep()
	g.hazards.Sweep()
}

func (g *Game) spawn(dt time.Duration) {
	rolls := 1
	if g.spawnEvery > 0 {
		g.spawnAcc += dt
		rolls = int(g.spawnAcc / g.spawnEvery)
		g.spawnAcc -= time.Duration(rolls) * g.spawnEvery
	}
	for range rolls {
		c, h := g.spawner.Tick(g.session.Level)
		if c != nil {
			g.AddCollectible(c)
		}
		if h != nil {
			g.AddHazard(h)
		}
	}
}

// AddCollectible places a collectible in the field.
func (g *Game) AddCollectible(c *object.Collectible) {
	if g.collectibles.Add(c) {
		g.scene.SpawnVisual(c)
	}
}

// AddHazard places a hazard in the field.
func (g *Game) AddHazard(h *object.Hazard) {
	if g.hazards.Add(h) {
		g.scene.SpawnVisual(h)
	}
}

func (g *Game) applyContact(c contact, craft physics.Vec3) {
	s := &g.session
	switch c.kind {
	case contactPickup:
		e, ok := g.collectibles.RemoveByID(c.id)
		if !ok {
			return
		}
		g.scene.RemoveVisual(e)
		g.events = applyPickup(s, &g.timers, c.id, c.position, c.at, g.events)

	case contactImpact:
		// A hazard that lands after the first impact of the tick stays in
		// flight and passes through harmlessly.
		if s.Dying || s.IsInvulnerable {
			return
		}
		e, ok := g.hazards.RemoveByID(c.id)
		if !ok {
			return
		}
		g.scene.RemoveVisual(e)
		wasDying := s.Dying
		g.events = applyImpact(s, &g.timers, c.id, craft, c.at, g.events)
		if s.Dying && !wasDying {
			g.logger.Debug("Craft destroyed", "score", s.Score, "level", s.Level)
		}
	}
}

func (g *Game) runTimers() {
	for {
		t, ok := g.timers.PopDue(g.now)
		if !ok {
			return
		}
		if t.kind == timerGameOver {
			g.finish()
			continue
		}
		g.events = expireTimer(&g.session, t, g.now, g.events)
	}
}

// finish ends a session whose craft was destroyed.
func (g *Game) finish() {
	s := &g.session
	g.timers.Reset()
	g.setState(GameStateGameOver)
	g.pending = append(g.pending, Event{
		Type:     EventGameOver,
		Score:    s.Score,
		Level:    s.Level,
		MaxCombo: s.MaxCombo,
		At:       g.now,
	})
	g.logger.Info("Game over", "score", s.Score, "level", s.Level, "maxCombo", s.MaxCombo)
}

// updateCraftVisibility blinks the craft while invulnerable and hides it
// once destroyed.
func (g *Game) updateCraftVisibility() {
	s := &g.session
	visible := true
	switch {
	case s.Dying:
		visible = false
	case s.IsInvulnerable:
		since := g.now - (s.InvulnerableUntil - config.InvulnerableDuration)
		visible = (since/config.CraftBlinkInterval)%2 == 0
	}
	if visible != g.craftVisible {
		g.craftVisible = visible
		g.scene.SetCraftVisible(visible)
	}
}

// clearEntities removes every entity and its visual.
func (g *Game) clearEntities() {
	g.collectibles.Clear(func(c *object.Collectible) { g.scene.RemoveVisual(c) })
	g.hazards.Clear(func(h *object.Hazard) { g.scene.RemoveVisual(h) })
}

// SetPointer sets the steering target from a normalized pointer position,
// x and y in [-1, 1] with y up. Ignored outside of play.
func (g *Game) SetPointer(x, y float64) {
	if g.state != GameStatePlaying {
		return
	}
	g.target = physics.Vec2{
		X: physics.Clamp(x*config.CraftRangeX, -config.CraftRangeX, config.CraftRangeX),
		Y: physics.Clamp(y*config.CraftRangeY, -config.CraftRangeY, config.CraftRangeY),
	}
}

// Target returns the craft steering target in world units.
func (g *Game) Target() physics.Vec2 {
	return g.target
}

// State returns the current game state.
func (g *Game) State() GameState {
	return g.state
}

// Session returns a copy of the current session.
func (g *Game) Session() Session {
	return g.session
}

// Now returns the game clock.
func (g *Game) Now() time.Duration {
	return g.now
}

// Collectibles yields the live collectibles.
func (g *Game) Collectibles() iter.Seq[*object.Collectible] {
	return g.collectibles.All()
}

// Hazards yields the live hazards.
func (g *Game) Hazards() iter.Seq[*object.Hazard] {
	return g.hazards.All()
}

// Snapshot is a read-only view of a game for presentation.
type Snapshot struct {
	State            GameState
	Score            int
	Level            int
	Lives            int
	Combo            int
	MaxCombo         int
	SpeedLevel       int
	BoostEnergy      float64
	Boosting         bool
	Invulnerable     bool
	InvulnerableLeft time.Duration // Game time until invulnerability clears
	Dying            bool
	Speed            float64
	Elapsed          time.Duration
	Collectibles     int
	Hazards          int
}

func (g *Game) invulnerableLeft() time.Duration {
	at, ok := g.timers.Pending(timerInvulnerability)
	if !ok || at <= g.now {
		return 0
	}
	return at - g.now
}

// Snapshot captures the current state for presentation.
func (g *Game) Snapshot() Snapshot {
	s := g.session
	return Snapshot{
		State:            g.state,
		Score:            s.Score,
		Level:            s.Level,
		Lives:            s.Lives,
		Combo:            s.Combo,
		MaxCombo:         s.MaxCombo,
		SpeedLevel:       s.SpeedLevel,
		BoostEnergy:      s.BoostEnergy,
		Boosting:         s.Boosting,
		Invulnerable:     s.IsInvulnerable,
		InvulnerableLeft: g.invulnerableLeft(),
		Dying:            s.Dying,
		Speed:            s.CurrentSpeed(),
		Elapsed:          g.now,
		Collectibles:     g.collectibles.Len(),
		Hazards:          g.hazards.Len(),
	}
}
