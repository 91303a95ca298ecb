package loop

import (
	"math"
	"testing"
	"time"

	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

// constRand always returns the same sample. Values near 1 suppress spawning.
type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

const step = 100 * time.Millisecond

func newTestGame(t *testing.T) (*Game, *HeadlessScene) {
	t.Helper()
	scene := NewHeadlessScene()
	g := NewGame(scene, WithRand(constRand(0.99)))

	g.Tick(0)
	if g.State() != GameStateMenu {
		t.Fatalf("state = %v, want menu", g.State())
	}
	if !g.Handle(CommandStart) {
		t.Fatal("start should be accepted from the menu")
	}
	g.Tick(0)
	return g, scene
}

// tickFor advances the game in steps and returns a copy of every event.
func tickFor(g *Game, d time.Duration) []Event {
	var all []Event
	for d > 0 {
		dt := min(d, step)
		all = append(all, g.Tick(dt)...)
		d -= dt
	}
	return all
}

func findEvent(events []Event, typ EventType) (Event, bool) {
	for _, e := range events {
		if e.Type == typ {
			return e, true
		}
	}
	return Event{}, false
}

func countEvents(events []Event, typ EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func craftPos() physics.Vec3 {
	return physics.Vec3{Z: config.CraftDepth}
}

func placeCollectible(g *Game, pos physics.Vec3) *object.Collectible {
	c := object.NewCollectible(g.ids.Next(), object.Body{Position: pos, Scale: 0.01})
	g.AddCollectible(c)
	return c
}

func placeHazard(g *Game, pos physics.Vec3) *object.Hazard {
	h := object.NewHazard(g.ids.Next(), object.Body{Position: pos, Scale: 1})
	g.AddHazard(h)
	return h
}

func TestLoadingWaitsForScene(t *testing.T) {
	scene := NewHeadlessScene()
	scene.SetReady(false)
	g := NewGame(scene, WithRand(constRand(0.99)))

	g.Tick(step)
	if g.State() != GameStateLoading {
		t.Fatalf("state = %v, want loading", g.State())
	}

	scene.SetReady(true)
	events := g.Tick(step)
	if g.State() != GameStateMenu {
		t.Fatalf("state = %v, want menu", g.State())
	}
	e, ok := findEvent(events, EventStateChanged)
	if !ok || e.State != GameStateMenu {
		t.Fatalf("expected state change to menu, got %+v", events)
	}
}

func TestIllegalCommandsAreIgnored(t *testing.T) {
	scene := NewHeadlessScene()
	g := NewGame(scene, WithRand(constRand(0.99)))
	g.Tick(0)

	for _, cmd := range []Command{CommandTogglePause, CommandRestart, CommandBoostOn, CommandBoostOff} {
		if g.Handle(cmd) {
			t.Errorf("%v accepted in menu", cmd)
		}
	}
	if g.State() != GameStateMenu {
		t.Fatalf("state = %v, want menu", g.State())
	}

	g.Handle(CommandStart)
	if g.Handle(CommandStart) {
		t.Error("start accepted while playing")
	}
	if g.Handle(CommandRestart) {
		t.Error("restart accepted while playing")
	}
}

func TestStartResetsSession(t *testing.T) {
	g, _ := newTestGame(t)
	s := g.Session()

	if s.Score != 0 || s.Level != 1 || s.Combo != 0 || s.MaxCombo != 0 {
		t.Errorf("unexpected progression: %+v", s)
	}
	if s.Lives != 4 || s.BoostEnergy != 0 || s.SpeedLevel != 1 {
		t.Errorf("unexpected resources: %+v", s)
	}
	if s.BaseSpeed != config.BaseSpeedFloor || s.SpeedMultiplier != 1 {
		t.Errorf("unexpected speed: base %f, multiplier %f", s.BaseSpeed, s.SpeedMultiplier)
	}
	if s.IsInvulnerable || s.Boosting || s.Dying {
		t.Errorf("unexpected flags: %+v", s)
	}
}

func TestPickupScoresWithCombo(t *testing.T) {
	g, scene := newTestGame(t)

	c := placeCollectible(g, craftPos())
	events := g.Tick(16 * time.Millisecond)

	e, ok := findEvent(events, EventPickup)
	if !ok {
		t.Fatal("expected a pickup")
	}
	if e.EntityID != c.ID() || e.Combo != 1 || e.Points != 10 {
		t.Errorf("first pickup = %+v, want combo 1 for 10 points", e)
	}
	if scene.HasVisual(c.ID()) {
		t.Error("picked up collectible still has a visual")
	}

	tickFor(g, 500*time.Millisecond)
	placeCollectible(g, craftPos())
	events = g.Tick(16 * time.Millisecond)

	e, ok = findEvent(events, EventPickup)
	if !ok {
		t.Fatal("expected a second pickup")
	}
	if e.Combo != 2 || e.Points != 20 {
		t.Errorf("second pickup = %+v, want combo 2 for 20 points", e)
	}

	s := g.Session()
	if s.Score != 30 || s.MaxCombo != 2 || s.BoostEnergy != 20 {
		t.Errorf("session = %+v, want score 30, max combo 2, boost 20", s)
	}
}

func TestComboResetsAfterWindow(t *testing.T) {
	g, _ := newTestGame(t)

	placeCollectible(g, craftPos())
	g.Tick(16 * time.Millisecond)
	placeCollectible(g, craftPos())
	g.Tick(16 * time.Millisecond)

	events := tickFor(g, config.ComboWindow)
	if _, ok := findEvent(events, EventComboReset); !ok {
		t.Fatal("expected the combo to reset")
	}
	if _, ok := findEvent(events, EventComboHidden); !ok {
		t.Fatal("expected the combo banner to hide")
	}
	if got := g.Session().Combo; got != 0 {
		t.Errorf("combo = %d, want 0", got)
	}

	placeCollectible(g, craftPos())
	events = g.Tick(16 * time.Millisecond)
	e, _ := findEvent(events, EventPickup)
	if e.Combo != 1 {
		t.Errorf("combo after reset = %d, want 1", e.Combo)
	}
	if got := g.Session().MaxCombo; got != 2 {
		t.Errorf("max combo = %d, want 2", got)
	}
}

func TestLevelUpOncePerPickup(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		wantLevel int
	}{
		{"below threshold", 100, 1},
		{"crosses threshold", 190, 2},
		{"far past threshold", 5000, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGame(t)
			g.session.Score = tt.score

			placeCollectible(g, craftPos())
			events := g.Tick(16 * time.Millisecond)

			if got := g.Session().Level; got != tt.wantLevel {
				t.Errorf("level = %d, want %d", got, tt.wantLevel)
			}
			want := tt.wantLevel - 1
			if got := countEvents(events, EventLevelUp); got != want {
				t.Errorf("level-up events = %d, want %d", got, want)
			}
		})
	}
}

func TestLevelUpRaisesBaseSpeedWithCap(t *testing.T) {
	g, _ := newTestGame(t)
	g.session.Score = 190

	placeCollectible(g, craftPos())
	g.Tick(16 * time.Millisecond)
	if got := g.Session().BaseSpeed; math.Abs(got-0.165) > 1e-9 {
		t.Errorf("base speed = %f, want 0.165", got)
	}

	g.session.BaseSpeed = 0.49
	g.session.Score = g.session.Level*config.LevelScoreStep - 10
	placeCollectible(g, craftPos())
	g.Tick(16 * time.Millisecond)
	if got := g.Session().BaseSpeed; got != config.LevelSpeedCap {
		t.Errorf("base speed = %f, want cap %f", got, config.LevelSpeedCap)
	}
}

func TestImpactGrantsInvulnerability(t *testing.T) {
	g, scene := newTestGame(t)

	h := placeHazard(g, craftPos())
	events := g.Tick(16 * time.Millisecond)

	e, ok := findEvent(events, EventImpact)
	if !ok {
		t.Fatal("expected an impact")
	}
	if e.EntityID != h.ID() || e.Lives != 3 {
		t.Errorf("impact = %+v, want lives 3", e)
	}
	if scene.HasVisual(h.ID()) {
		t.Error("hazard visual should be removed on impact")
	}

	s := g.Session()
	if !s.IsInvulnerable || s.SpeedMultiplier != config.SpeedPenaltyFactor {
		t.Fatalf("session = %+v, want invulnerable with speed penalty", s)
	}

	// A second hazard during invulnerability costs nothing.
	placeHazard(g, craftPos())
	events = g.Tick(16 * time.Millisecond)
	if _, ok := findEvent(events, EventImpact); ok {
		t.Error("impact registered while invulnerable")
	}

	events = tickFor(g, config.InvulnerableDuration)
	if _, ok := findEvent(events, EventInvulnerabilityEnded); !ok {
		t.Fatal("expected invulnerability to end")
	}
	if got := g.Session().Lives; got != 3 {
		t.Errorf("lives = %d, want 3", got)
	}

	tickFor(g, config.SpeedPenaltyDuration)
	if got := g.Session().SpeedMultiplier; got != 1 {
		t.Errorf("speed multiplier = %f, want 1", got)
	}
}

func TestCraftBlinksWhileInvulnerable(t *testing.T) {
	g, scene := newTestGame(t)

	placeHazard(g, craftPos())
	g.Tick(16 * time.Millisecond)
	if !scene.Craft.Visible {
		t.Fatal("craft should be visible on the impact tick")
	}
	g.Tick(config.CraftBlinkInterval)
	if scene.Craft.Visible {
		t.Fatal("craft should blink off")
	}
	g.Tick(config.CraftBlinkInterval)
	if !scene.Craft.Visible {
		t.Fatal("craft should blink back on")
	}

	tickFor(g, config.InvulnerableDuration)
	if !scene.Craft.Visible {
		t.Fatal("craft should be visible once invulnerability ends")
	}
}

func TestFinalImpactEndsGameAfterDelay(t *testing.T) {
	g, scene := newTestGame(t)
	g.session.Lives = 1
	g.session.Score = 120
	g.session.MaxCombo = 3

	placeHazard(g, craftPos())
	events := g.Tick(16 * time.Millisecond)

	if _, ok := findEvent(events, EventExplosion); !ok {
		t.Fatal("expected an explosion")
	}
	s := g.Session()
	if s.Lives != 0 || !s.Dying {
		t.Fatalf("session = %+v, want dying with 0 lives", s)
	}
	if scene.Craft.Visible {
		t.Error("craft should be hidden once destroyed")
	}
	if g.State() != GameStatePlaying {
		t.Fatalf("state = %v, want playing during the death delay", g.State())
	}

	// Hazards reaching the destroyed craft are ignored.
	placeHazard(g, craftPos())
	events = tickFor(g, config.GameOverDelay-step)
	if _, ok := findEvent(events, EventImpact); ok {
		t.Error("impact registered while dying")
	}
	if g.State() != GameStatePlaying {
		t.Fatalf("state = %v, want playing before the delay elapses", g.State())
	}

	events = g.Tick(step)
	if g.State() != GameStateGameOver {
		t.Fatalf("state = %v, want game over", g.State())
	}
	e, ok := findEvent(events, EventGameOver)
	if !ok {
		t.Fatal("expected a game over event")
	}
	if e.Score != 120 || e.Level != 1 || e.MaxCombo != 3 {
		t.Errorf("results = %+v, want score 120, level 1, max combo 3", e)
	}
}

func TestRestartClearsField(t *testing.T) {
	g, scene := newTestGame(t)
	g.session.Lives = 1

	placeHazard(g, craftPos())
	placeCollectible(g, physics.Vec3{X: 100, Z: -50})
	tickFor(g, config.GameOverDelay+step)
	if g.State() != GameStateGameOver {
		t.Fatalf("state = %v, want game over", g.State())
	}

	if !g.Handle(CommandRestart) {
		t.Fatal("restart should be accepted at game over")
	}
	if g.State() != GameStatePlaying {
		t.Fatalf("state = %v, want playing", g.State())
	}
	if n := g.Snapshot().Collectibles + g.Snapshot().Hazards; n != 0 {
		t.Errorf("%d entities left after restart", n)
	}
	if scene.Visuals() != 0 {
		t.Errorf("%d visuals left after restart", scene.Visuals())
	}
	if s := g.Session(); s.Lives != config.InitialLives || s.Score != 0 || s.Dying {
		t.Errorf("session not reset: %+v", s)
	}
	if !scene.Craft.Visible {
		t.Error("craft should be visible after restart")
	}
}

func TestPauseFreezesClockAndTimers(t *testing.T) {
	g, _ := newTestGame(t)

	placeCollectible(g, craftPos())
	g.Tick(16 * time.Millisecond)
	before := g.Now()

	if !g.Handle(CommandTogglePause) {
		t.Fatal("pause should be accepted while playing")
	}
	events := tickFor(g, 10*time.Second)
	if g.Now() != before {
		t.Errorf("clock moved while paused: %v -> %v", before, g.Now())
	}
	if _, ok := findEvent(events, EventComboReset); ok {
		t.Error("combo timer fired while paused")
	}
	if got := g.Session().Combo; got != 1 {
		t.Errorf("combo = %d, want 1", got)
	}

	g.Handle(CommandTogglePause)
	events = tickFor(g, config.ComboWindow)
	if _, ok := findEvent(events, EventComboReset); !ok {
		t.Error("combo timer should fire after resuming")
	}
}

func TestFrameDeltaIsClamped(t *testing.T) {
	g, _ := newTestGame(t)
	before := g.Now()

	g.Tick(5 * time.Second)
	if got := g.Now() - before; got != config.MaxFrameDelta {
		t.Errorf("clock advanced %v, want %v", got, config.MaxFrameDelta)
	}
}

func TestSpeedRamp(t *testing.T) {
	g, _ := newTestGame(t)

	events := tickFor(g, config.SpeedRampInterval)
	e, ok := findEvent(events, EventSpeedUp)
	if !ok {
		t.Fatal("expected a speed ramp")
	}
	if e.SpeedLevel != 2 {
		t.Errorf("speed level = %d, want 2", e.SpeedLevel)
	}
	if got := g.Session().BaseSpeed; math.Abs(got-0.18) > 1e-9 {
		t.Errorf("base speed = %f, want 0.18", got)
	}

	g.session.BaseSpeed = 0.75
	tickFor(g, config.SpeedRampInterval)
	if got := g.Session().BaseSpeed; got != config.SpeedRampCap {
		t.Errorf("base speed = %f, want cap %f", got, config.SpeedRampCap)
	}
}

func TestBoostDrainsAndDepletes(t *testing.T) {
	g, _ := newTestGame(t)

	if g.Handle(CommandBoostOn) {
		t.Fatal("boost accepted with no energy")
	}

	g.session.BoostEnergy = 1
	if !g.Handle(CommandBoostOn) {
		t.Fatal("boost should be accepted with energy")
	}
	base := g.Session().BaseSpeed
	if got := g.Snapshot().Speed; math.Abs(got-base*config.BoostSpeedFactor) > 1e-9 {
		t.Errorf("boosted speed = %f, want %f", got, base*config.BoostSpeedFactor)
	}

	events := g.Tick(step)
	if _, ok := findEvent(events, EventBoostDepleted); !ok {
		t.Fatal("expected boost to deplete")
	}
	s := g.Session()
	if s.Boosting || s.BoostEnergy != 0 {
		t.Errorf("session = %+v, want boost off at 0 energy", s)
	}
}

func TestBoostEnergyIsCapped(t *testing.T) {
	g, _ := newTestGame(t)
	g.session.BoostEnergy = config.MaxBoostEnergy - 5

	placeCollectible(g, craftPos())
	g.Tick(16 * time.Millisecond)
	if got := g.Session().BoostEnergy; got != config.MaxBoostEnergy {
		t.Errorf("boost energy = %f, want %f", got, config.MaxBoostEnergy)
	}
}

func TestEntitiesAdvanceByCurrentSpeed(t *testing.T) {
	g, _ := newTestGame(t)

	far := physics.Vec3{X: 100, Z: -50}
	c := placeCollectible(g, far)
	h := placeHazard(g, physics.Vec3{X: -100, Z: -50})

	var want float64
	for range 10 {
		want += forwardStep(g.Session().CurrentSpeed(), step)
		g.Tick(step)
	}

	if got := c.Position.Z - far.Z; math.Abs(got-want) > 1e-9 {
		t.Errorf("collectible moved %f, want %f", got, want)
	}
	if got := h.Position.Z - far.Z; math.Abs(got-want) > 1e-9 {
		t.Errorf("hazard moved %f, want %f", got, want)
	}
}

func TestEntitiesExpirePastDepth(t *testing.T) {
	g, scene := newTestGame(t)

	c := placeCollectible(g, physics.Vec3{X: 100, Z: config.ExpiryDepth - 0.01})
	events := g.Tick(step)

	if _, ok := findEvent(events, EventPickup); ok {
		t.Error("expired collectible should not score")
	}
	if scene.HasVisual(c.ID()) {
		t.Error("expired collectible still has a visual")
	}
	if n := g.Snapshot().Collectibles; n != 0 {
		t.Errorf("%d collectibles left, want 0", n)
	}
	if got := g.Session().Score; got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
}

func TestCollectiblesAreAttracted(t *testing.T) {
	g, _ := newTestGame(t)

	c := placeCollectible(g, physics.Vec3{X: 10, Z: config.CraftDepth})
	g.Tick(16 * time.Millisecond)

	if c.Position.X >= 10 {
		t.Errorf("collectible x = %f, want pulled toward the craft", c.Position.X)
	}
	if c.Collected {
		t.Error("collectible outside the pickup radius was collected")
	}
}

func TestSetPointer(t *testing.T) {
	scene := NewHeadlessScene()
	g := NewGame(scene, WithRand(constRand(0.99)))
	g.Tick(0)

	g.SetPointer(1, 1)
	if g.Target() != (physics.Vec2{}) {
		t.Errorf("pointer accepted outside of play: %v", g.Target())
	}

	g.Handle(CommandStart)
	g.SetPointer(2, -0.5)
	want := physics.Vec2{X: config.CraftRangeX, Y: -6}
	if g.Target() != want {
		t.Errorf("target = %v, want %v", g.Target(), want)
	}

	g.Tick(step)
	if scene.Craft.Position.X <= 0 || scene.Craft.Position.Y >= 0 {
		t.Errorf("craft = %v, want steered toward %v", scene.Craft.Position, want)
	}
}

func TestSpawnerFillsField(t *testing.T) {
	scene := NewHeadlessScene()
	g := NewGame(scene, WithRand(constRand(0)))
	g.Tick(0)
	g.Handle(CommandStart)

	for range 3 {
		g.Tick(config.SpawnInterval)
	}

	snap := g.Snapshot()
	if snap.Collectibles != 3 || snap.Hazards != 3 {
		t.Errorf("spawned %d collectibles and %d hazards, want 3 each", snap.Collectibles, snap.Hazards)
	}
	if scene.Visuals() != 6 {
		t.Errorf("scene shows %d visuals, want 6", scene.Visuals())
	}
}

func TestScoreIsSumOfPickups(t *testing.T) {
	g, _ := newTestGame(t)

	total := 0
	for i := range 25 {
		placeCollectible(g, craftPos())
		events := g.Tick(16 * time.Millisecond)
		for _, e := range events {
			if e.Type == EventPickup {
				total += e.Points
			}
		}
		if i%7 == 0 {
			tickFor(g, config.ComboWindow)
		}
	}

	s := g.Session()
	if s.Score != total {
		t.Errorf("score = %d, want sum of pickups %d", s.Score, total)
	}
	if s.BaseSpeed > config.SpeedRampCap {
		t.Errorf("base speed = %f, above cap", s.BaseSpeed)
	}
}

func TestThreeQuickPickups(t *testing.T) {
	g, _ := newTestGame(t)

	var combos []int
	for range 3 {
		placeCollectible(g, craftPos())
		events := g.Tick(16 * time.Millisecond)
		e, ok := findEvent(events, EventPickup)
		if !ok {
			t.Fatal("expected a pickup")
		}
		combos = append(combos, e.Combo)
		tickFor(g, 900*time.Millisecond)
	}

	if combos[0] != 1 || combos[1] != 2 || combos[2] != 3 {
		t.Fatalf("combos = %v, want [1 2 3]", combos)
	}
	s := g.Session()
	if s.Score != 60 || s.MaxCombo != 3 {
		t.Errorf("score = %d, max combo = %d, want 60 and 3", s.Score, s.MaxCombo)
	}
}

func TestSimultaneousPickupsAllApply(t *testing.T) {
	g, scene := newTestGame(t)

	placeCollectible(g, craftPos())
	placeCollectible(g, craftPos())
	events := g.Tick(0)

	if n := countEvents(events, EventPickup); n != 2 {
		t.Fatalf("pickups = %d, want 2", n)
	}
	s := g.Session()
	if s.Score != 30 || s.Combo != 2 || s.MaxCombo != 2 {
		t.Errorf("session = %+v, want score 30 at combo 2", s)
	}
	if n := scene.Visuals(); n != 0 {
		t.Errorf("visuals = %d, want 0", n)
	}
}

func TestSimultaneousHazardsCostOneLife(t *testing.T) {
	g, scene := newTestGame(t)

	placeHazard(g, craftPos())
	placeHazard(g, craftPos())
	events := g.Tick(0)

	if n := countEvents(events, EventImpact); n != 1 {
		t.Fatalf("impacts = %d, want 1", n)
	}
	if got := g.Session().Lives; got != 3 {
		t.Errorf("lives = %d, want 3", got)
	}

	live := 0
	for h := range g.Hazards() {
		live++
		if !scene.HasVisual(h.ID()) {
			t.Errorf("hazard %d lost its visual", h.ID())
		}
	}
	if live != 1 {
		t.Errorf("hazards in flight = %d, want 1", live)
	}
}

func TestSnapshotReportsInvulnerabilityLeft(t *testing.T) {
	g, _ := newTestGame(t)

	if got := g.Snapshot().InvulnerableLeft; got != 0 {
		t.Fatalf("invulnerable left = %v before any impact", got)
	}

	placeHazard(g, craftPos())
	g.Tick(0)
	if got := g.Snapshot().InvulnerableLeft; got != config.InvulnerableDuration {
		t.Fatalf("invulnerable left = %v, want %v", got, config.InvulnerableDuration)
	}

	g.Tick(step)
	if got, want := g.Snapshot().InvulnerableLeft, config.InvulnerableDuration-step; got != want {
		t.Errorf("invulnerable left = %v, want %v", got, want)
	}

	tickFor(g, config.InvulnerableDuration)
	if got := g.Snapshot().InvulnerableLeft; got != 0 {
		t.Errorf("invulnerable left = %v after expiry", got)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		want Command
		ok   bool
	}{
		{"start", CommandStart, true},
		{"pause", CommandTogglePause, true},
		{"boost_on", CommandBoostOn, true},
		{"boost_off", CommandBoostOff, true},
		{"restart", CommandRestart, true},
		{"warp", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCommand(tt.name)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseCommand(%q) = %v, %v, want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
		if ok && got.String() != tt.name {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.name)
		}
	}
}
