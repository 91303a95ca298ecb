package client

import (
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/tomz197/crystals/internal/draw"
	"github.com/tomz197/crystals/internal/loop"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

const (
	crystalRadius = 1.2  // World units
	farDepth      = 90.0 // Hazards farther than this from the camera draw dim
)

// visual is the drawable state attached to a live entity.
type visual struct {
	entity  object.Entity
	outline []float64 // Hazard vertex radii as fractions of the hit radius
	tint    draw.Color
}

// particlePool reuses particles across explosions.
var particlePool = sync.Pool{
	New: func() any {
		return &particle{}
	},
}

// particle is a short-lived spark in world space.
type particle struct {
	pos         physics.Vec3
	vel         physics.Vec3
	lifetime    float64 // Seconds remaining
	maxLifetime float64
	drag        float64 // Velocity decay per 1/60s (1.0 = no drag)
	color       draw.Color
}

// Scene is the terminal renderer for one game. It owns the craft and a
// drawable for every live entity, plus particles and screen shake.
type Scene struct {
	loop.Craft

	visuals   map[object.ID]*visual
	order     []*visual // Reused depth-sort buffer
	particles []*particle
	rng       *rand.Rand
	ready     bool

	Thrust bool // Draw the engine flame

	shakeIntensity float64
	shakeTotal     time.Duration
	shakeLeft      time.Duration
	shakeOffset    draw.Point
}

// Compile-time checks that Scene can drive a game.
var (
	_ loop.Scene   = (*Scene)(nil)
	_ loop.Steerer = (*Scene)(nil)
)

// NewScene creates a scene. It reports ready once SetReady is called.
func NewScene(seed uint64) *Scene {
	return &Scene{
		Craft:   loop.NewCraft(),
		visuals: make(map[object.ID]*visual),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetReady marks the terminal as sized and drawable.
func (s *Scene) SetReady(ready bool) { s.ready = ready }

func (s *Scene) Ready() bool { return s.ready }

func (s *Scene) CraftPosition() (physics.Vec3, bool) {
	return s.Craft.Position, true
}

func (s *Scene) SteerCraft(target physics.Vec2) {
	s.Craft.Steer(target)
}

func (s *Scene) SetCraftVisible(visible bool) {
	s.Craft.Visible = visible
}

// SpawnVisual creates the drawable for a new entity. Hazards get an
// irregular outline of 8-12 vertices, each within 30% of the hit radius.
func (s *Scene) SpawnVisual(e object.Entity) {
	v := &visual{entity: e}
	switch e.Kind() {
	case object.KindHazard:
		v.outline = make([]float64, 8+s.rng.IntN(5))
		for i := range v.outline {
			v.outline[i] = 0.7 + s.rng.Float64()*0.6
		}
		v.tint = draw.ColorWhite
	case object.KindCollectible:
		v.tint = draw.ColorCyan
		if e.ID()%3 == 0 {
			v.tint = draw.ColorMagenta
		}
	}
	s.visuals[e.ID()] = v
}

func (s *Scene) RemoveVisual(e object.Entity) {
	delete(s.visuals, e.ID())
}

// Visuals returns the number of live drawables.
func (s *Scene) Visuals() int {
	return len(s.visuals)
}

// Burst spawns count sparks at pos flying outward at about speed units/s.
func (s *Scene) Burst(pos physics.Vec3, count int, speed, lifetime float64, color draw.Color) {
	for range count {
		// Random direction on a sphere
		theta := s.rng.Float64() * 2 * math.Pi
		z := s.rng.Float64()*2 - 1
		r := math.Sqrt(1 - z*z)
		// Random speed variation (50% to 150%)
		spd := speed * (0.5 + s.rng.Float64())
		// Random lifetime variation (50% to 100%)
		life := lifetime * (0.5 + s.rng.Float64()*0.5)

		p := particlePool.Get().(*particle)
		*p = particle{
			pos:         pos,
			vel:         physics.Vec3{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}.Scale(spd),
			lifetime:    life,
			maxLifetime: life,
			drag:        0.95,
			color:       color,
		}
		s.particles = append(s.particles, p)
	}
}

// Particles returns the number of live particles.
func (s *Scene) Particles() int {
	return len(s.particles)
}

// Shake starts a screen shake, replacing any shake in progress.
func (s *Scene) Shake(intensity float64, d time.Duration) {
	s.shakeIntensity = intensity
	s.shakeTotal = d
	s.shakeLeft = d
}

// ShakeOffset returns the current camera offset in logical units.
func (s *Scene) ShakeOffset() draw.Point {
	return s.shakeOffset
}

// Update advances particles and the shake by a wall-clock delta.
func (s *Scene) Update(dt time.Duration) {
	sec := dt.Seconds()

	kept := s.particles[:0]
	for _, p := range s.particles {
		p.lifetime -= sec
		if p.lifetime <= 0 {
			particlePool.Put(p)
			continue
		}
		p.vel = p.vel.Scale(math.Pow(p.drag, sec*60)) // Normalized to ~60fps
		p.pos = p.pos.Add(p.vel.Scale(sec))
		kept = append(kept, p)
	}
	clear(s.particles[len(kept):])
	s.particles = kept

	s.shakeOffset = draw.Point{}
	if s.shakeLeft > 0 {
		s.shakeLeft = max(s.shakeLeft-dt, 0)
		amp := s.shakeIntensity * float64(s.shakeLeft) / float64(s.shakeTotal)
		s.shakeOffset = draw.Point{
			X: (s.rng.Float64()*2 - 1) * amp,
			Y: (s.rng.Float64()*2 - 1) * amp,
		}
	}
}

// Reset drops every drawable and effect.
func (s *Scene) Reset() {
	clear(s.visuals)
	for _, p := range s.particles {
		particlePool.Put(p)
	}
	clear(s.particles)
	s.particles = s.particles[:0]
	s.shakeLeft = 0
	s.shakeOffset = draw.Point{}
}

// Draw renders the field far to near, placing the craft at its depth.
func (s *Scene) Draw(canvas *draw.Canvas, cam draw.Camera) {
	cam.Offset = s.shakeOffset

	s.order = s.order[:0]
	for _, v := range s.visuals {
		s.order = append(s.order, v)
	}
	slices.SortFunc(s.order, func(a, b *visual) int {
		za, zb := a.entity.Transform().Position.Z, b.entity.Transform().Position.Z
		switch {
		case za < zb:
			return -1
		case za > zb:
			return 1
		}
		return int(a.entity.ID()) - int(b.entity.ID())
	})

	craftDrawn := false
	for _, v := range s.order {
		if !craftDrawn && v.entity.Transform().Position.Z > s.Craft.Position.Z {
			s.drawCraft(canvas, cam)
			craftDrawn = true
		}
		s.drawVisual(canvas, cam, v)
	}
	if !craftDrawn {
		s.drawCraft(canvas, cam)
	}

	for _, p := range s.particles {
		// Skip faded particles (< 25% lifetime)
		if p.lifetime/p.maxLifetime < 0.25 {
			continue
		}
		pt, _, ok := cam.Project(p.pos)
		if !ok {
			continue
		}
		canvas.SetColor(p.color)
		canvas.SetFloat(pt.X, pt.Y)
	}
}

func (s *Scene) drawVisual(canvas *draw.Canvas, cam draw.Camera, v *visual) {
	body := v.entity.Transform()
	center, scale, ok := cam.Project(body.Position)
	if !ok {
		return
	}

	switch e := v.entity.(type) {
	case *object.Hazard:
		radius := e.Radius() * scale
		color := v.tint
		if cam.Position.Z-body.Position.Z > farDepth {
			color = draw.ColorGray
		}
		canvas.SetColor(color)

		n := len(v.outline)
		points := canvas.BorrowPoints(n)
		for i, dist := range v.outline {
			angle := body.Rotation.Z + float64(i)*2*math.Pi/float64(n)
			points[i] = draw.Point{
				X: center.X + math.Cos(angle)*dist*radius,
				Y: center.Y + math.Sin(angle)*dist*radius,
			}
		}
		canvas.DrawPolygon(points, false)

	case *object.Collectible:
		if e.Collected {
			return
		}
		// Diamond spun around the vertical axis
		r := crystalRadius * scale
		w := r * (0.35 + 0.65*math.Abs(math.Cos(body.Rotation.Y)))
		canvas.SetColor(v.tint)
		points := canvas.BorrowPoints(4)
		points[0] = draw.Point{X: center.X, Y: center.Y - r*1.4}
		points[1] = draw.Point{X: center.X + w, Y: center.Y}
		points[2] = draw.Point{X: center.X, Y: center.Y + r*1.4}
		points[3] = draw.Point{X: center.X - w, Y: center.Y}
		canvas.DrawPolygon(points, true)
	}
}

// craftShape is the ship seen from behind, in world units around its center.
var craftShape = [...]physics.Vec2{
	{X: -2.0, Y: -0.2},
	{X: 0, Y: 0.7},
	{X: 2.0, Y: -0.2},
	{X: 0, Y: -0.5},
}

func (s *Scene) drawCraft(canvas *draw.Canvas, cam draw.Camera) {
	if !s.Craft.Visible {
		return
	}
	center, scale, ok := cam.Project(s.Craft.Position)
	if !ok {
		return
	}

	sin, cos := math.Sincos(s.Craft.Rotation.Z)
	points := canvas.BorrowPoints(len(craftShape))
	for i, v := range craftShape {
		x := v.X*cos - v.Y*sin
		y := v.X*sin + v.Y*cos
		points[i] = draw.Point{X: center.X + x*scale, Y: center.Y - y*scale}
	}
	canvas.SetColor(draw.ColorWhite)
	canvas.DrawPolygon(points, true)

	if s.Thrust {
		canvas.SetColor(draw.ColorYellow)
		canvas.FillCircle(draw.Point{X: center.X, Y: center.Y + 0.6*scale}, 0.4*scale)
	}
}
