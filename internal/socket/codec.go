package socket

import (
	"github.com/tomz197/crystals/internal/loop"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

// clientMessage is a command or pointer update from the browser.
type clientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

// frameMessage is the state pushed to the browser every frame.
type frameMessage struct {
	Type     string         `json:"type"`
	Snapshot snapshotJSON   `json:"snapshot"`
	Events   []eventJSON    `json:"events"`
	Craft    craftJSON      `json:"craft"`
	Entities []entityJSON   `json:"entities"`
	Players  int            `json:"players"`
	Top      []topScoreJSON `json:"top,omitempty"`
}

type shutdownMessage struct {
	Type string `json:"type"`
}

type snapshotJSON struct {
	State          string  `json:"state"`
	Score          int     `json:"score"`
	Level          int     `json:"level"`
	Lives          int     `json:"lives"`
	Combo          int     `json:"combo"`
	MaxCombo       int     `json:"maxCombo"`
	SpeedLevel     int     `json:"speedLevel"`
	BoostEnergy    float64 `json:"boostEnergy"`
	Boosting       bool    `json:"boosting"`
	Invulnerable   bool    `json:"invulnerable"`
	InvulnerableMs int64   `json:"invulnerableMs,omitempty"`
	Dying          bool    `json:"dying"`
	Speed          float64 `json:"speed"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

type eventJSON struct {
	Type       string  `json:"type"`
	State      string  `json:"state,omitempty"`
	Points     int     `json:"points,omitempty"`
	Combo      int     `json:"combo,omitempty"`
	Score      int     `json:"score,omitempty"`
	Level      int     `json:"level,omitempty"`
	SpeedLevel int     `json:"speedLevel,omitempty"`
	MaxCombo   int     `json:"maxCombo,omitempty"`
	Lives      *int    `json:"lives,omitempty"` // 0 is meaningful
	ID         uint64  `json:"id,omitempty"`
	Position   *vec3   `json:"position,omitempty"`
	Intensity  float64 `json:"intensity,omitempty"`
	DurationMs int64   `json:"durationMs,omitempty"`
}

type vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type craftJSON struct {
	Position vec3 `json:"position"`
	Rotation vec3 `json:"rotation"`
	Visible  bool `json:"visible"`
}

type entityJSON struct {
	ID       uint64  `json:"id"`
	Kind     string  `json:"kind"`
	Position vec3    `json:"position"`
	Rotation vec3    `json:"rotation"`
	Scale    float64 `json:"scale"`
}

type topScoreJSON struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Level int    `json:"level"`
}

func toVec3(v physics.Vec3) vec3 {
	return vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func encodeSnapshot(s loop.Snapshot) snapshotJSON {
	return snapshotJSON{
		State:          s.State.String(),
		Score:          s.Score,
		Level:          s.Level,
		Lives:          s.Lives,
		Combo:          s.Combo,
		MaxCombo:       s.MaxCombo,
		SpeedLevel:     s.SpeedLevel,
		BoostEnergy:    s.BoostEnergy,
		Boosting:       s.Boosting,
		Invulnerable:   s.Invulnerable,
		InvulnerableMs: s.InvulnerableLeft.Milliseconds(),
		Dying:          s.Dying,
		Speed:          s.Speed,
		ElapsedMs:      s.Elapsed.Milliseconds(),
	}
}

func encodeEvent(e loop.Event) eventJSON {
	out := eventJSON{Type: e.Type.String()}
	switch e.Type {
	case loop.EventStateChanged:
		out.State = e.State.String()
	case loop.EventPickup:
		out.Points = e.Points
		out.Combo = e.Combo
		out.Score = e.Score
		out.ID = uint64(e.EntityID)
		out.Position = ptr(toVec3(e.Position))
	case loop.EventLevelUp:
		out.Level = e.Level
		out.Score = e.Score
	case loop.EventImpact:
		out.Lives = ptr(e.Lives)
		out.ID = uint64(e.EntityID)
		out.Position = ptr(toVec3(e.Position))
	case loop.EventExplosion:
		out.Position = ptr(toVec3(e.Position))
	case loop.EventSpeedUp:
		out.SpeedLevel = e.SpeedLevel
	case loop.EventShake:
		out.Intensity = e.Intensity
		out.DurationMs = e.Duration.Milliseconds()
	case loop.EventGameOver:
		out.Score = e.Score
		out.Level = e.Level
		out.MaxCombo = e.MaxCombo
	}
	return out
}

func encodeEntity(e object.Entity) entityJSON {
	b := e.Transform()
	return entityJSON{
		ID:       uint64(e.ID()),
		Kind:     e.Kind().String(),
		Position: toVec3(b.Position),
		Rotation: toVec3(b.Rotation),
		Scale:    b.Scale,
	}
}

func ptr[T any](v T) *T {
	return &v
}
