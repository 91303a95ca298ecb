// Package config centralizes all tunable game parameters.
package config

import "time"

// View resolution - the visible viewport in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// Max render resolution in terminal cells. Larger terminals get a centered, bordered play area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Session start values
const (
	InitialLives    = 4
	InitialLevel    = 1
	BaseSpeedFloor  = 0.15 // baseSpeed at session start
	MaxBoostEnergy  = 100.0
	InitialSpeedLvl = 1
)

// Scoring and leveling
const (
	PickupPoints        = 10  // Multiplied by combo and level
	PickupBoostEnergy   = 10  // Boost energy gained per pickup
	LevelScoreStep      = 200 // Level-up when score >= level*LevelScoreStep
	LevelSpeedFactor    = 1.1
	LevelSpeedCap       = 0.5
	ShakeFromLevel      = 3 // Level-ups from this level request a screen shake
	ComboWindow         = 2000 * time.Millisecond
	ComboBannerDuration = 1500 * time.Millisecond
)

// Hazard impact
const (
	InvulnerableDuration = 2000 * time.Millisecond
	SpeedPenaltyFactor   = 0.8
	SpeedPenaltyDuration = 3000 * time.Millisecond
	GameOverDelay        = 3000 * time.Millisecond
	CraftBlinkInterval   = 100 * time.Millisecond
)

// Speed ramp
const (
	SpeedRampInterval = 30000 * time.Millisecond
	SpeedRampFactor   = 1.2
	SpeedRampCap      = 0.8
)

// Boost
const (
	BoostSpeedFactor    = 3.0
	BoostDrainPerSecond = 0.167 * 60 // 100 energy lasts ~10 seconds
)

// Motion
const (
	UnitsPerTick  = 60.0 // position.z += currentSpeed * UnitsPerTick * dt
	ExpiryDepth   = 25.0 // Entities past this z are silently despawned
	MaxFrameDelta = 100 * time.Millisecond
)

// Proximity
const (
	AttractionRadius = 15.0
	AttractionPull   = 0.4
	PickupRadius     = 4.0
	HazardBaseRadius = 2.5 // Collision distance is HazardBaseRadius + hazard scale
)

// Spawning
const (
	SpawnInterval = 100 * time.Millisecond

	CollectibleChanceBase  = 0.03
	CollectibleChanceLevel = 0.008
	HazardChanceBase       = 0.06
	HazardChanceLevel      = 0.015

	CollectibleHalfWidth  = 15.0
	CollectibleHalfHeight = 10.0
	CollectibleSpawnZ     = -120.0
	CollectibleScaleMin   = 0.008
	CollectibleScaleMax   = 0.018
	CollectibleSpinMax    = 0.02 // Per-axis rotation rate in [0, max)

	HazardHalfWidth  = 20.0
	HazardHalfHeight = 15.0
	HazardSpawnZ     = -100.0
	HazardScaleMin   = 0.5
	HazardScaleMax   = 1.3
	HazardSpinMax    = 0.005 // Per-axis rotation rate in [-max, max)
)

// Craft steering
const (
	CraftRangeX   = 15.0 // Pointer x in [-1,1] maps to [-CraftRangeX, CraftRangeX]
	CraftRangeY   = 12.0
	CraftSteering = 0.1 // Fraction of the gap to the target closed per tick
	CraftDepth    = 18.0
)

// Hub
const (
	HubTickTime    = 100 * time.Millisecond
	TopScoresCount = 5
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Web frame rate
const (
	WebFrameRate = 30
	WebFrameTime = time.Second / WebFrameRate
)
