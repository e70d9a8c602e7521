package config

import (
	_ "embed"
)

//go:embed defaults/game.yaml
var defaultGameYAML []byte

// DefaultGameConfig returns the built-in game tuning.
// Kept in sync with defaults/game.yaml; used when the embedded file cannot be parsed.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Playfield: PlayfieldConfig{
			Width:         800,
			Height:        640,
			GroundHeight:  40,
			DespawnMargin: 100,
		},
		Player: PlayerConfig{
			Width:         80,
			Height:        150,
			Speed:         350,
			Gravity:       1400,
			JumpImpulse:   -550,
			GroundEpsilon: 2,
		},
		Objects: ObjectsConfig{
			Sizes: map[string]SizeSpec{
				SizeSmall:  {Width: 200, Height: 60},
				SizeMedium: {Width: 300, Height: 120},
				SizeLarge:  {Width: 380, Height: 160},
			},
			SpeedJitterMin:   0.8,
			SpeedJitterMax:   1.3,
			MaxRotationSpeed: 30,
			SpawnOffset:      10,
		},
		Collision: CollisionConfig{
			Policy:        CollisionAll,
			ProjectPlayer: false,
			HitCooldownMS: 250,
		},
		Phases: PhaseConfig{
			MovementMS:         10_000,
			WritingStartMS:     30_000,
			WritingDecrementMS: 5_000,
			WritingMinMS:       10_000,
			CountdownStepMS:    100,
		},
		Run: RunConfig{
			Lives:         3,
			ScorePerMS:    0.1,
			RestoreLifeAt: 9.0,
			KeywordCount:  3,
		},
		Difficulty: DifficultyConfig{
			StartTier: TierMedium,
			Thresholds: Thresholds{
				Light:  9.0,
				Medium: 6.5,
				Heavy:  4.0,
			},
			Tiers: map[Tier]TierParams{
				TierLight:  {FallSpeed: 250, SpawnIntervalMS: 1200},
				TierMedium: {FallSpeed: 350, SpawnIntervalMS: 900},
				TierHeavy:  {FallSpeed: 480, SpawnIntervalMS: 650},
				TierInsane: {FallSpeed: 650, SpawnIntervalMS: 450},
			},
		},
		Oracle: OracleConfig{
			URL:       "http://localhost:8787/api/evaluate",
			TimeoutMS: 8000,
		},
	}
}
