// Package config provides YAML-based game configuration loading and the
// difficulty tier mapping for the game.
package config

import (
	"fmt"
	"time"
)

// GameConfig contains all tuning for a run.
type GameConfig struct {
	Playfield  PlayfieldConfig  `yaml:"playfield"`
	Player     PlayerConfig     `yaml:"player"`
	Objects    ObjectsConfig    `yaml:"objects"`
	Collision  CollisionConfig  `yaml:"collision"`
	Phases     PhaseConfig      `yaml:"phases"`
	Run        RunConfig        `yaml:"run"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Oracle     OracleConfig     `yaml:"oracle"`
}

// PlayfieldConfig defines the simulated world in pixels.
type PlayfieldConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	GroundHeight  float64 `yaml:"ground_height"`
	DespawnMargin float64 `yaml:"despawn_margin"` // Objects below height+margin are dropped
}

// PlayerConfig defines player size and movement physics.
type PlayerConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	Speed         float64 `yaml:"speed"`          // Horizontal px/s
	Gravity       float64 `yaml:"gravity"`        // px/s²
	JumpImpulse   float64 `yaml:"jump_impulse"`   // Negative = up, px/s
	GroundEpsilon float64 `yaml:"ground_epsilon"` // Max distance from ground that still counts as grounded
}

// ObjectsConfig defines falling object generation.
type ObjectsConfig struct {
	Sizes            map[string]SizeSpec `yaml:"sizes"`
	SpeedJitterMin   float64             `yaml:"speed_jitter_min"`
	SpeedJitterMax   float64             `yaml:"speed_jitter_max"`
	MaxRotationSpeed float64             `yaml:"max_rotation_speed"` // deg/s, symmetric range
	SpawnOffset      float64             `yaml:"spawn_offset"`       // Gap above the visible area
}

// SizeSpec is the fixed footprint of a size class.
type SizeSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Collision policies.
const (
	// CollisionAll removes every overlapping object and deducts at most one life.
	CollisionAll = "all"
	// CollisionFirst consumes only the first overlapping object, and only on an accepted hit.
	CollisionFirst = "first"
)

// CollisionConfig selects how overlaps turn into hits.
type CollisionConfig struct {
	Policy        string `yaml:"policy"`
	ProjectPlayer bool   `yaml:"project_player"` // Test against post-integration player position
	HitCooldownMS int    `yaml:"hit_cooldown_ms"`
}

// HitCooldown returns the invulnerability window.
func (c CollisionConfig) HitCooldown() time.Duration {
	return time.Duration(c.HitCooldownMS) * time.Millisecond
}

// PhaseConfig defines phase timers.
type PhaseConfig struct {
	MovementMS         int `yaml:"movement_ms"`
	WritingStartMS     int `yaml:"writing_start_ms"`
	WritingDecrementMS int `yaml:"writing_decrement_ms"`
	WritingMinMS       int `yaml:"writing_min_ms"`
	CountdownStepMS    int `yaml:"countdown_step_ms"`
}

// Movement returns the fixed movement phase duration.
func (p PhaseConfig) Movement() time.Duration {
	return time.Duration(p.MovementMS) * time.Millisecond
}

// CountdownStep returns the writing countdown timer interval.
func (p PhaseConfig) CountdownStep() time.Duration {
	return time.Duration(p.CountdownStepMS) * time.Millisecond
}

// WritingLimit returns the writing time limit after the given number of
// resolved challenges: start - n*decrement, floored at the minimum.
func (p PhaseConfig) WritingLimit(resolved int) time.Duration {
	ms := p.WritingStartMS - resolved*p.WritingDecrementMS
	if ms < p.WritingMinMS {
		ms = p.WritingMinMS
	}
	return time.Duration(ms) * time.Millisecond
}

// RunConfig defines lives and scoring.
type RunConfig struct {
	Lives         int     `yaml:"lives"`
	ScorePerMS    float64 `yaml:"score_per_ms"`    // Survival score rate
	RestoreLifeAt float64 `yaml:"restore_life_at"` // Writing score that restores a life
	KeywordCount  int     `yaml:"keyword_count"`
}

// OracleConfig defines how the game reaches the scoring oracle.
type OracleConfig struct {
	URL       string `yaml:"url"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// Timeout returns the per-request deadline for the oracle.
func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

// Validate reports configuration values the simulation cannot run with.
func (c GameConfig) Validate() error {
	if c.Playfield.Width <= c.Player.Width || c.Playfield.Height <= c.Player.Height+c.Playfield.GroundHeight {
		return fmt.Errorf("config: playfield %.0fx%.0f is too small for the player", c.Playfield.Width, c.Playfield.Height)
	}
	if c.Collision.Policy != CollisionAll && c.Collision.Policy != CollisionFirst {
		return fmt.Errorf("config: unknown collision policy %q", c.Collision.Policy)
	}
	if c.Objects.SpeedJitterMin <= 0 || c.Objects.SpeedJitterMax < c.Objects.SpeedJitterMin {
		return fmt.Errorf("config: invalid speed jitter range [%.2f, %.2f]", c.Objects.SpeedJitterMin, c.Objects.SpeedJitterMax)
	}
	for _, class := range []string{SizeSmall, SizeMedium, SizeLarge} {
		spec, ok := c.Objects.Sizes[class]
		if !ok || spec.Width <= 0 || spec.Height <= 0 {
			return fmt.Errorf("config: missing or empty size class %q", class)
		}
	}
	if c.Phases.MovementMS <= 0 || c.Phases.CountdownStepMS <= 0 {
		return fmt.Errorf("config: phase timers must be positive")
	}
	if c.Phases.WritingMinMS <= 0 || c.Phases.WritingStartMS < c.Phases.WritingMinMS {
		return fmt.Errorf("config: writing limit %dms is below the minimum %dms", c.Phases.WritingStartMS, c.Phases.WritingMinMS)
	}
	if c.Run.Lives <= 0 {
		return fmt.Errorf("config: lives must be positive, got %d", c.Run.Lives)
	}
	if c.Run.KeywordCount <= 0 {
		return fmt.Errorf("config: keyword_count must be positive, got %d", c.Run.KeywordCount)
	}
	return c.Difficulty.validate()
}

// Size classes for falling objects.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)
