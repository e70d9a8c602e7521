package config

import (
	"fmt"
	"time"
)

// Tier is a discrete difficulty category controlling fall speed and spawn rate.
type Tier string

const (
	TierLight  Tier = "light"
	TierMedium Tier = "medium"
	TierHeavy  Tier = "heavy"
	TierInsane Tier = "insane"
)

// Tiers lists all tiers from least to most severe.
var Tiers = []Tier{TierLight, TierMedium, TierHeavy, TierInsane}

// Severity orders tiers: Light=0 ... Insane=3. Unknown tiers report -1.
func (t Tier) Severity() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// Label returns the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierLight:
		return "Light"
	case TierMedium:
		return "Medium"
	case TierHeavy:
		return "Heavy"
	case TierInsane:
		return "Insane"
	default:
		return "Unknown"
	}
}

// Thresholds are the lower score bounds of each tier band.
// A score at or above Light maps to Light, and so on down to Insane.
type Thresholds struct {
	Light  float64 `yaml:"light"`
	Medium float64 `yaml:"medium"`
	Heavy  float64 `yaml:"heavy"`
}

// TierParams are the simulation parameters derived from a tier.
type TierParams struct {
	FallSpeed       float64 `yaml:"fall_speed"` // Base fall speed, px/s
	SpawnIntervalMS int     `yaml:"spawn_interval_ms"`
}

// SpawnInterval returns the minimum time between two spawns.
func (p TierParams) SpawnInterval() time.Duration {
	return time.Duration(p.SpawnIntervalMS) * time.Millisecond
}

// DifficultyConfig defines the score → tier → parameters mapping.
type DifficultyConfig struct {
	StartTier  Tier                `yaml:"start_tier"`
	Thresholds Thresholds          `yaml:"thresholds"`
	Tiers      map[Tier]TierParams `yaml:"tiers"`
}

// MapScoreToTier maps a writing score to a tier. Scores outside [0, 10] are
// clamped first, so every input yields exactly one tier and a higher score
// never yields a more severe tier.
func MapScoreToTier(score float64, th Thresholds) Tier {
	score = clampF(score, 0, 10)
	switch {
	case score >= th.Light:
		return TierLight
	case score >= th.Medium:
		return TierMedium
	case score >= th.Heavy:
		return TierHeavy
	default:
		return TierInsane
	}
}

// Tier maps a writing score using the configured thresholds.
func (d DifficultyConfig) Tier(score float64) Tier {
	return MapScoreToTier(score, d.Thresholds)
}

// Params returns the fall speed and spawn interval for a tier.
// Unknown tiers fall back to the Medium parameters.
func (d DifficultyConfig) Params(t Tier) TierParams {
	if p, ok := d.Tiers[t]; ok {
		return p
	}
	return d.Tiers[TierMedium]
}

func (d DifficultyConfig) validate() error {
	th := d.Thresholds
	if !(th.Light >= th.Medium && th.Medium >= th.Heavy && th.Heavy >= 0) {
		return fmt.Errorf("config: difficulty thresholds must be descending, got %+v", th)
	}
	if d.StartTier.Severity() < 0 {
		return fmt.Errorf("config: unknown start tier %q", d.StartTier)
	}
	for _, tier := range Tiers {
		p, ok := d.Tiers[tier]
		if !ok || p.FallSpeed <= 0 || p.SpawnIntervalMS <= 0 {
			return fmt.Errorf("config: missing or invalid parameters for tier %q", tier)
		}
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset converts a CLI value to a preset. Empty means "use the config as is".
func ParsePreset(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard:
		return DifficultyPreset(s), nil
	default:
		return "", fmt.Errorf("config: unknown difficulty preset %q (want easy, normal or hard)", s)
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
// Easy loosens the tier thresholds and gives more writing time; hard does the opposite.
func ApplyPreset(cfg *GameConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Difficulty.Thresholds = shiftThresholds(cfg.Difficulty.Thresholds, -1.0)
		cfg.Phases.WritingStartMS += 10_000
		cfg.Collision.HitCooldownMS *= 2
	case DifficultyHard:
		cfg.Difficulty.Thresholds = shiftThresholds(cfg.Difficulty.Thresholds, 0.5)
		cfg.Phases.WritingStartMS = max(cfg.Phases.WritingMinMS, cfg.Phases.WritingStartMS-10_000)
	}
}

func shiftThresholds(th Thresholds, delta float64) Thresholds {
	return Thresholds{
		Light:  clampF(th.Light+delta, 0, 10),
		Medium: clampF(th.Medium+delta, 0, 10),
		Heavy:  clampF(th.Heavy+delta, 0, 10),
	}
}

func clampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
