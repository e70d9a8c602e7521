package game

import (
	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
)

// FallingObject is a UI mockup dropping onto the playfield.
type FallingObject struct {
	ID            int
	X, Y          float64
	W, H          float64
	Size          string
	FallSpeed     float64 // px/s
	Rotation      float64 // Degrees, cosmetic
	RotationSpeed float64 // deg/s
	Archetype     catalog.Archetype
}

// Bounds returns the collision rectangle. Rotation is ignored.
func (o FallingObject) Bounds() core.Rect {
	return core.NewRect(o.X, o.Y, o.W, o.H)
}

// placeholder is spawned when the catalog has no archetypes.
var placeholder = catalog.Archetype{
	ID:    "placeholder",
	Title: "Untitled Widget",
	Kind:  "card",
	Size:  config.SizeMedium,
}

// maybeSpawn creates at most one object when the spawn interval has
// elapsed on the simulation clock. A missed interval is skipped, not queued.
func (g *Game) maybeSpawn() {
	if g.clock-g.lastSpawn < g.params().SpawnInterval() {
		return
	}
	g.lastSpawn = g.clock
	g.objects = append(g.objects, g.spawn())
}

// spawn draws a new object. The random draws happen in a fixed order
// (archetype, x, speed factor, rotation) so a seed replays identically.
func (g *Game) spawn() FallingObject {
	oc := g.cfg.Objects

	arch, ok := g.cat.PickArchetype(g.rng)
	if !ok {
		arch = placeholder
	}
	class := arch.Size
	size, ok := oc.Sizes[class]
	if !ok {
		class = config.SizeMedium
		size = oc.Sizes[class]
	}

	span := max(1, g.cfg.Playfield.Width-size.Width)
	x := g.rng.Float64() * span
	factor := oc.SpeedJitterMin + g.rng.Float64()*(oc.SpeedJitterMax-oc.SpeedJitterMin)
	rotation := (g.rng.Float64()*2 - 1) * oc.MaxRotationSpeed

	g.nextObjectID++
	return FallingObject{
		ID:            g.nextObjectID,
		X:             x,
		Y:             -size.Height - oc.SpawnOffset,
		W:             size.Width,
		H:             size.Height,
		Size:          class,
		FallSpeed:     g.params().FallSpeed * factor,
		RotationSpeed: rotation,
		Archetype:     arch,
	}
}
