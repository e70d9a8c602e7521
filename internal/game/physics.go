package game

import (
	"math"
	"time"

	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
)

// Facing is the horizontal direction the player last moved in.
type Facing int

const (
	FacingRight Facing = iota
	FacingLeft
)

// Player is the dodging character. Coordinates are the top-left corner in
// playfield pixels; Y grows downward.
type Player struct {
	X, Y      float64
	VelocityY float64
	Facing    Facing
}

// Tick advances the Movement phase by dt. It is a no-op in every other
// phase, so callers may tick unconditionally.
//
// Order within a tick: score and survival accumulators, horizontal move,
// vertical move, spawn gate, object integration with collision, and last
// the movement phase timer.
func (g *Game) Tick(dt time.Duration, in core.InputFrame) {
	if g.phase != PhaseMovement || dt <= 0 {
		return
	}

	g.clock += dt
	g.survival += dt
	g.scoreAcc += float64(dt) / float64(time.Millisecond) * g.cfg.Run.ScorePerMS

	before := g.playerBounds()
	g.movePlayer(dt, in)

	g.maybeSpawn()

	target := before
	if g.cfg.Collision.ProjectPlayer {
		target = g.playerBounds()
	}
	g.stepObjects(dt, target)
	if g.phase == PhaseEnd {
		return
	}

	g.movementElapsed += dt
	if g.movementElapsed >= g.cfg.Phases.Movement() {
		g.beginWriting()
	}
}

func (g *Game) movePlayer(dt time.Duration, in core.InputFrame) {
	pc := g.cfg.Player
	secs := dt.Seconds()

	if dir := in.Direction(); dir != 0 {
		g.player.X += float64(dir) * pc.Speed * secs
		if dir < 0 {
			g.player.Facing = FacingLeft
		} else {
			g.player.Facing = FacingRight
		}
	}
	g.player.X = core.ClampF(g.player.X, 0, g.cfg.Playfield.Width-pc.Width)

	ground := g.groundY()
	if in.Has(core.ActionJump) && math.Abs(g.player.Y-ground) < pc.GroundEpsilon {
		g.player.VelocityY = pc.JumpImpulse
	}
	g.player.VelocityY += pc.Gravity * secs
	g.player.Y += g.player.VelocityY * secs
	if g.player.Y >= ground {
		g.player.Y = ground
		g.player.VelocityY = 0
	}
}

// Grounded reports whether the player can jump.
func (g *Game) Grounded() bool {
	return math.Abs(g.player.Y-g.groundY()) < g.cfg.Player.GroundEpsilon
}

func (g *Game) playerBounds() core.Rect {
	return core.NewRect(g.player.X, g.player.Y, g.cfg.Player.Width, g.cfg.Player.Height)
}

// stepObjects moves every object, drops the ones that left the playfield and
// applies the collision policy against the given player rectangle.
func (g *Game) stepObjects(dt time.Duration, player core.Rect) {
	secs := dt.Seconds()
	limit := g.cfg.Playfield.Height + g.cfg.Playfield.DespawnMargin
	canHit := !g.hitArmed || g.clock-g.lastHitAt >= g.cfg.Collision.HitCooldown()
	first := g.cfg.Collision.Policy == config.CollisionFirst

	kept := g.objects[:0]
	hitTaken := false
	overlapSeen := false
	for _, o := range g.objects {
		o.Y += o.FallSpeed * secs
		o.Rotation += o.RotationSpeed * secs

		if o.Y > limit {
			continue
		}

		if o.Bounds().Intersects(player) {
			if first {
				if !overlapSeen {
					overlapSeen = true
					if canHit {
						g.hit(o)
						hitTaken = true
						continue
					}
				}
			} else {
				if !hitTaken && canHit {
					g.hit(o)
					hitTaken = true
				}
				continue
			}
		}
		kept = append(kept, o)
	}
	// Zero the tail so dropped objects are not retained by the backing array.
	for i := len(kept); i < len(g.objects); i++ {
		g.objects[i] = FallingObject{}
	}
	g.objects = kept
}

// hit applies one accepted hit. Reaching zero lives ends the run.
func (g *Game) hit(o FallingObject) {
	g.lives--
	g.lastHitAt = g.clock
	g.hitArmed = true

	g.killedBy = o.Archetype.Title
	if g.killedBy == "" {
		g.killedBy = unknownCause
	}
	if g.lives <= 0 {
		g.lives = 0
		g.phase = PhaseEnd
	}
}
