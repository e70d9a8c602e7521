package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/buzzword-dodge/internal/core"
)

// Visual characters for rendering
const (
	GroundChar = '═'
	PlayerHead = '☺'
	PlayerBody = '█'
	HeartFull  = '♥'
	HeartEmpty = '♡'
)

// kindColors tints objects by archetype kind.
var kindColors = map[string]core.Color{
	"card":      core.ColorBrightBlue,
	"toast":     core.ColorBrightGreen,
	"button":    core.ColorBrightMagenta,
	"banner":    core.ColorYellow,
	"modal":     core.ColorBrightCyan,
	"slide":     core.ColorOrange,
	"form":      core.ColorWhite,
	"chart":     core.ColorBrightYellow,
	"dashboard": core.ColorBrightRed,
}

// viewport maps playfield pixels onto the screen below the HUD row.
type viewport struct {
	sx, sy float64
	top    int
}

func (g *Game) viewport(dst *core.Screen) viewport {
	rows := max(1, dst.Height()-1)
	return viewport{
		sx:  float64(dst.Width()) / g.cfg.Playfield.Width,
		sy:  float64(rows) / g.cfg.Playfield.Height,
		top: 1,
	}
}

func (v viewport) box(r core.Rect) core.Box {
	x := int(math.Floor(r.X * v.sx))
	y := int(math.Floor(r.Y*v.sy)) + v.top
	w := max(1, int(math.Round(r.W*v.sx)))
	h := max(1, int(math.Round(r.H*v.sy)))
	return core.NewBox(x, y, w, h)
}

// Render draws the playfield and the one-line HUD. The writing overlay and
// the menus are drawn by the platform on top of this.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	vp := g.viewport(dst)

	groundRow := int(math.Floor((g.cfg.Playfield.Height-g.cfg.Playfield.GroundHeight)*vp.sy)) + vp.top
	dst.DrawHLine(0, groundRow, dst.Width(), GroundChar, core.ColorGray)

	for _, o := range g.objects {
		g.drawObject(dst, vp, o)
	}
	g.drawPlayer(dst, vp)
	g.drawHUD(dst)
}

func (g *Game) drawObject(dst *core.Screen, vp viewport, o FallingObject) {
	b := vp.box(o.Bounds())
	color, ok := kindColors[o.Archetype.Kind]
	if !ok {
		color = core.ColorWhite
	}
	dst.DrawBox(b, color)

	if b.W < 4 || b.H < 3 {
		return
	}
	inner := b.W - 2
	dst.DrawTextColored(b.X+1, b.Y+1, truncate(o.Archetype.Title, inner), color)
	if b.H >= 4 {
		dst.DrawTextColored(b.X+1, b.Y+2, truncate(o.Archetype.Blurb, inner), core.ColorGray)
	}
}

func (g *Game) drawPlayer(dst *core.Screen, vp viewport) {
	b := vp.box(g.playerBounds())
	color := core.ColorBrightWhite
	if g.hitArmed && g.clock-g.lastHitAt < g.cfg.Collision.HitCooldown()*2 {
		color = core.ColorBrightRed
	}
	dst.DrawRect(b, PlayerBody, color)
	head := b.X + b.W/2
	if g.player.Facing == FacingLeft && b.W > 1 {
		head = b.X + (b.W-1)/2
	}
	dst.SetColored(head, b.Y, PlayerHead, color)
}

func (g *Game) drawHUD(dst *core.Screen) {
	hearts := strings.Repeat(string(HeartFull), g.lives) +
		strings.Repeat(string(HeartEmpty), max(0, g.cfg.Run.Lives-g.lives))
	dst.DrawTextColored(1, 0, hearts, core.ColorBrightRed)

	left := max(0, g.cfg.Phases.Movement()-g.movementElapsed)
	hud := fmt.Sprintf(" Score: %d  Time: %ds  Difficulty: %s  Next memo: %.1fs ",
		g.Score(), int(g.survival.Seconds()), g.tier.Label(), left.Seconds())
	dst.DrawTextColored(g.cfg.Run.Lives+2, 0, hud, core.ColorBrightCyan)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
