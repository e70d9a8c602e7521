// Package game implements the Buzzword Dodge simulation: the movement
// integrator, the object spawner, collision handling and the phase machine
// that alternates between dodging and writing.
//
// A Game is not safe for concurrent use. All mutation goes through its
// methods from a single goroutine; scoring requests run elsewhere and come
// back through Resolve.
package game

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
)

// Phase is one of the macro-states of a run.
type Phase int

const (
	PhaseIntro Phase = iota
	PhaseMovement
	PhaseWriting
	PhaseEnd
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseMovement:
		return "movement"
	case PhaseWriting:
		return "writing"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// unknownCause labels a death whose archetype has no title.
const unknownCause = "Unknown Asset"

// Game is the single coordinator that owns all run state.
type Game struct {
	runtime core.RuntimeConfig
	cfg     config.GameConfig
	cat     *catalog.Catalog
	rng     *rand.Rand

	phase    Phase
	lives    int
	scoreAcc float64 // Fractional survival score; the visible score is its floor
	survival time.Duration
	tier     config.Tier
	history  []EvaluationResult
	last     *EvaluationResult
	killedBy string

	player       Player
	objects      []FallingObject
	nextObjectID int

	clock     time.Duration // Movement-only simulation clock
	lastSpawn time.Duration
	lastHitAt time.Duration
	hitArmed  bool // False until the first accepted hit of the run

	movementElapsed time.Duration
	resolved        int // Writing challenges resolved this run

	challenge     *WritingChallenge
	inFlight      bool
	pendingID     uint64
	nextRequestID uint64
}

// New creates a game in the Intro phase.
// A nil catalog uses the embedded default content.
func New(runtime core.RuntimeConfig, cfg config.GameConfig, cat *catalog.Catalog) *Game {
	if cat == nil {
		cat = catalog.Default()
	}
	g := &Game{
		runtime: runtime,
		cfg:     cfg,
		cat:     cat,
		rng:     rand.New(rand.NewSource(runtime.Seed)),
	}
	g.reset()
	g.phase = PhaseIntro
	return g
}

// Start begins a run from Intro. Ignored in any other phase.
func (g *Game) Start() bool {
	if g.phase != PhaseIntro {
		return false
	}
	g.reset()
	g.phase = PhaseMovement
	return true
}

// Retry begins a fresh run from End, skipping Intro. Ignored in any other phase.
func (g *Game) Retry() bool {
	if g.phase != PhaseEnd {
		return false
	}
	g.reset()
	g.phase = PhaseMovement
	return true
}

// SetCatalog swaps the content catalog. It takes effect for the next
// spawn and the next challenge; used for hot reload between runs.
// A catalog too small to fill a challenge is refused and the current one kept.
func (g *Game) SetCatalog(cat *catalog.Catalog) error {
	if cat == nil {
		return nil
	}
	if err := cat.CheckKeywords(g.cfg.Run.KeywordCount); err != nil {
		return err
	}
	g.cat = cat
	return nil
}

// reset restores the run to its starting values. Request ids keep
// increasing so that responses from an earlier run never match.
func (g *Game) reset() {
	g.lives = g.cfg.Run.Lives
	g.scoreAcc = 0
	g.survival = 0
	g.tier = g.cfg.Difficulty.StartTier
	g.history = nil
	g.last = nil
	g.killedBy = ""

	g.objects = g.objects[:0]
	g.nextObjectID = 0

	g.clock = 0
	g.lastSpawn = 0
	g.lastHitAt = 0
	g.hitArmed = false

	g.movementElapsed = 0
	g.resolved = 0

	g.challenge = nil
	g.inFlight = false
	g.pendingID = 0

	g.player = Player{
		X:      (g.cfg.Playfield.Width - g.cfg.Player.Width) / 2,
		Y:      g.groundY(),
		Facing: FacingRight,
	}
}

// Step handles the command actions of one input frame and then advances
// the simulation by one fixed tick.
func (g *Game) Step(in core.InputFrame) {
	switch {
	case in.Has(core.ActionStart):
		g.Start()
	case in.Has(core.ActionRetry):
		g.Retry()
	}
	g.Tick(g.runtime.TickInterval(), in)
}

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Lives returns the remaining lives.
func (g *Game) Lives() int { return g.lives }

// Score returns the visible survival score.
func (g *Game) Score() int { return int(g.scoreAcc) }

// Tier returns the current difficulty tier.
func (g *Game) Tier() config.Tier { return g.tier }

// Config returns the tuning the game runs with.
func (g *Game) Config() config.GameConfig { return g.cfg }

// params returns the spawn and fall parameters of the current tier.
func (g *Game) params() config.TierParams {
	return g.cfg.Difficulty.Params(g.tier)
}

func (g *Game) groundY() float64 {
	return g.cfg.Playfield.Height - g.cfg.Player.Height - g.cfg.Playfield.GroundHeight
}
