package game

import (
	"slices"
	"time"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
)

// ChallengeView is a read-only copy of the active writing challenge.
type ChallengeView struct {
	Prompt    string
	Keywords  []catalog.Keyword
	TimeLimit time.Duration
	Remaining time.Duration
	Text      string
}

// RunState is a point-in-time copy of everything the HUD and the
// leaderboard need. Mutating it does not affect the game.
type RunState struct {
	Phase        Phase
	Lives        int
	MaxLives     int
	Score        int
	Survival     time.Duration
	Tier         config.Tier
	History      []EvaluationResult
	LastScore    *float64
	LastComment  string
	KilledBy     string
	Evaluating   bool
	WritingLimit time.Duration
	MovementLeft time.Duration

	Challenge *ChallengeView
	Player    Player
	Objects   []FallingObject
}

// Snapshot returns a copy of the run state.
func (g *Game) Snapshot() RunState {
	s := RunState{
		Phase:        g.phase,
		Lives:        g.lives,
		MaxLives:     g.cfg.Run.Lives,
		Score:        g.Score(),
		Survival:     g.survival,
		Tier:         g.tier,
		History:      slices.Clone(g.history),
		KilledBy:     g.killedBy,
		Evaluating:   g.inFlight,
		WritingLimit: g.WritingLimit(),
		MovementLeft: max(0, g.cfg.Phases.Movement()-g.movementElapsed),
		Player:       g.player,
		Objects:      slices.Clone(g.objects),
	}
	if g.last != nil {
		score := g.last.Score
		s.LastScore = &score
		s.LastComment = g.last.Comment
	}
	if c := g.challenge; c != nil {
		s.Challenge = &ChallengeView{
			Prompt:    c.Prompt,
			Keywords:  slices.Clone(c.Keywords),
			TimeLimit: c.TimeLimit,
			Remaining: c.Remaining,
			Text:      c.Text,
		}
	}
	return s
}

// Result is what a finished run exposes for persistence.
type Result struct {
	Score    int
	Survival time.Duration
	KilledBy string
	Tier     config.Tier
	History  []EvaluationResult
}

// Result returns the final outcome. ok is false until the run has ended.
func (g *Game) Result() (Result, bool) {
	if g.phase != PhaseEnd {
		return Result{}, false
	}
	return Result{
		Score:    g.Score(),
		Survival: g.survival,
		KilledBy: g.killedBy,
		Tier:     g.tier,
		History:  slices.Clone(g.history),
	}, true
}
