package game

import (
	"context"
	"strings"
	"time"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
)

// Canned comments for results that do not come from the oracle.
const (
	EmptyComment    = "No content provided."
	FallbackComment = "Evaluation failed; using a neutral difficulty."
	FallbackScore   = 5.0
)

// Source tells where an evaluation result came from.
type Source int

const (
	SourceOracle Source = iota
	SourceFallback
	SourceEmpty
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceOracle:
		return "oracle"
	case SourceFallback:
		return "fallback"
	case SourceEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// EvaluationResult is one resolved writing challenge.
type EvaluationResult struct {
	Prompt  string
	Score   float64 // [0, 10], one decimal
	Comment string
	Source  Source
}

// WritingChallenge is the active writing task.
type WritingChallenge struct {
	Prompt    string
	Keywords  []catalog.Keyword
	TimeLimit time.Duration
	Text      string
	Remaining time.Duration

	autoSubmitted bool
}

// Submission is a scoring request the caller must run and hand back to
// Resolve together with its ID.
type Submission struct {
	ID      uint64
	Request oracle.Request
}

// beginWriting leaves Movement and creates a fresh challenge.
func (g *Game) beginWriting() {
	limit := g.cfg.Phases.WritingLimit(g.resolved)
	g.challenge = &WritingChallenge{
		Prompt:    g.cat.PickPrompt(g.rng),
		Keywords:  g.cat.SampleKeywords(g.rng, g.cfg.Run.KeywordCount),
		TimeLimit: limit,
		Remaining: limit,
	}
	g.phase = PhaseWriting
}

// WritingLimit returns the time limit the next challenge will get.
func (g *Game) WritingLimit() time.Duration {
	return g.cfg.Phases.WritingLimit(g.resolved)
}

// Evaluating reports whether a scoring request is in flight.
func (g *Game) Evaluating() bool {
	return g.inFlight
}

// SetText replaces the typed text. Ignored outside Writing and while the
// text is being evaluated.
func (g *Game) SetText(text string) {
	if g.phase != PhaseWriting || g.inFlight || g.challenge == nil {
		return
	}
	g.challenge.Text = text
}

// Submit ends the current challenge. It is a no-op outside Writing or while
// a request is already in flight.
//
// Empty text resolves immediately with a zero score and pending is false.
// Otherwise pending is true and the caller must score sub.Request and pass
// the outcome to Resolve with sub.ID.
func (g *Game) Submit() (sub Submission, pending bool) {
	if g.phase != PhaseWriting || g.inFlight || g.challenge == nil {
		return Submission{}, false
	}

	text := strings.TrimSpace(g.challenge.Text)
	if text == "" {
		g.resolve(EvaluationResult{
			Prompt:  g.challenge.Prompt,
			Score:   0,
			Comment: EmptyComment,
			Source:  SourceEmpty,
		})
		return Submission{}, false
	}

	g.nextRequestID++
	g.pendingID = g.nextRequestID
	g.inFlight = true
	return Submission{
		ID:      g.pendingID,
		Request: oracle.NewRequest(g.challenge.Text, g.challenge.Prompt, catalog.Words(g.challenge.Keywords)),
	}, true
}

// Resolve applies the outcome of a submission. Results for a request that is
// not the latest one, or that arrive after the game left Writing, are
// discarded and false is returned.
func (g *Game) Resolve(id uint64, resp oracle.Response, err error) bool {
	if g.phase != PhaseWriting || !g.inFlight || id != g.pendingID {
		return false
	}
	g.inFlight = false

	res := EvaluationResult{Prompt: g.challenge.Prompt}
	if err != nil {
		res.Score = FallbackScore
		res.Comment = FallbackComment
		res.Source = SourceFallback
	} else {
		res.Score = core.RoundTo(core.ClampF(resp.Score, 0, 10), 1)
		res.Comment = resp.Comment
		res.Source = SourceOracle
	}
	g.resolve(res)
	return true
}

// SubmitAndWait submits and scores synchronously. It returns the resolved
// result, or false when Submit was a no-op.
func (g *Game) SubmitAndWait(ctx context.Context, scorer oracle.Scorer) (EvaluationResult, bool) {
	if g.phase != PhaseWriting || g.inFlight {
		return EvaluationResult{}, false
	}
	n := len(g.history)
	sub, pending := g.Submit()
	if pending {
		resp, err := scorer.Score(ctx, sub.Request)
		g.Resolve(sub.ID, resp, err)
	}
	if len(g.history) == n {
		return EvaluationResult{}, false
	}
	return g.history[n], true
}

// Countdown advances the writing timer by step. When the timer reaches
// zero the challenge is submitted exactly once; the returned values are
// those of Submit. While a request is in flight the timer holds.
func (g *Game) Countdown(step time.Duration) (sub Submission, pending bool) {
	if g.phase != PhaseWriting || g.inFlight || g.challenge == nil {
		return Submission{}, false
	}
	c := g.challenge
	c.Remaining -= step
	if c.Remaining > 0 {
		return Submission{}, false
	}
	c.Remaining = 0
	if c.autoSubmitted {
		return Submission{}, false
	}
	c.autoSubmitted = true
	return g.Submit()
}

// resolve applies the side effects of a result, in order: history, last
// result, next tier, life restore, time limit shrink, back to Movement.
func (g *Game) resolve(res EvaluationResult) {
	g.history = append(g.history, res)
	last := res
	g.last = &last

	g.tier = g.cfg.Difficulty.Tier(res.Score)

	if res.Score >= g.cfg.Run.RestoreLifeAt && g.lives < g.cfg.Run.Lives {
		g.lives++
	}

	g.resolved++

	g.challenge = nil
	g.movementElapsed = 0
	g.phase = PhaseMovement
}
