package tui

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/game"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
	"github.com/vovakirdan/buzzword-dodge/internal/storage"
)

// testConfig has no spawns and short phases.
func testConfig() config.GameConfig {
	cfg := config.DefaultGameConfig()
	for _, tier := range config.Tiers {
		p := cfg.Difficulty.Tiers[tier]
		p.SpawnIntervalMS = 1_000_000
		cfg.Difficulty.Tiers[tier] = p
	}
	cfg.Phases.MovementMS = 100
	cfg.Phases.WritingStartMS = 300
	cfg.Phases.WritingMinMS = 100
	return cfg
}

// deadlyConfig drops playfield-wide objects so every run ends quickly.
func deadlyConfig() config.GameConfig {
	cfg := config.DefaultGameConfig()
	for _, tier := range config.Tiers {
		p := cfg.Difficulty.Tiers[tier]
		p.SpawnIntervalMS = 100
		cfg.Difficulty.Tiers[tier] = p
	}
	wide := config.SizeSpec{Width: cfg.Playfield.Width, Height: 40}
	cfg.Objects.Sizes = map[string]config.SizeSpec{
		config.SizeSmall:  wide,
		config.SizeMedium: wide,
		config.SizeLarge:  wide,
	}
	cfg.Run.Lives = 1
	return cfg
}

func newTestModel(t *testing.T, cfg config.GameConfig, scorer oracle.Scorer, store *storage.Store) Model {
	t.Helper()
	return NewModel(Options{
		Game:   cfg,
		Scorer: scorer,
		Store:  store,
		Logger: log.New(io.Discard),
	}, core.RuntimeConfig{ScreenW: 100, ScreenH: 30, TickRate: 60, Seed: 7})
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, expected Model", next)
	}
	return nm, cmd
}

// tickUntil ticks until the game reaches phase or the budget runs out.
func tickUntil(t *testing.T, m Model, phase game.Phase, budget int) Model {
	t.Helper()
	for range budget {
		if m.Game().Phase() == phase {
			return m
		}
		m, _ = update(t, m, TickMsg{})
	}
	if m.Game().Phase() != phase {
		t.Fatalf("phase = %v after %d ticks, expected %v", m.Game().Phase(), budget, phase)
	}
	return m
}

func startRun(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, TickMsg{})
	if m.Game().Phase() != game.PhaseMovement {
		t.Fatalf("phase = %v after selecting start, expected movement", m.Game().Phase())
	}
	return m
}

func fixedScorer(score float64, calls *int) oracle.Scorer {
	return oracle.ScorerFunc(func(_ context.Context, _ oracle.Request) (oracle.Response, error) {
		*calls++
		return oracle.Response{Score: score, Comment: "Visionary."}, nil
	})
}

func TestModelStartsFromMenu(t *testing.T) {
	m := newTestModel(t, testConfig(), nil, nil)

	if m.Game().Phase() != game.PhaseIntro {
		t.Fatalf("new model should start at the intro, got %v", m.Game().Phase())
	}
	if !strings.Contains(m.View(), "B U Z Z W O R D") {
		t.Error("intro view should show the title")
	}

	// Ticks alone never leave the intro
	for range 10 {
		m, _ = update(t, m, TickMsg{})
	}
	if m.Game().Phase() != game.PhaseIntro {
		t.Fatal("intro should wait for the player")
	}

	startRun(t, m)
}

func TestModelWritingRoundTrip(t *testing.T) {
	calls := 0
	m := newTestModel(t, testConfig(), fixedScorer(9.5, &calls), nil)
	m = startRun(t, m)
	m = tickUntil(t, m, game.PhaseWriting, 30)

	if !strings.Contains(m.View(), "NEW MEMO") {
		t.Error("writing view should show the memo panel")
	}

	m, _ = update(t, m, runes("synergy wins"))
	if got := m.Game().Snapshot().Challenge.Text; got != "synergy wins" {
		t.Fatalf("challenge text = %q, expected typed text", got)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submitting text should return an evaluation command")
	}
	if !m.Game().Evaluating() {
		t.Fatal("game should be evaluating after submit")
	}

	// Typing while evaluating is ignored
	m, _ = update(t, m, runes("!!!"))
	if got := m.Game().Snapshot().Challenge.Text; got != "synergy wins" {
		t.Errorf("text changed while evaluating: %q", got)
	}

	msg := cmd()
	eval, ok := msg.(EvaluationMsg)
	if !ok {
		t.Fatalf("command produced %T, expected EvaluationMsg", msg)
	}
	m, _ = update(t, m, eval)

	if calls != 1 {
		t.Errorf("scorer called %d times, expected 1", calls)
	}
	s := m.Game().Snapshot()
	if s.Phase != game.PhaseMovement {
		t.Fatalf("phase = %v after evaluation, expected movement", s.Phase)
	}
	if s.LastScore == nil || *s.LastScore != 9.5 {
		t.Errorf("last score = %v, expected 9.5", s.LastScore)
	}
	if s.Tier != config.TierLight {
		t.Errorf("tier = %v, expected light", s.Tier)
	}
	if !strings.Contains(m.View(), "Last memo: 9.5/10") {
		t.Error("footer should show the last memo score")
	}
}

func TestModelEmptySubmitSkipsScorer(t *testing.T) {
	calls := 0
	m := newTestModel(t, testConfig(), fixedScorer(9, &calls), nil)
	m = startRun(t, m)
	m = tickUntil(t, m, game.PhaseWriting, 30)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty submit should not start an evaluation")
	}
	if calls != 0 {
		t.Errorf("scorer called %d times for empty text", calls)
	}
	s := m.Game().Snapshot()
	if s.Phase != game.PhaseMovement || s.LastScore == nil || *s.LastScore != 0 {
		t.Errorf("empty submit should resolve to 0 and resume movement, got %v / %v", s.Phase, s.LastScore)
	}
}

func TestModelCountdownAutoSubmits(t *testing.T) {
	scorer := oracle.ScorerFunc(func(context.Context, oracle.Request) (oracle.Response, error) {
		return oracle.Response{}, errors.New("offline")
	})
	m := newTestModel(t, testConfig(), scorer, nil)
	m = startRun(t, m)
	m = tickUntil(t, m, game.PhaseWriting, 30)
	m, _ = update(t, m, runes("leveraging"))

	var eval tea.Cmd
	for i := 0; i < 10 && eval == nil; i++ {
		var cmd tea.Cmd
		m, cmd = update(t, m, CountdownMsg{})
		if batch, ok := cmd().(tea.BatchMsg); ok && len(batch) == 2 {
			eval = batch[1]
		}
	}
	if eval == nil {
		t.Fatal("countdown should auto-submit when the timer runs out")
	}

	m, _ = update(t, m, eval())
	s := m.Game().Snapshot()
	if s.LastScore == nil || *s.LastScore != game.FallbackScore {
		t.Errorf("failed evaluation should fall back to %v, got %v", game.FallbackScore, s.LastScore)
	}
	if s.LastComment != game.FallbackComment {
		t.Errorf("comment = %q, expected fallback", s.LastComment)
	}
}

func TestModelDiscardsStaleEvaluation(t *testing.T) {
	m := newTestModel(t, testConfig(), nil, nil)
	m = startRun(t, m)

	m, _ = update(t, m, EvaluationMsg{ID: 42, Resp: oracle.Response{Score: 10}})
	s := m.Game().Snapshot()
	if s.LastScore != nil || s.Phase != game.PhaseMovement {
		t.Errorf("stale evaluation should be ignored, got %v / %v", s.Phase, s.LastScore)
	}
}

func TestModelPauseFreezesSimulation(t *testing.T) {
	m := newTestModel(t, testConfig(), nil, nil)
	m = startRun(t, m)

	m, _ = update(t, m, runes("p"))
	before := m.Game().Snapshot().Survival
	for range 30 {
		m, _ = update(t, m, TickMsg{})
	}
	if got := m.Game().Snapshot().Survival; got != before {
		t.Errorf("survival advanced while paused: %v -> %v", before, got)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("paused view should say so")
	}

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, TickMsg{})
	if m.Game().Snapshot().Survival == before {
		t.Error("unpausing should resume the simulation")
	}
}

func TestModelSavesRunAtEnd(t *testing.T) {
	store := openStore(t)
	m := newTestModel(t, deadlyConfig(), nil, store)
	m = startRun(t, m)
	m = tickUntil(t, m, game.PhaseEnd, 2000)

	if !m.naming {
		t.Fatal("end screen should prompt for a nickname")
	}
	if !strings.Contains(m.View(), "RESTRUCTURED") {
		t.Error("end view should show the game over banner")
	}

	m, _ = update(t, m, runes("ana"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.naming {
		t.Error("nickname prompt should close after saving")
	}

	runs, err := store.TopRuns(10)
	if err != nil {
		t.Fatalf("TopRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 saved run, got %d", len(runs))
	}
	res, _ := m.Game().Result()
	if runs[0].Nickname != "ana" || runs[0].Score != res.Score || runs[0].KilledBy == "" {
		t.Errorf("saved run = %+v, expected ana with score %d", runs[0], res.Score)
	}

	// Retry starts a fresh run on the next tick
	m, _ = update(t, m, runes("r"))
	m, _ = update(t, m, TickMsg{})
	if m.Game().Phase() != game.PhaseMovement || m.Game().Lives() != 1 {
		t.Errorf("retry should start a new run, phase = %v lives = %d", m.Game().Phase(), m.Game().Lives())
	}
}

func TestModelEndWithoutStore(t *testing.T) {
	m := newTestModel(t, deadlyConfig(), nil, nil)
	m = startRun(t, m)
	m = tickUntil(t, m, game.PhaseEnd, 2000)

	if m.naming {
		t.Error("nickname prompt should be skipped without a database")
	}
	if !strings.Contains(m.View(), "not saved") {
		t.Error("end view should say the run was not saved")
	}
}

func TestModelScoreboardToggle(t *testing.T) {
	m := newTestModel(t, testConfig(), nil, openStore(t))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.scoreboard == nil {
		t.Fatal("tab should open the leaderboard")
	}
	if !strings.Contains(m.View(), "LEADERBOARD") {
		t.Error("leaderboard view should be shown")
	}

	// The simulation is held while browsing
	m, _ = update(t, m, TickMsg{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.scoreboard != nil {
		t.Error("esc should close the leaderboard")
	}
	if m.Game().Phase() != game.PhaseIntro {
		t.Errorf("phase = %v, expected intro", m.Game().Phase())
	}
}

func TestRunRecord(t *testing.T) {
	res := game.Result{
		Score:    120,
		KilledBy: "OKR Card",
		Tier:     config.TierHeavy,
		History: []game.EvaluationResult{
			{Prompt: "A", Score: 4.5, Comment: "meh", Source: game.SourceOracle},
			{Prompt: "B", Score: 0, Comment: game.EmptyComment, Source: game.SourceEmpty},
		},
	}

	run := RunRecord(res, "bo")
	if run.Nickname != "bo" || run.Score != 120 || run.KilledBy != "OKR Card" || run.Tier != "heavy" {
		t.Errorf("run = %+v", run)
	}
	if len(run.Evaluations) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(run.Evaluations))
	}
	if run.Evaluations[1].Round != 2 || run.Evaluations[1].Source != "empty" {
		t.Errorf("second evaluation = %+v", run.Evaluations[1])
	}
}

func TestModelCatalogReload(t *testing.T) {
	withPrompt := func(prompt string, keywords int) *catalog.Catalog {
		c := catalog.Default()
		c.Prompts = []string{prompt}
		c.Keywords = c.Keywords[:keywords]
		return c
	}

	tests := []struct {
		name       string
		cat        *catalog.Catalog
		wantPrompt bool
	}{
		{"full pool is applied", withPrompt("Fresh prompt", 3), true},
		{"short pool is rejected", withPrompt("Fresh prompt", 2), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t, testConfig(), nil, nil)
			m, _ = update(t, m, CatalogMsg{Catalog: tc.cat})

			m = startRun(t, m)
			m = tickUntil(t, m, game.PhaseWriting, 50)
			c := m.Game().Snapshot().Challenge
			if len(c.Keywords) != 3 {
				t.Errorf("challenge has %d keywords, expected 3", len(c.Keywords))
			}
			if got := c.Prompt == "Fresh prompt"; got != tc.wantPrompt {
				t.Errorf("prompt = %q, reloaded catalog used = %v, expected %v", c.Prompt, got, tc.wantPrompt)
			}
		})
	}
}
