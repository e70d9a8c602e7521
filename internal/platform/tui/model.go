package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/game"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
	"github.com/vovakirdan/buzzword-dodge/internal/storage"
)

// Options wires the collaborators of a play session.
type Options struct {
	Game    config.GameConfig
	Catalog *catalog.Catalog // nil uses the embedded catalog
	Scorer  oracle.Scorer    // nil scores offline
	Store   *storage.Store   // nil disables the leaderboard
	Watcher *catalog.Watcher // optional catalog hot reload
	Logger  *log.Logger

	// Nickname pre-fills the leaderboard prompt.
	Nickname string

	// ScreenshotDir receives ctrl+s dumps. Empty disables screenshots.
	ScreenshotDir string
}

// Model is the Bubble Tea model for a Buzzword Dodge session.
// The game is only ever mutated from Update, so scoring results from
// evaluateCmd are merged back through EvaluationMsg.
type Model struct {
	game    *game.Game
	screen  *core.Screen
	opts    Options
	config  core.RuntimeConfig
	logger  *log.Logger
	keys    *KeyMapper
	held    *HeldKeys
	input   core.InputFrame
	menu    menuState
	editor  textarea.Model
	nick    textinput.Model
	phase   game.Phase
	paused  bool
	now     func() time.Time
	pending *catalog.Catalog // Reloaded catalog waiting for the next run

	highScore  int
	naming     bool // Nickname prompt is active
	saveStatus string

	scoreboard *ScoreboardModel
	quitting   bool
}

// NewModel creates a new Bubble Tea model for a session.
func NewModel(opts Options, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.Scorer == nil {
		opts.Scorer = oracle.Offline{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	editor := textarea.New()
	editor.Placeholder = "Thrilled to announce..."
	editor.ShowLineNumbers = false
	editor.CharLimit = 1000
	editor.KeyMap.InsertNewline.SetEnabled(false)

	nick := textinput.New()
	nick.Placeholder = storage.AnonymousName
	nick.CharLimit = storage.MaxNicknameLen
	nick.Width = storage.MaxNicknameLen + 1

	m := Model{
		game:   game.New(cfg, opts.Game, opts.Catalog),
		screen: core.NewScreen(cfg.ScreenW, playfieldRows(cfg.ScreenH)),
		opts:   opts,
		config: cfg,
		logger: logger,
		keys:   NewKeyMapper(),
		held:   NewHeldKeys(),
		input:  core.NewInputFrame(),
		editor: editor,
		nick:   nick,
		phase:  game.PhaseIntro,
		now:    time.Now,
	}
	m.resizeWidgets()
	m.refreshHighScore()
	return m
}

// Init starts the simulation tick, the writing countdown and the catalog
// watch loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.config.TickRate),
		countdownCmd(m.opts.Game.Phases.CountdownStep()),
		watchCmd(m.opts.Watcher),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case CountdownMsg:
		return m.handleCountdown()

	case EvaluationMsg:
		return m.handleEvaluation(msg)

	case CatalogMsg:
		return m.handleCatalog(msg)
	}

	if m.scoreboard != nil {
		return m.updateScoreboard(msg)
	}
	return m, nil
}

// handleKey processes keyboard input for the active screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.scoreboard != nil {
		return m.updateScoreboard(msg)
	}

	switch m.game.Phase() {
	case game.PhaseIntro:
		return m.handleMenuKey(msg)
	case game.PhaseMovement:
		return m.handleMovementKey(msg)
	case game.PhaseWriting:
		return m.handleWritingKey(msg)
	case game.PhaseEnd:
		return m.handleEndKey(msg)
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		m.menu.move(-1)
	case MenuActionDown:
		m.menu.move(1)
	case MenuActionScoreboard:
		return m.openScoreboard()
	case MenuActionSelect:
		switch m.menu.selected() {
		case MenuStart:
			m.input.Set(core.ActionStart)
		case MenuScoreboard:
			return m.openScoreboard()
		case MenuQuit:
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleMovementKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionPause:
		m.paused = !m.paused
		m.held.Release()
	case core.ActionLeft, core.ActionRight:
		if !m.paused {
			m.held.Press(action, m.now())
		}
	case core.ActionJump:
		if !m.paused {
			m.input.Set(core.ActionJump)
		}
	}
	return m, nil
}

func (m Model) handleWritingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.game.Evaluating() {
		return m, nil
	}
	if msg.Type == tea.KeyEnter {
		return m.submit()
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.game.SetText(m.editor.Value())
	return m, cmd
}

func (m Model) handleEndKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.naming {
		switch msg.Type {
		case tea.KeyEnter:
			m.saveRun(m.nick.Value())
			return m, nil
		case tea.KeyEsc:
			m.naming = false
			m.nick.Blur()
			m.saveStatus = "Run not saved."
			return m, nil
		}
		var cmd tea.Cmd
		m.nick, cmd = m.nick.Update(msg)
		return m, cmd
	}

	if msg.String() == "tab" {
		return m.openScoreboard()
	}
	action, isQuit := m.keys.MapEndKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}
	if action == core.ActionRetry {
		m.input.Set(core.ActionRetry)
	}
	return m, nil
}

// submit hands the typed memo to the game and starts scoring it.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.game.SetText(m.editor.Value())
	sub, pending := m.game.Submit()
	m.editor.Blur()
	m = m.syncPhase()
	if !pending {
		return m, nil
	}
	return m, evaluateCmd(m.opts.Scorer, sub, m.opts.Game.Oracle.Timeout())
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, playfieldRows(msg.Height))
	m.resizeWidgets()

	// The playfield is in pixels; only the viewport changes.
	if m.scoreboard != nil {
		return m.updateScoreboard(msg)
	}
	return m, nil
}

// playfieldRows leaves the last terminal row for the footer.
func playfieldRows(height int) int {
	return core.Max(1, height-1)
}

func (m *Model) resizeWidgets() {
	w := core.Max(20, core.Min(m.config.ScreenW-8, 72))
	m.editor.SetWidth(w)
	m.editor.SetHeight(core.Max(3, core.Min(6, m.config.ScreenH-18)))
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.paused || m.scoreboard != nil {
		m.input.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	frame := m.input.Clone()
	m.held.Apply(&frame, m.now())
	m.game.Step(frame)

	// Clear input for next frame
	m.input.Clear()
	m = m.syncPhase()

	return m, tickCmd(m.config.TickRate)
}

// handleCountdown advances the writing timer and submits on timeout.
func (m Model) handleCountdown() (tea.Model, tea.Cmd) {
	step := m.opts.Game.Phases.CountdownStep()
	next := countdownCmd(step)
	if m.paused {
		return m, next
	}

	sub, pending := m.game.Countdown(step)
	m = m.syncPhase()
	if !pending {
		return m, next
	}
	m.editor.Blur()
	return m, tea.Batch(next, evaluateCmd(m.opts.Scorer, sub, m.opts.Game.Oracle.Timeout()))
}

// handleEvaluation merges a scoring outcome back into the game.
func (m Model) handleEvaluation(msg EvaluationMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("evaluation failed, using neutral score", "error", msg.Err)
	}
	if !m.game.Resolve(msg.ID, msg.Resp, msg.Err) {
		m.logger.Debug("discarding stale evaluation", "id", msg.ID)
	}
	m = m.syncPhase()
	return m, nil
}

// handleCatalog stores a reloaded catalog until the current run is over.
func (m Model) handleCatalog(msg CatalogMsg) (tea.Model, tea.Cmd) {
	next := watchCmd(m.opts.Watcher)
	switch {
	case msg.Err != nil:
		m.logger.Warn("catalog reload failed, keeping previous content", "error", msg.Err)
		return m, next
	case msg.Catalog == nil:
		return m, next
	}

	if err := msg.Catalog.CheckKeywords(m.game.Config().Run.KeywordCount); err != nil {
		m.logger.Warn("catalog reload rejected, keeping previous content", "error", err)
		return m, next
	}
	m.pending = msg.Catalog
	m.logger.Info("catalog reloaded",
		"archetypes", len(msg.Catalog.Archetypes),
		"prompts", len(msg.Catalog.Prompts),
		"keywords", len(msg.Catalog.Keywords),
	)
	m.applyPendingCatalog()
	return m, next
}

// applyPendingCatalog swaps in a reloaded catalog while no run is active.
func (m *Model) applyPendingCatalog() {
	if m.pending == nil {
		return
	}
	if p := m.game.Phase(); p != game.PhaseIntro && p != game.PhaseEnd {
		return
	}
	if err := m.game.SetCatalog(m.pending); err != nil {
		m.logger.Warn("catalog not applied", "error", err)
	}
	m.pending = nil
}

// syncPhase reacts to phase transitions made by the game.
func (m Model) syncPhase() Model {
	phase := m.game.Phase()
	if phase == m.phase {
		return m
	}
	prev := m.phase
	m.phase = phase

	switch phase {
	case game.PhaseWriting:
		m.held.Release()
		m.editor.Reset()
		m.editor.Focus()
	case game.PhaseMovement:
		m.editor.Blur()
		if prev == game.PhaseEnd || prev == game.PhaseIntro {
			m.saveStatus = ""
		}
	case game.PhaseEnd:
		m.held.Release()
		m.editor.Blur()
		m.paused = false
		m.beginNaming()
		m.applyPendingCatalog()
	}
	return m
}

// beginNaming opens the nickname prompt, or skips it without storage.
func (m *Model) beginNaming() {
	m.saveStatus = ""
	if m.opts.Store == nil {
		m.naming = false
		m.saveStatus = "Leaderboard disabled: run not saved."
		return
	}
	m.naming = true
	m.nick.SetValue(m.opts.Nickname)
	m.nick.CursorEnd()
	m.nick.Focus()
}

// saveRun persists the finished run with its memos.
func (m *Model) saveRun(nickname string) {
	m.naming = false
	m.nick.Blur()

	res, ok := m.game.Result()
	if !ok || m.opts.Store == nil {
		return
	}
	id, err := m.opts.Store.SaveRun(RunRecord(res, nickname))
	if err != nil {
		m.logger.Error("could not save run", "error", err)
		m.saveStatus = warnStyle.Render("Could not save run: " + err.Error())
		return
	}
	m.logger.Debug("run saved", "id", id, "score", res.Score)
	if res.Score > m.highScore {
		m.saveStatus = accentStyle.Render("New high score!")
	} else {
		m.saveStatus = "Run saved."
	}
	m.refreshHighScore()
}

// RunRecord converts a finished run into its leaderboard row.
func RunRecord(res game.Result, nickname string) storage.Run {
	evals := make([]storage.Evaluation, len(res.History))
	for i, ev := range res.History {
		evals[i] = storage.Evaluation{
			Round:   i + 1,
			Prompt:  ev.Prompt,
			Score:   ev.Score,
			Comment: ev.Comment,
			Source:  ev.Source.String(),
		}
	}
	return storage.Run{
		Nickname:    nickname,
		Score:       res.Score,
		Survival:    res.Survival,
		KilledBy:    res.KilledBy,
		Tier:        string(res.Tier),
		Evaluations: evals,
	}
}

func (m *Model) refreshHighScore() {
	if m.opts.Store == nil {
		return
	}
	if hs, err := m.opts.Store.HighScore(); err == nil {
		m.highScore = hs
	}
}

func (m Model) openScoreboard() (tea.Model, tea.Cmd) {
	sb := NewScoreboardModel(m.opts.Store, m.config.ScreenW, m.config.ScreenH)
	m.scoreboard = &sb
	return m, sb.Init()
}

// updateScoreboard forwards a message to the embedded leaderboard.
func (m Model) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	if sb, ok := next.(ScoreboardModel); ok {
		m.scoreboard = &sb
	}
	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		m.scoreboard = nil
		return m, nil
	}
	return m, cmd
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	if m.opts.ScreenshotDir == "" {
		return
	}
	m.game.Render(m.screen)

	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(m.opts.ScreenshotDir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(m.opts.ScreenshotDir, fmt.Sprintf("buzzword_%s.txt", timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.scoreboard != nil {
		return m.scoreboard.View()
	}

	w, h := m.config.ScreenW, m.config.ScreenH
	switch m.game.Phase() {
	case game.PhaseIntro:
		return introView(m.menu, m.highScore, w)

	case game.PhaseWriting:
		panel := writingView(m.game.Snapshot(), m.editor.View(), w)
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)

	case game.PhaseEnd:
		nick := ""
		if m.naming {
			nick = m.nick.View()
		}
		panel := endView(m.game.Snapshot(), nick, m.saveStatus, w)
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + m.footer()
}

// footer is the status row below the playfield.
func (m Model) footer() string {
	if m.paused {
		return accentStyle.Render("PAUSED  (P to resume)")
	}
	if line := lastResultLine(m.game.Snapshot()); line != "" {
		return line
	}
	return dimStyle.Render("A/D: move  |  Space: jump  |  P: pause  |  Q: quit")
}

// Game exposes the underlying game, mainly for tests.
func (m Model) Game() *game.Game {
	return m.game
}

// Run starts the Bubble Tea program for a local session.
func Run(opts Options, cfg core.RuntimeConfig) error {
	model := NewModel(opts, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
