package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/game"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
	"github.com/vovakirdan/buzzword-dodge/internal/platform/tui"
	"github.com/vovakirdan/buzzword-dodge/internal/storage"
)

var (
	flagSimDuration time.Duration
	flagSimOracle   bool
	flagSimSave     bool
	flagSimVerbose  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted headless game",
	Long: `Run a full game without a terminal UI. A simple bot dodges objects and
writes a memo that uses every requested keyword. Scoring is offline unless
--oracle is given.

Examples:
  buzzword simulate --seed 42
  buzzword simulate --seed 42 --duration 2m --verbose
  buzzword simulate --oracle --save`,
	Args: cobra.NoArgs,
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().DurationVar(&flagSimDuration, "duration", 5*time.Minute, "Maximum simulated time")
	simulateCmd.Flags().BoolVar(&flagSimOracle, "oracle", false, "Score memos with the configured evaluator")
	simulateCmd.Flags().BoolVar(&flagSimSave, "save", false, "Save the run to the leaderboard")
	simulateCmd.Flags().BoolVarP(&flagSimVerbose, "verbose", "v", false, "Log every phase change")
}

func runSimulate(cmd *cobra.Command, args []string) {
	gameCfg, cat, err := loadSettings()
	if err != nil {
		fail("%v", err)
	}

	var logOut io.Writer = io.Discard
	if flagSimVerbose {
		logOut = os.Stderr
	}
	logger := newLogger(logOut, "simulate")

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runtime := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: flagFPS, Seed: seed}

	var scorer oracle.Scorer = oracle.Offline{}
	if flagSimOracle {
		scorer = newScorer(gameCfg, logger)
	}

	g := game.New(runtime, gameCfg, cat)
	g.Start()

	dt := runtime.TickInterval()
	limit := int(flagSimDuration / dt)
	phase := g.Phase()
	for range limit {
		switch g.Phase() {
		case game.PhaseMovement:
			g.Tick(dt, steer(g.Snapshot(), gameCfg))
		case game.PhaseWriting:
			s := g.Snapshot()
			g.SetText(composeMemo(s.Challenge.Prompt, s.Challenge.Keywords))
			ctx, cancel := context.WithTimeout(context.Background(), gameCfg.Oracle.Timeout())
			res, ok := g.SubmitAndWait(ctx, scorer)
			cancel()
			if ok {
				logger.Info("memo scored", "score", res.Score, "source", res.Source, "tier", g.Tier())
			}
		}
		if g.Phase() != phase {
			logger.Debug("phase change", "from", phase, "to", g.Phase(), "lives", g.Lives(), "score", g.Score())
			phase = g.Phase()
		}
		if phase == game.PhaseEnd {
			break
		}
	}

	s := g.Snapshot()
	fmt.Printf("Seed:       %d\n", seed)
	fmt.Printf("Outcome:    %s\n", outcome(s))
	fmt.Printf("Score:      %d\n", s.Score)
	fmt.Printf("Survived:   %.1fs\n", s.Survival.Seconds())
	fmt.Printf("Lives left: %d/%d\n", s.Lives, s.MaxLives)
	fmt.Printf("Difficulty: %s\n", s.Tier.Label())
	if len(s.History) > 0 {
		fmt.Println()
		fmt.Println("Memos:")
		for i, ev := range s.History {
			fmt.Printf("  %d. %4.1f  [%s] %s\n", i+1, ev.Score, ev.Source, ev.Comment)
		}
	}

	if !flagSimSave {
		return
	}
	res, ok := g.Result()
	if !ok {
		fmt.Fprintln(os.Stderr, "Warning: run did not end, not saved")
		return
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening scores database: %v", err)
	}
	defer store.Close()
	id, err := store.SaveRun(tui.RunRecord(res, "simulator"))
	if err != nil {
		fail("saving run: %v", err)
	}
	fmt.Printf("\nSaved run %s\n", id)
}

func outcome(s game.RunState) string {
	if s.Phase == game.PhaseEnd {
		return "taken out by " + s.KilledBy
	}
	return "still standing when time ran out"
}

// steer moves the bot away from the nearest object falling into its column.
func steer(s game.RunState, cfg config.GameConfig) core.InputFrame {
	in := core.NewInputFrame()
	player := core.NewRect(s.Player.X, s.Player.Y, cfg.Player.Width, cfg.Player.Height)
	danger := core.NewRect(player.X-cfg.Player.Width/2, 0, player.W*2, player.Bottom())

	var threat *game.FallingObject
	for i := range s.Objects {
		o := &s.Objects[i]
		if o.Bounds().Intersects(danger) && (threat == nil || o.Y > threat.Y) {
			threat = o
		}
	}
	if threat == nil {
		return in
	}

	center := player.X + player.W/2
	threatCenter := threat.X + threat.W/2
	goLeft := center < threatCenter
	if goLeft && player.X <= 0 {
		goLeft = false
	}
	if !goLeft && player.Right() >= cfg.Playfield.Width {
		goLeft = true
	}
	if goLeft {
		in.Set(core.ActionLeft)
	} else {
		in.Set(core.ActionRight)
	}
	return in
}

// composeMemo writes the bot's memo, using every keyword once.
func composeMemo(prompt string, keywords []catalog.Keyword) string {
	words := catalog.Words(keywords)
	var b strings.Builder
	b.WriteString("Thrilled to share an update. ")
	if len(words) > 0 {
		fmt.Fprintf(&b, "This quarter we focused on %s. ", strings.Join(words, ", "))
	}
	b.WriteString("Grateful for a team that turns every challenge into growth. ")
	fmt.Fprintf(&b, "(%s)", strings.TrimSuffix(prompt, "."))
	return b.String()
}
