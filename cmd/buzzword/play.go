package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/platform/tui"
	"github.com/vovakirdan/buzzword-dodge/internal/storage"
)

var (
	flagLogFile  string
	flagWatch    bool
	flagNickname string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start a game in the terminal.

Controls:
  A/D, Left/Right - Move
  Space/W/Up      - Jump
  P/Esc           - Pause
  Enter           - Submit the memo
  R               - Try again (after the run ended)
  Q/Ctrl+C        - Quit
  Ctrl+S          - Save a screenshot to ~/.buzzword/screenshots

Memos are scored by the evaluator at BUZZWORD_EVALUATE_URL (or oracle.url
in the config). Without one, a local heuristic scores them.

Difficulty options:
  easy   - Looser score thresholds, more writing time
  normal - Config as is
  hard   - Stricter thresholds, less writing time

Examples:
  buzzword play
  buzzword play --difficulty hard
  buzzword play --catalog ./catalog.yaml --watch
  buzzword play --log ./buzzword.log`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLogFile, "log", "", "Write logs to this file (logs are discarded otherwise)")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the --catalog file when it changes")
	playCmd.Flags().StringVar(&flagNickname, "nickname", os.Getenv("USER"), "Default leaderboard name")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameCfg, cat, err := loadSettings()
	if err != nil {
		fail("%v", err)
	}

	// The alt screen owns the terminal, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if flagLogFile != "" {
		f, openErr := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if openErr != nil {
			fail("cannot open log file: %v", openErr)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, "buzzword")

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	var watcher *catalog.Watcher
	if flagWatch {
		if flagCatalog == "" {
			fail("--watch needs --catalog")
		}
		watcher, err = catalog.NewWatcher(flagCatalog)
		if err != nil {
			fail("cannot watch catalog: %v", err)
		}
		defer watcher.Close()
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	runErr := tui.Run(tui.Options{
		Game:          gameCfg,
		Catalog:       cat,
		Scorer:        newScorer(gameCfg, logger),
		Store:         store,
		Watcher:       watcher,
		Logger:        logger,
		Nickname:      flagNickname,
		ScreenshotDir: config.UserPath("screenshots"),
	}, cfg)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fail("running game: %v", runErr)
	}
}
