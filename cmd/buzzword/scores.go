package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/buzzword-dodge/internal/platform/tui"
	"github.com/vovakirdan/buzzword-dodge/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresTUI   bool
	flagScoresYes   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the top runs and overall stats.

Examples:
  buzzword scores
  buzzword scores --limit 25
  buzzword scores --tui
  buzzword scores run <id>
  buzzword scores clear`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

var scoresRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Show one run and its memos",
	Args:  cobra.ExactArgs(1),
	Run:   runScoresRun,
}

var scoresClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved run",
	Args:  cobra.NoArgs,
	Run:   runScoresClear,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse the leaderboard interactively")
	scoresClearCmd.Flags().BoolVarP(&flagScoresYes, "yes", "y", false, "Do not ask for confirmation")

	scoresCmd.AddCommand(scoresRunCmd)
	scoresCmd.AddCommand(scoresClearCmd)
}

func openStoreOrExit() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening scores database: %v", err)
	}
	return store
}

func runScores(cmd *cobra.Command, args []string) {
	store := openStoreOrExit()
	defer store.Close()

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(store, width, height); err != nil {
			fail("%v", err)
		}
		return
	}

	runs, err := store.TopRuns(flagScoresLimit)
	if err != nil {
		fail("retrieving runs: %v", err)
	}

	fmt.Println("Buzzword Dodge - Leaderboard")
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'buzzword play' to set the first high score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-16s  %-7s  %-8s  %-22s  %s\n", "Rank", "Name", "Score", "Survived", "Killed by", "Date")
	fmt.Printf("  %-4s  %-16s  %-7s  %-8s  %-22s  %s\n", "----", "----", "-----", "--------", "---------", "----")

	for i, r := range runs {
		fmt.Printf("  %-4d  %-16s  %-7d  %-8s  %-22s  %s\n",
			i+1,
			r.DisplayName(),
			r.Score,
			fmt.Sprintf("%ds", int(r.Survival.Seconds())),
			r.KilledBy,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}

	stats, err := store.Stats()
	if err == nil && stats.Runs > 0 {
		fmt.Println()
		fmt.Printf("Runs: %d   Best: %d   Average: %.0f   Longest: %ds\n",
			stats.Runs, stats.HighScore, stats.AvgScore, int(stats.LongestSurvival.Seconds()))
		fmt.Printf("Memos: %d   Average memo score: %.1f\n", stats.Evaluations, stats.AvgWritingScore)
	}
}

func runScoresRun(cmd *cobra.Command, args []string) {
	store := openStoreOrExit()
	defer store.Close()

	run, err := store.RunByID(args[0])
	if err != nil {
		fail("%v", err)
	}
	if run == nil {
		fail("no run with id %q", args[0])
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Name:       %s\n", run.DisplayName())
	fmt.Printf("  Score:      %d\n", run.Score)
	fmt.Printf("  Survived:   %.1fs\n", run.Survival.Seconds())
	fmt.Printf("  Killed by:  %s\n", run.KilledBy)
	fmt.Printf("  Difficulty: %s\n", run.Tier)
	fmt.Printf("  Played:     %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04"))

	if len(run.Evaluations) == 0 {
		return
	}
	fmt.Println()
	for _, ev := range run.Evaluations {
		fmt.Printf("  %d. %4.1f [%s] %s\n", ev.Round, ev.Score, ev.Source, ev.Prompt)
		if ev.Comment != "" {
			fmt.Printf("     %s\n", ev.Comment)
		}
	}
}

func runScoresClear(cmd *cobra.Command, args []string) {
	if !flagScoresYes {
		fmt.Print("Delete every saved run? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	store := openStoreOrExit()
	defer store.Close()

	if err := store.ClearRuns(); err != nil {
		fail("clearing runs: %v", err)
	}
	fmt.Println("Leaderboard cleared.")
}
