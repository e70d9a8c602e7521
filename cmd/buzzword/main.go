// buzzword is a terminal minigame about surviving corporate content.
//
// Usage:
//
//	buzzword play            - Play in the terminal
//	buzzword simulate        - Run a scripted headless game and print the summary
//	buzzword evaluator       - Serve the text evaluation HTTP route
//	buzzword serve           - Start SSH server for remote play
//	buzzword scores          - Show the leaderboard
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Set database path (default: ~/.buzzword/scores.db)
//	--config <path>     - Game config YAML
//	--catalog <path>    - Content catalog YAML
//	--difficulty <name> - Difficulty preset: easy, normal, hard
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagCatalog    string
	flagDifficulty string
	flagEnvFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "buzzword",
	Short: "Buzzword Dodge - dodge the decks, write the memo",
	Long: `Buzzword Dodge is a terminal minigame. Dodge falling UI mockups, then
write a short corporate update under time pressure. An evaluator scores
your prose and the score decides how hard the next round gets.

Available commands:
  play       - Play in the terminal
  simulate   - Run a headless scripted game
  evaluator  - Serve the evaluation HTTP route
  serve      - Start SSH server for remote play
  scores     - View the leaderboard

Examples:
  buzzword play
  buzzword play --difficulty easy --catalog ./my-catalog.yaml --watch
  buzzword evaluator --addr :8787
  buzzword serve --ssh :2222
  buzzword scores`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.buzzword/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Path to custom content catalog YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file with evaluator settings")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(evaluatorCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}
