package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/evaluator"
)

var (
	flagEvalAddr       string
	flagEvalTimeout    time.Duration
	flagEvalSoftFloor  bool
	flagEvalPerKeyword float64
)

var evaluatorCmd = &cobra.Command{
	Use:   "evaluator",
	Short: "Serve the text evaluation HTTP route",
	Long: `Start the HTTP service that scores memos with an OpenAI-compatible model.

Routes:
  POST /api/evaluate  {"text": "...", "prompt": "...", "keywords": ["..."]}
  GET  /health

Settings are read from the environment (or the --env-file):
  OPENAI_API_KEY   - required; without it every evaluation answers 500
  OPENAI_MODEL     - model name (default gpt-4o-mini)
  OPENAI_BASE_URL  - alternative API base URL

Point the game at it with BUZZWORD_EVALUATE_URL=http://localhost:8787/api/evaluate

Examples:
  buzzword evaluator
  buzzword evaluator --addr :9000 --soft-floor --per-keyword 1.5`,
	Args: cobra.NoArgs,
	Run:  runEvaluator,
}

func init() {
	evaluatorCmd.Flags().StringVar(&flagEvalAddr, "addr", ":8787", "HTTP listen address")
	evaluatorCmd.Flags().DurationVar(&flagEvalTimeout, "model-timeout", 20*time.Second, "Deadline for each model call")
	evaluatorCmd.Flags().BoolVar(&flagEvalSoftFloor, "soft-floor", false, "Raise scores to a floor based on keyword usage")
	evaluatorCmd.Flags().Float64Var(&flagEvalPerKeyword, "per-keyword", 1.0, "Soft floor points per used keyword")
}

func runEvaluator(cmd *cobra.Command, args []string) {
	logger := newLogger(os.Stderr, "evaluator")

	if err := config.LoadEnv(flagEnvFile); err != nil {
		fail("cannot load %s: %v", flagEnvFile, err)
	}
	env := config.EvaluatorFromEnv()
	if env.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; evaluations will fail with 500")
	}

	srv := evaluator.NewServer(evaluator.Config{
		APIKey:  env.APIKey,
		Model:   env.Model,
		BaseURL: env.BaseURL,
		Timeout: flagEvalTimeout,
		SoftFloor: evaluator.SoftFloor{
			Enabled:    flagEvalSoftFloor,
			PerKeyword: flagEvalPerKeyword,
		},
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:         flagEvalAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: flagEvalTimeout + 10*time.Second,
	}

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting evaluator", "address", flagEvalAddr, "model", env.Model, "soft_floor", flagEvalSoftFloor)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		fail("server: %v", err)
	case <-done:
	}

	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
