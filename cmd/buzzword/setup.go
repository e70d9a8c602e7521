package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
)

// loadSettings resolves the game config and content catalog from the
// global flags, the dotenv file and the environment.
func loadSettings() (config.GameConfig, *catalog.Catalog, error) {
	if err := config.LoadEnv(flagEnvFile); err != nil {
		return config.GameConfig{}, nil, fmt.Errorf("cannot load %s: %w", flagEnvFile, err)
	}

	cfg, err := config.LoadGame(flagConfig)
	if err != nil {
		return config.GameConfig{}, nil, err
	}
	config.ApplyEnv(&cfg)

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.GameConfig{}, nil, err
	}
	config.ApplyPreset(&cfg, preset)

	cat, err := catalog.Load(flagCatalog)
	if err != nil {
		return config.GameConfig{}, nil, err
	}
	if err := cat.CheckKeywords(cfg.Run.KeywordCount); err != nil {
		return config.GameConfig{}, nil, fmt.Errorf("%s: %w", flagCatalog, err)
	}
	return cfg, cat, nil
}

// newScorer returns the HTTP oracle when an evaluator URL is configured
// and the offline heuristic otherwise.
func newScorer(cfg config.GameConfig, logger *log.Logger) oracle.Scorer {
	if cfg.Oracle.URL == "" {
		logger.Info("no evaluator configured, scoring offline")
		return oracle.Offline{}
	}
	logger.Info("using evaluator", "url", cfg.Oracle.URL, "timeout", cfg.Oracle.Timeout())
	return oracle.NewClient(cfg.Oracle.URL, oracle.WithLogger(logger))
}

func newLogger(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}

// fail prints an error and exits the way every command does.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
