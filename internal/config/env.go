package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by the evaluator and the oracle client.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIModel   = "OPENAI_MODEL"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvEvaluateURL   = "BUZZWORD_EVALUATE_URL"
)

// DefaultModel is used when OPENAI_MODEL is not set.
const DefaultModel = "gpt-4o-mini"

// LoadEnv loads variables from .env files into the process environment.
// Missing files are not an error; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// EvaluatorEnv holds the settings of the evaluation service.
type EvaluatorEnv struct {
	APIKey  string
	Model   string
	BaseURL string
}

// EvaluatorFromEnv reads the evaluation service settings.
func EvaluatorFromEnv() EvaluatorEnv {
	env := EvaluatorEnv{
		APIKey:  os.Getenv(EnvOpenAIKey),
		Model:   os.Getenv(EnvOpenAIModel),
		BaseURL: os.Getenv(EnvOpenAIBaseURL),
	}
	if env.Model == "" {
		env.Model = DefaultModel
	}
	return env
}

// ApplyEnv overrides config values with environment variables.
func ApplyEnv(cfg *GameConfig) {
	if url := os.Getenv(EnvEvaluateURL); url != "" {
		cfg.Oracle.URL = url
	}
}
