// Package storage provides SQLite-based persistence for finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// AnonymousName is shown for runs saved without a nickname.
const AnonymousName = "Anonymous"

// MaxNicknameLen bounds stored nicknames, in runes.
const MaxNicknameLen = 24

// Store manages the SQLite database connection for the leaderboard.
type Store struct {
	db *sql.DB
}

// Run is one finished run.
type Run struct {
	ID          string
	Nickname    string
	Score       int
	Survival    time.Duration
	KilledBy    string
	Tier        string
	CreatedAt   time.Time
	Evaluations []Evaluation
}

// DisplayName returns the nickname, or AnonymousName when none was given.
func (r Run) DisplayName() string {
	if r.Nickname == "" {
		return AnonymousName
	}
	return r.Nickname
}

// Evaluation is one scored writing challenge of a run.
type Evaluation struct {
	Round   int
	Prompt  string
	Score   float64
	Comment string
	Source  string
}

// Stats contains aggregated statistics over all runs.
type Stats struct {
	Runs            int
	HighScore       int
	AvgScore        float64
	LongestSurvival time.Duration
	Evaluations     int
	AvgWritingScore float64
	LastPlayed      time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY under concurrent SSH sessions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			nickname TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			survival_ms INTEGER NOT NULL DEFAULT 0,
			killed_by TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(score DESC, survival_ms DESC);

		CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			round INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			score REAL NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_evaluations_run ON evaluations(run_id, round);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run and its evaluations in one transaction.
// A run without an ID gets a new UUID. Returns the run ID.
func (s *Store) SaveRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.Nickname = cleanNickname(run.Nickname)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	_, err = tx.Exec(
		`INSERT INTO runs (id, nickname, score, survival_ms, killed_by, tier)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Nickname, run.Score, run.Survival.Milliseconds(), run.KilledBy, run.Tier,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	for i, ev := range run.Evaluations {
		round := ev.Round
		if round == 0 {
			round = i + 1
		}
		_, err = tx.Exec(
			`INSERT INTO evaluations (run_id, round, prompt, score, comment, source)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, round, ev.Prompt, ev.Score, ev.Comment, ev.Source,
		)
		if err != nil {
			return "", fmt.Errorf("storage: cannot save evaluation %d: %w", round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return run.ID, nil
}

// TopRuns retrieves the best runs, highest score first. Ties go to the
// longer survival, then to the earlier run.
func (s *Store) TopRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, nickname, score, survival_ms, killed_by, tier, created_at
		 FROM runs
		 ORDER BY score DESC, survival_ms DESC, created_at ASC, rowid ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var survivalMS int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Nickname, &r.Score, &survivalMS, &r.KilledBy, &r.Tier, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Survival = time.Duration(survivalMS) * time.Millisecond
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RunEvaluations retrieves the evaluation history of a run in round order.
func (s *Store) RunEvaluations(runID string) ([]Evaluation, error) {
	rows, err := s.db.Query(
		`SELECT round, prompt, score, comment, source
		 FROM evaluations
		 WHERE run_id = ?
		 ORDER BY round ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		var e Evaluation
		if err := rows.Scan(&e.Round, &e.Prompt, &e.Score, &e.Comment, &e.Source); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		evals = append(evals, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return evals, nil
}

// RunByID retrieves a single run with its evaluations.
// Returns nil without error when the run does not exist.
func (s *Store) RunByID(id string) (*Run, error) {
	var r Run
	var survivalMS int64
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, nickname, score, survival_ms, killed_by, tier, created_at
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Nickname, &r.Score, &survivalMS, &r.KilledBy, &r.Tier, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	r.Survival = time.Duration(survivalMS) * time.Millisecond
	r.CreatedAt = parseTime(createdAt)

	r.Evaluations, err = s.RunEvaluations(id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HighScore returns the highest saved score, or 0 if there are no runs.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(score) FROM runs").Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// Stats retrieves aggregated statistics over all runs.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}

	var longestMS int64
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(MAX(survival_ms), 0), MAX(created_at)
		 FROM runs`,
	).Scan(&stats.Runs, &stats.HighScore, &stats.AvgScore, &longestMS, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}
	stats.LongestSurvival = time.Duration(longestMS) * time.Millisecond
	stats.LastPlayed = parseTime(lastPlayed)

	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(score), 0) FROM evaluations`,
	).Scan(&stats.Evaluations, &stats.AvgWritingScore)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get evaluation stats: %w", err)
	}

	return stats, nil
}

// ClearRuns deletes all runs and their evaluations.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM evaluations"); err != nil {
		return fmt.Errorf("storage: cannot clear evaluations: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

func cleanNickname(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxNicknameLen {
		name = string(r[:MaxNicknameLen])
	}
	return name
}

// parseTime handles both time.Time and the text form SQLite returns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
