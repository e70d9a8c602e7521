package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveRunAssignsUUID(t *testing.T) {
	store := openTemp(t)

	id, err := store.SaveRun(Run{Nickname: "  ada  ", Score: 420, Survival: 42 * time.Second, KilledBy: "OKR Card", Tier: "heavy"})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("run id %q is not a UUID: %v", id, err)
	}

	run, err := store.RunByID(id)
	if err != nil || run == nil {
		t.Fatalf("RunByID() = %v, %v", run, err)
	}
	if run.Nickname != "ada" || run.Score != 420 || run.Survival != 42*time.Second {
		t.Errorf("stored run = %+v", run)
	}
	if run.KilledBy != "OKR Card" || run.Tier != "heavy" {
		t.Errorf("stored run = %+v", run)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	missing, err := store.RunByID(uuid.NewString())
	if err != nil || missing != nil {
		t.Errorf("RunByID() for an unknown id = %v, %v", missing, err)
	}
}

func TestStoreTopRuns(t *testing.T) {
	store := openTemp(t)

	runs := []Run{
		{Nickname: "a", Score: 100, Survival: 10 * time.Second},
		{Nickname: "b", Score: 300, Survival: 30 * time.Second},
		{Nickname: "", Score: 200, Survival: 20 * time.Second},
		{Nickname: "d", Score: 200, Survival: 25 * time.Second},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	top, err := store.TopRuns(10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	want := []string{"b", "d", AnonymousName, "a"}
	if len(top) != len(want) {
		t.Fatalf("TopRuns() returned %d runs", len(top))
	}
	for i, name := range want {
		if top[i].DisplayName() != name {
			t.Errorf("rank %d = %q, expected %q", i+1, top[i].DisplayName(), name)
		}
	}

	limited, err := store.TopRuns(2)
	if err != nil || len(limited) != 2 {
		t.Errorf("TopRuns(2) = %d runs, %v", len(limited), err)
	}
}

func TestStoreTopRunsDefaultLimit(t *testing.T) {
	store := openTemp(t)
	for i := 0; i < 15; i++ {
		if _, err := store.SaveRun(Run{Score: i}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	top, err := store.TopRuns(0)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 10 || top[0].Score != 14 {
		t.Errorf("TopRuns(0) = %d runs, first score %d", len(top), top[0].Score)
	}
}

func TestStoreEvaluations(t *testing.T) {
	store := openTemp(t)

	id, err := store.SaveRun(Run{
		Score: 50,
		Evaluations: []Evaluation{
			{Prompt: "Announce a milestone.", Score: 7.5, Comment: "Solid.", Source: "oracle"},
			{Prompt: "Share an update.", Score: 5, Comment: "Evaluation failed; using a neutral difficulty.", Source: "fallback"},
			{Prompt: "Reflect.", Score: 0, Comment: "No content provided.", Source: "empty"},
		},
	})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	evals, err := store.RunEvaluations(id)
	if err != nil {
		t.Fatalf("RunEvaluations() failed: %v", err)
	}
	if len(evals) != 3 {
		t.Fatalf("got %d evaluations", len(evals))
	}
	for i, e := range evals {
		if e.Round != i+1 {
			t.Errorf("evaluation %d has round %d", i, e.Round)
		}
	}
	if evals[0].Score != 7.5 || evals[1].Source != "fallback" || evals[2].Comment != "No content provided." {
		t.Errorf("evaluations = %+v", evals)
	}
}

func TestStoreNicknameTruncated(t *testing.T) {
	store := openTemp(t)
	id, err := store.SaveRun(Run{Nickname: strings.Repeat("é", 40)})
	if err != nil {
		t.Fatal(err)
	}
	run, _ := store.RunByID(id)
	if n := len([]rune(run.Nickname)); n != MaxNicknameLen {
		t.Errorf("nickname has %d runes, expected %d", n, MaxNicknameLen)
	}
}

func TestStoreHighScoreAndStats(t *testing.T) {
	store := openTemp(t)

	high, err := store.HighScore()
	if err != nil || high != 0 {
		t.Errorf("HighScore() on empty db = %d, %v", high, err)
	}
	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Runs != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", stats)
	}

	store.SaveRun(Run{Score: 100, Survival: 12 * time.Second, Evaluations: []Evaluation{{Prompt: "p", Score: 8}}})
	store.SaveRun(Run{Score: 300, Survival: 31 * time.Second, Evaluations: []Evaluation{{Prompt: "p", Score: 4}, {Prompt: "q", Score: 6}}})

	high, _ = store.HighScore()
	if high != 300 {
		t.Errorf("HighScore() = %d, expected 300", high)
	}

	stats, err = store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Runs != 2 || stats.HighScore != 300 || stats.AvgScore != 200 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LongestSurvival != 31*time.Second {
		t.Errorf("longest survival = %v", stats.LongestSurvival)
	}
	if stats.Evaluations != 3 || stats.AvgWritingScore != 6 {
		t.Errorf("evaluation stats = %d, %v", stats.Evaluations, stats.AvgWritingScore)
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTemp(t)
	id, _ := store.SaveRun(Run{Score: 10, Evaluations: []Evaluation{{Prompt: "p", Score: 1}}})

	if err := store.ClearRuns(); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}
	top, _ := store.TopRuns(10)
	evals, _ := store.RunEvaluations(id)
	if len(top) != 0 || len(evals) != 0 {
		t.Errorf("after clear: %d runs, %d evaluations", len(top), len(evals))
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	testDir := filepath.Join(home, ".buzzword-test-"+uuid.NewString()[:8])
	defer os.RemoveAll(testDir)

	store, err := Open("~/" + filepath.Base(testDir) + "/scores.db")
	if err != nil {
		t.Fatalf("Open() with ~ path failed: %v", err)
	}
	store.Close()

	if _, err := os.Stat(filepath.Join(testDir, "scores.db")); os.IsNotExist(err) {
		t.Error("Database was not created at the expanded path")
	}
}
