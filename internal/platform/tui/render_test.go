package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/storage"
)

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawTextColored(0, 0, "ab", core.ColorRed)
	s.DrawTextColored(2, 0, "cd", core.ColorGreen)
	s.DrawText(0, 1, "xyz")

	out := RenderScreen(s)
	for _, want := range []string{"ab", "cd", "xyz"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered screen is missing %q: %q", want, out)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected one line break, got %q", out)
	}
}

func TestRenderHighlightedKeepsText(t *testing.T) {
	kws := []catalog.Keyword{{Word: "synergy", Color: "violet"}, {Word: "impact", Color: "nope"}}
	out := RenderHighlighted("Synergy drives impact.", kws)
	for _, want := range []string{"Synergy", " drives ", "impact", "."} {
		if !strings.Contains(out, want) {
			t.Errorf("highlighted text is missing %q: %q", want, out)
		}
	}
}

func TestKeywordChipsMarkUsed(t *testing.T) {
	kws := []catalog.Keyword{{Word: "synergy"}, {Word: "pivot"}}
	out := renderKeywordChips(kws, "so much SYNERGY")
	if !strings.Contains(out, "✓ synergy") {
		t.Errorf("used keyword should be checked: %q", out)
	}
	if !strings.Contains(out, "· pivot") {
		t.Errorf("unused keyword should not be checked: %q", out)
	}
}

func TestTimeBar(t *testing.T) {
	tests := []struct {
		remaining, limit time.Duration
		filled           int
	}{
		{30 * time.Second, 30 * time.Second, 20},
		{15 * time.Second, 30 * time.Second, 10},
		{0, 30 * time.Second, 0},
		{40 * time.Second, 30 * time.Second, 20},
		{time.Second, 0, 20},
	}

	for _, tc := range tests {
		out := timeBar(tc.remaining, tc.limit, 20)
		if got := strings.Count(out, "█"); got != tc.filled {
			t.Errorf("timeBar(%v, %v) filled %d cells, expected %d", tc.remaining, tc.limit, got, tc.filled)
		}
		if got := strings.Count(out, "█") + strings.Count(out, "░"); got != 20 {
			t.Errorf("timeBar(%v, %v) has %d cells, expected 20", tc.remaining, tc.limit, got)
		}
	}

	if timeBar(time.Second, time.Second, 0) != "" {
		t.Error("zero width bar should be empty")
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q", got)
	}
	if got := centerText("toolong", 3); got != "toolong" {
		t.Errorf("text wider than the screen should be unchanged, got %q", got)
	}
	if got := centerText("ééé", 7); got != "  ééé" {
		t.Errorf("centering should count runes, got %q", got)
	}
}

func TestMenuCursorStaysOnList(t *testing.T) {
	var m menuState
	m.move(-1)
	if m.selected() != MenuStart {
		t.Errorf("cursor moved above the first item: %v", m.selected())
	}
	m.move(10)
	if m.selected() != MenuQuit {
		t.Errorf("cursor moved past the last item: %v", m.selected())
	}
}

func TestScoreboardShowsRuns(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("storage.Open failed: %v", err)
	}
	defer store.Close()

	runs := []storage.Run{
		{Nickname: "ana", Score: 300, Survival: 30 * time.Second, KilledBy: "OKR Card",
			Evaluations: []storage.Evaluation{{Round: 1, Prompt: "Ship it.", Score: 8, Comment: "Crisp."}}},
		{Score: 100, Survival: 10 * time.Second, KilledBy: "Toast"},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	m := NewScoreboardModel(store, 120, 30)
	view := m.View()
	for _, want := range []string{"ana", storage.AnonymousName, "OKR Card", "High score:  300"} {
		if !strings.Contains(view, want) {
			t.Errorf("scoreboard view is missing %q", want)
		}
	}

	// Top row is selected; enter shows its memos
	m.loadDetails()
	if !m.showDetails || len(m.details) != 1 {
		t.Fatalf("expected details of the top run, got %v", m.details)
	}
	if !strings.Contains(m.View(), "Crisp.") {
		t.Error("details should list the memo comments")
	}
}

func TestScoreboardWithoutStore(t *testing.T) {
	m := NewScoreboardModel(nil, 60, 20)
	if !strings.Contains(m.View(), "no database") {
		t.Error("scoreboard without storage should say it is unavailable")
	}
}
