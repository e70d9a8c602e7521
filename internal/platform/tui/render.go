package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/game"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// Panel styles shared by the overlays.
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func styleFor(c core.Color) lipgloss.Style {
	style, ok := colorStyles[c]
	if !ok {
		return colorStyles[core.ColorDefault]
	}
	return style
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(styleFor(startColor).Render(run.String()))
		}
	}
	return sb.String()
}

// keywordStyle returns the highlight style of a keyword.
func keywordStyle(k catalog.Keyword) lipgloss.Style {
	c := core.ParseColor(k.Color)
	if c == core.ColorDefault {
		c = core.ColorBrightYellow
	}
	return styleFor(c).Bold(true)
}

// RenderHighlighted renders text with every keyword occurrence in the
// keyword's color.
func RenderHighlighted(text string, keywords []catalog.Keyword) string {
	var sb strings.Builder
	for _, seg := range catalog.Highlight(text, keywords) {
		if seg.Keyword < 0 {
			sb.WriteString(seg.Text)
			continue
		}
		sb.WriteString(keywordStyle(keywords[seg.Keyword]).Underline(true).Render(seg.Text))
	}
	return sb.String()
}

// renderKeywordChips lists the requested keywords, marking those already
// used in text.
func renderKeywordChips(keywords []catalog.Keyword, text string) string {
	chips := make([]string, len(keywords))
	for i, k := range keywords {
		mark := "·"
		if catalog.CountUsed(text, []string{k.Word}) > 0 {
			mark = "✓"
		}
		chips[i] = keywordStyle(k).Render(mark + " " + k.Word)
	}
	return strings.Join(chips, "   ")
}

// timeBar draws the remaining writing time as a shrinking bar.
func timeBar(remaining, limit time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	filled := width
	if limit > 0 {
		filled = int(float64(width) * remaining.Seconds() / limit.Seconds())
	}
	filled = core.Min(width, core.Max(0, filled))

	style := styleFor(core.ColorBrightGreen)
	switch {
	case remaining <= 5*time.Second:
		style = styleFor(core.ColorBrightRed)
	case remaining <= 10*time.Second:
		style = styleFor(core.ColorBrightYellow)
	}
	return style.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// writingView composes the writing challenge panel around the editor view.
func writingView(s game.RunState, editor string, width int) string {
	c := s.Challenge
	if c == nil {
		return ""
	}
	inner := core.Max(20, core.Min(width-8, 72))

	var b strings.Builder
	b.WriteString(titleStyle.Render("NEW MEMO FROM LEADERSHIP"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(inner).Render(c.Prompt))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Work these in: "))
	b.WriteString(renderKeywordChips(c.Keywords, c.Text))
	b.WriteString("\n\n")
	b.WriteString(editor)
	b.WriteString("\n\n")
	if strings.TrimSpace(c.Text) != "" {
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(RenderHighlighted(c.Text, c.Keywords)))
		b.WriteString("\n\n")
	}
	b.WriteString(timeBar(c.Remaining, c.TimeLimit, inner-8))
	b.WriteString(fmt.Sprintf(" %4.1fs", c.Remaining.Seconds()))
	b.WriteString("\n")

	if s.Evaluating {
		b.WriteString(accentStyle.Render("Evaluating your thought leadership..."))
	} else {
		b.WriteString(dimStyle.Render("Enter: submit  |  Ctrl+C: quit"))
	}

	return panelStyle.Render(b.String())
}

// lastResultLine renders the banner shown after a challenge resolves.
func lastResultLine(s game.RunState) string {
	if s.LastScore == nil {
		return ""
	}
	line := fmt.Sprintf("Last memo: %.1f/10 → %s", *s.LastScore, s.Tier.Label())
	if s.LastComment != "" {
		line += "  " + dimStyle.Render(s.LastComment)
	}
	return line
}

// endView renders the run summary. nickname is the prompt view, or empty
// once the run was saved or skipped.
func endView(s game.RunState, nickname, status string, width int) string {
	inner := core.Max(20, core.Min(width-8, 72))

	var b strings.Builder
	b.WriteString(warnStyle.Bold(true).Render("YOU HAVE BEEN RESTRUCTURED"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Score: %d   Survived: %ds   Final difficulty: %s\n",
		s.Score, int(s.Survival.Seconds()), s.Tier.Label()))
	if s.KilledBy != "" {
		b.WriteString(fmt.Sprintf("Taken out by: %s\n", accentStyle.Render(s.KilledBy)))
	}

	if len(s.History) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Performance review"))
		b.WriteString("\n")
		for i, ev := range s.History {
			line := fmt.Sprintf("%d. %4.1f  %s", i+1, ev.Score, ev.Comment)
			b.WriteString(lipgloss.NewStyle().Width(inner).Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if nickname != "" {
		b.WriteString("Name for the leaderboard: ")
		b.WriteString(nickname)
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Enter: save  |  Esc: skip"))
	} else {
		if status != "" {
			b.WriteString(status)
			b.WriteString("\n")
		}
		b.WriteString(dimStyle.Render("R/Enter: try again  |  Tab: leaderboard  |  Q: quit"))
	}

	return panelStyle.Render(b.String())
}
